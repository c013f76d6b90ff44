package airs

import (
	"context"
)

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=scan_client_mock.go --case=underscore --with-expecter
type Client interface {
	// Scan submits one prompt to the threat-classification service and
	// returns its verdict. Failures are always a *ScanError; the caller must
	// treat any of them as "cannot establish a decision" (fail closed).
	Scan(ctx context.Context, prompt string) (*ScanResponse, error)
}

// Credentials is the immutable scanner configuration established at startup.
type Credentials struct {
	BaseURL     string
	APIKey      string
	ProfileName string
}
