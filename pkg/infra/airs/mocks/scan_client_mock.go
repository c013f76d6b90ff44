package mocks

import (
	"context"
	"fmt"

	"github.com/stretchr/testify/mock"

	"github.com/promptgate/promptgate/pkg/infra/airs"
)

type MockScanClient struct {
	mock.Mock
}

func (m *MockScanClient) Scan(ctx context.Context, prompt string) (*airs.ScanResponse, error) {
	args := m.Called(ctx, prompt)
	resp, ok := args.Get(0).(*airs.ScanResponse)
	if !ok && args.Get(0) != nil {
		return nil, fmt.Errorf("expected *airs.ScanResponse, got %T", args.Get(0))
	}
	return resp, args.Error(1)
}
