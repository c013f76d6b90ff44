package providers

import (
	"context"
)

// Config holds the fixed sampling parameters used for every completion.
// It is built once at startup and treated as read-only.
type Config struct {
	Credentials      Credentials `json:"credentials"`
	Model            string      `json:"model"`
	MaxTokens        int         `json:"max_tokens,omitempty"`
	Temperature      float64     `json:"temperature,omitempty"`
	TopP             float64     `json:"top_p,omitempty"`
	FrequencyPenalty float64     `json:"frequency_penalty,omitempty"`
	PresencePenalty  float64     `json:"presence_penalty,omitempty"`
	SystemPrompt     string      `json:"system_prompt,omitempty"`
}

type Credentials struct {
	ApiKey string `json:"api_key"`
}

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=client_mock.go --case=underscore --with-expecter

// Client is the text-generation collaborator. Implementations are stateless
// across calls: no prior turns are ever supplied.
type Client interface {
	Ask(ctx context.Context, config *Config, prompt string) (*CompletionResponse, error)
}
