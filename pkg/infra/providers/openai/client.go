package openai

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/promptgate/promptgate/pkg/infra/providers"
)

const defaultRequestTimeout = 120 * time.Second

// Options tune the transport, not the sampling; sampling parameters come
// from providers.Config on every call.
type Options struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type client struct {
	clientPool *sync.Map
	options    Options
}

// NewOpenaiClient builds the OpenAI completion client. The options map is
// decoded leniently; unknown keys are ignored.
func NewOpenaiClient(opts map[string]any) (providers.Client, error) {
	var options Options
	if len(opts) > 0 {
		if err := mapstructure.Decode(opts, &options); err != nil {
			return nil, fmt.Errorf("failed to decode openai options: %w", err)
		}
	}
	if options.Timeout <= 0 {
		options.Timeout = defaultRequestTimeout
	}

	return &client{
		clientPool: &sync.Map{},
		options:    options,
	}, nil
}

func (c *client) Ask(
	ctx context.Context,
	config *providers.Config,
	prompt string,
) (*providers.CompletionResponse, error) {
	if config.Credentials.ApiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	openaiClient := c.getOrCreateClient(config.Credentials.ApiKey)

	var messages []openai.ChatCompletionMessageParamUnion

	if config.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(config.SystemPrompt))
	}

	if prompt != "" {
		messages = append(messages, openai.UserMessage(prompt))
	}

	params := openai.ChatCompletionNewParams{
		Model:    config.Model,
		Messages: messages,
	}

	if config.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(config.MaxTokens))
	}
	if config.Temperature > 0 {
		params.Temperature = openai.Float(config.Temperature)
	}
	if config.TopP > 0 {
		params.TopP = openai.Float(config.TopP)
	}
	// Zero is a meaningful penalty value, set both unconditionally.
	params.FrequencyPenalty = openai.Float(config.FrequencyPenalty)
	params.PresencePenalty = openai.Float(config.PresencePenalty)

	resp, err := openaiClient.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openAI request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completions returned")
	}

	return &providers.CompletionResponse{
		ID:       resp.ID,
		Model:    resp.Model,
		Response: resp.Choices[0].Message.Content,
		Usage: providers.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

func (c *client) getOrCreateClient(apiKey string) *openai.Client {
	if v, ok := c.clientPool.Load(apiKey); ok {
		if cached, ok := v.(*openai.Client); ok {
			return cached
		}
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(c.options.Timeout),
		// The pipeline never retries on its own; a failed generation is
		// reported as-is.
		option.WithMaxRetries(0),
	}
	if c.options.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(c.options.BaseURL))
	}

	cli := openai.NewClient(reqOpts...)
	actual, _ := c.clientPool.LoadOrStore(apiKey, &cli)
	if cached, ok := actual.(*openai.Client); ok {
		return cached
	}
	return &cli
}
