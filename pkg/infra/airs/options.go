package airs

import "github.com/promptgate/promptgate/pkg/infra/httpx"

// AIRSClientOption is a function that configures an AIRSClient
type AIRSClientOption func(*AIRSClient)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client httpx.Client) AIRSClientOption {
	return func(c *AIRSClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithCircuitBreaker wraps every scan call in the given breaker
func WithCircuitBreaker(breaker httpx.CircuitBreaker) AIRSClientOption {
	return func(c *AIRSClient) {
		c.circuitBreaker = breaker
	}
}
