package airs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/promptgate/promptgate/pkg/infra/httpx"
)

const (
	scanSyncPath = "/v1/scan/sync/request"

	// promptLogLimit bounds the prompt echo in diagnostics; the full text is
	// always submitted to the scanner regardless.
	promptLogLimit = 50
)

type AIRSClient struct {
	client         httpx.Client
	logger         *logrus.Logger
	circuitBreaker httpx.CircuitBreaker
	credentials    Credentials
}

func NewAIRSClient(
	logger *logrus.Logger,
	credentials Credentials,
	opts ...AIRSClientOption,
) Client {
	c := &AIRSClient{
		client:      &http.Client{},
		logger:      logger,
		credentials: credentials,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *AIRSClient) Scan(ctx context.Context, prompt string) (*ScanResponse, error) {
	if c.circuitBreaker == nil {
		return c.executeScanRequest(ctx, prompt)
	}

	var result *ScanResponse
	err := c.circuitBreaker.Execute(func() error {
		var innerErr error
		result, innerErr = c.executeScanRequest(ctx, prompt)
		return innerErr
	})
	if err != nil {
		if scanErr, ok := AsScanError(err); ok {
			return nil, scanErr
		}
		// Breaker is open: the scanner is unreachable as far as callers care.
		return nil, &ScanError{Kind: ErrorKindConnection, Err: err}
	}

	return result, nil
}

func (c *AIRSClient) executeScanRequest(ctx context.Context, prompt string) (*ScanResponse, error) {
	transactionID := uuid.NewString()

	payload := ScanRequest{
		TransactionID: transactionID,
		Profile:       ScanProfile{ProfileName: c.credentials.ProfileName},
		Contents:      []Content{{Prompt: prompt}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &ScanError{Kind: ErrorKindMalformedResponse, Err: fmt.Errorf("failed to marshal scan request: %w", err)}
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.credentials.BaseURL+scanSyncPath,
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, &ScanError{Kind: ErrorKindConnection, Err: fmt.Errorf("failed to create scan request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-pan-token", c.credentials.APIKey)

	c.logger.WithFields(logrus.Fields{
		"tr_id":       transactionID,
		"prompt":      truncate(prompt, promptLogLimit),
		"prompt_size": len(prompt),
	}).Debug("submitting prompt for security scan")

	resp, err := c.client.Do(req)
	if err != nil {
		kind := classifyTransportError(ctx, err)
		if !errors.Is(err, context.Canceled) {
			c.logger.WithError(err).WithField("tr_id", transactionID).Error("failed to call security scanner")
		}
		return nil, &ScanError{Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ScanError{Kind: ErrorKindMalformedResponse, Err: fmt.Errorf("scan response read error: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WithFields(logrus.Fields{
			"tr_id":       transactionID,
			"status_code": resp.StatusCode,
		}).Error("security scanner returned non-2xx status")
		return nil, &ScanError{
			Kind:       ErrorKindHTTPStatus,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	var scanResp ScanResponse
	if err := json.Unmarshal(respBody, &scanResp); err != nil {
		return nil, &ScanError{Kind: ErrorKindMalformedResponse, Err: fmt.Errorf("invalid scan response: %w", err)}
	}

	c.logger.WithFields(logrus.Fields{
		"tr_id":    transactionID,
		"category": scanResp.Category,
		"action":   scanResp.Action,
	}).Debug("security scan completed")

	return &scanResp, nil
}

func classifyTransportError(ctx context.Context, err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindTimeout
	}
	if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrorKindTimeout
	}
	// fasthttp's timeout error carries Timeout() without the rest of
	// net.Error, so check the narrower interface.
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return ErrorKindTimeout
	}
	return ErrorKindConnection
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
