// Package gate orchestrates the security-gated pipeline: scan the prompt,
// interpret the verdict, and only then ask the completion provider.
package gate

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/promptgate/promptgate/pkg/infra/airs"
	"github.com/promptgate/promptgate/pkg/infra/providers"
	"github.com/promptgate/promptgate/pkg/verdict"
)

// Phase names the pipeline stage that failed.
type Phase string

const (
	PhaseScan       Phase = "scan"
	PhaseGeneration Phase = "generation"
)

// PipelineError wraps a failure from one phase. A generation failure after
// an Allow decision is not a security refusal and must never be presented
// as one.
type PipelineError struct {
	Phase Phase
	Err   error
}

func (e *PipelineError) Error() string {
	return string(e.Phase) + " failed: " + e.Err.Error()
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Outcome is the single uniform result shape for one processed input,
// regardless of which phase failed.
type Outcome struct {
	Decision      verdict.Decision
	Findings      []verdict.Finding
	GeneratedText string
	Err           *PipelineError

	// RawScan is retained for diagnostics; nil when the scan itself failed.
	RawScan *airs.ScanResponse
}

// Blocked reports whether the input was refused by policy (as opposed to
// failing on infrastructure).
func (o *Outcome) Blocked() bool {
	return o.Decision == verdict.Block || o.Decision == verdict.Ambiguous
}

type Controller struct {
	scanner    airs.Client
	provider   providers.Client
	completion *providers.Config
	logger     *logrus.Logger
}

func NewController(
	scanner airs.Client,
	provider providers.Client,
	completion *providers.Config,
	logger *logrus.Logger,
) *Controller {
	return &Controller{
		scanner:    scanner,
		provider:   provider,
		completion: completion,
		logger:     logger,
	}
}

// Process runs one prompt through the pipeline. It performs exactly one
// scan call and at most one generation call, holds no state across
// invocations, and never panics or returns a Go error: the Outcome carries
// everything the caller needs.
func (c *Controller) Process(ctx context.Context, prompt string) *Outcome {
	scanResp, err := c.scanner.Scan(ctx, prompt)
	if err != nil {
		// Fail closed: no verdict means no generation.
		c.logger.WithError(err).Warn("security scan failed, input not processed")
		return &Outcome{
			Err: &PipelineError{Phase: PhaseScan, Err: err},
		}
	}

	decision, findings := verdict.Interpret(scanResp)

	outcome := &Outcome{
		Decision: decision,
		Findings: findings,
		RawScan:  scanResp,
	}

	if decision != verdict.Allow {
		c.logger.WithFields(logrus.Fields{
			"decision": decision,
			"category": scanResp.Category,
			"action":   scanResp.Action,
			"findings": len(findings),
		}).Info("input refused by security policy")
		return outcome
	}

	generated, err := c.provider.Ask(ctx, c.completion, prompt)
	if err != nil {
		// The security check legitimately passed; the decision stands.
		c.logger.WithError(err).Error("generation failed after allow decision")
		outcome.Err = &PipelineError{Phase: PhaseGeneration, Err: err}
		return outcome
	}

	outcome.GeneratedText = generated.Response
	return outcome
}
