// Package verdict turns raw scanner responses into the canonical
// allow/block decision and the list of named threat findings. It is pure:
// no I/O, no state, fully deterministic for a given response.
package verdict

import (
	"sort"

	"github.com/promptgate/promptgate/pkg/infra/airs"
)

// Decision is this system's own canonical verdict, derived from the
// scanner's category and action by fixed precedence rules.
type Decision string

const (
	// NoDecision is the zero value; it means no verdict could be
	// established (the scan itself failed).
	NoDecision Decision = ""

	Allow     Decision = "allow"
	Block     Decision = "block"
	Ambiguous Decision = "ambiguous"
)

// Origin says where a threat was detected.
type Origin string

const (
	OriginPrompt   Origin = "prompt"
	OriginResponse Origin = "response"

	// OriginGeneral marks the synthesized finding emitted when the scanner
	// reports a malicious category without any per-field detection.
	OriginGeneral Origin = "general"
)

// Finding is one detected threat with a human-readable name.
type Finding struct {
	Key         string
	DisplayName string
	Origin      Origin
}

const (
	categoryMalicious = "malicious"
	categoryBenign    = "benign"
	actionAllow       = "allow"
	actionBlock       = "block"
)

// Interpret maps a scan response to a decision and its findings.
//
// Precedence is fixed and must not be reordered: a malicious category or a
// block action alone forces Block; Allow requires both a benign category
// and an allow action; everything else, including unrecognized strings, is
// Ambiguous.
func Interpret(resp *airs.ScanResponse) (Decision, []Finding) {
	findings := extractFindings(resp)

	// A malicious verdict is never reported with an empty findings list.
	if resp.Category == categoryMalicious && len(findings) == 0 {
		findings = append(findings, Finding{
			Key:         "general",
			DisplayName: "General Threat",
			Origin:      OriginGeneral,
		})
	}

	switch {
	case resp.Category == categoryMalicious || resp.Action == actionBlock:
		return Block, findings
	case resp.Category == categoryBenign && resp.Action == actionAllow:
		return Allow, findings
	default:
		return Ambiguous, findings
	}
}

// extractFindings walks both detection maps, prompt first. The wire maps
// carry no ordering, so keys are sorted to keep output deterministic.
func extractFindings(resp *airs.ScanResponse) []Finding {
	var findings []Finding
	findings = appendDetected(findings, resp.PromptDetected, OriginPrompt)
	findings = appendDetected(findings, resp.ResponseDetected, OriginResponse)
	return findings
}

func appendDetected(findings []Finding, detected map[string]bool, origin Origin) []Finding {
	keys := make([]string, 0, len(detected))
	for key, hit := range detected {
		if hit {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		findings = append(findings, Finding{
			Key:         key,
			DisplayName: DisplayName(key),
			Origin:      origin,
		})
	}
	return findings
}
