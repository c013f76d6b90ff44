package airs

// ScanRequest is the wire shape of a synchronous scan submission.
type ScanRequest struct {
	TransactionID string      `json:"tr_id"`
	Profile       ScanProfile `json:"ai_profile"`
	Contents      []Content   `json:"contents"`
}

type ScanProfile struct {
	ProfileName string `json:"profile_name"`
}

// Content carries exactly one prompt per scan.
type Content struct {
	Prompt string `json:"prompt"`
}

// ScanResponse is the service verdict. Category and Action are free-form
// strings on the wire; interpretation happens downstream. Unknown fields in
// the body are ignored.
type ScanResponse struct {
	Category         string          `json:"category"`
	Action           string          `json:"action"`
	PromptDetected   map[string]bool `json:"prompt_detected"`
	ResponseDetected map[string]bool `json:"response_detected"`
}
