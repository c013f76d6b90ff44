package verdict

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// displayNames maps scanner threat-category keys to the names shown to
// users. Unknown keys fall back to a humanized form of the raw key.
var displayNames = map[string]string{
	"prompt_injection":      "Prompt Injection Attack",
	"injection":             "Prompt Injection Attack",
	"jailbreak":             "Jailbreak Attempt",
	"malicious_code":        "Malicious Code Generation",
	"sensitive_data":        "Sensitive Data Exposure",
	"toxicity":              "Toxic Content",
	"bias":                  "Bias Detection",
	"harmful_content":       "Harmful Content",
	"url_cats":              "Malicious URL Detection",
	"malware":               "Malware Detection",
	"db_security":           "Database Security Threat",
	"dlp":                   "Data Loss Prevention",
	"pii":                   "Personal Identifiable Information",
	"financial_data":        "Financial Data Exposure",
	"intellectual_property": "Intellectual Property Risk",
	"code_injection":        "Code Injection",
	"resource_overload":     "Resource Overload/DoS",
	"hallucination":         "AI Hallucination",
}

// DisplayName resolves a threat-category key to its display name.
func DisplayName(key string) string {
	if name, ok := displayNames[key]; ok {
		return name
	}
	return humanize(key)
}

func humanize(key string) string {
	cleaned := strings.NewReplacer("_", " ", "-", " ").Replace(key)
	// A cases.Caser is stateful and must not be shared between goroutines.
	return cases.Title(language.English).String(cleaned)
}
