package rotation

import "strings"

// Classifier decides whether an error returned by the caller's work
// indicates a provider-side rate limit. Upstream SDKs do not expose a
// uniform error taxonomy, so the default is a substring heuristic; callers
// with structured error codes can plug in a precise one.
type Classifier func(error) bool

var rateLimitTokens = []string{
	"429",
	"rate limit",
	"quota",
	"too many requests",
	"resource exhausted",
}

// DefaultClassifier matches well-known rate-limit indicators in the error
// text, case-insensitively. The token list is a starting point, not a
// guarantee of coverage across every SDK error shape.
func DefaultClassifier(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, tok := range rateLimitTokens {
		if strings.Contains(msg, tok) {
			return true
		}
	}
	return false
}
