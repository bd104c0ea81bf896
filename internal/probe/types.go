package probe

import "context"

// CheckResult is the outcome of a single probe.
//
// StatusCode is the HTTP status when a response arrived and 0 for
// transport, DNS or dial errors. Attempts is set by RetryChecker.
type CheckResult struct {
	Name       string
	Success    bool
	StatusCode int
	LatencyMS  float64
	Message    string
	Body       []byte
	Err        error
	Attempts   int
}

// Checker performs a single check for a given target URL.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}
