package domain

import "time"

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// ProbeResult is the tagged outcome of a health check or a prompt request.
// Body holds the response body on success; Reason the failure text otherwise.
type ProbeResult struct {
	Outcome    Outcome
	StatusCode int // 0 when no response was received
	Body       []byte
	Reason     string
	Err        error
	Attempts   int
	Latency    time.Duration
}

func Success(status int, body []byte) ProbeResult {
	return ProbeResult{Outcome: OutcomeSuccess, StatusCode: status, Body: body}
}

func Failure(reason string, err error) ProbeResult {
	return ProbeResult{Outcome: OutcomeFailure, Reason: reason, Err: err}
}

func (r ProbeResult) OK() bool { return r.Outcome == OutcomeSuccess }
