package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fake checker you can control
type fakeChecker struct {
	results []CheckResult
	calls   int
}

func (f *fakeChecker) Check(ctx context.Context, target string) CheckResult {
	f.calls++
	if f.calls > len(f.results) {
		return CheckResult{Success: false, StatusCode: 503, Message: "503 Service Unavailable"}
	}
	return f.results[f.calls-1]
}

func TestRetryChecker_SucceedsAfterRetry(t *testing.T) {
	f := &fakeChecker{
		results: []CheckResult{
			{Success: false, Message: "dial tcp: connection refused"},
			{Success: true, StatusCode: 200, Message: "200 OK"},
		},
	}
	rc := &RetryChecker{Inner: f, Attempts: 3, Interval: time.Millisecond, ErrorInterval: time.Millisecond}
	out := rc.Check(context.Background(), "http://localhost:30085")
	if !out.Success {
		t.Fatalf("expected success after retry, got %+v", out)
	}
	if f.calls != 2 || out.Attempts != 2 {
		t.Fatalf("want 2 attempts, got calls=%d attempts=%d", f.calls, out.Attempts)
	}
}

func TestRetryChecker_AllFailMakesExactlyNAttempts(t *testing.T) {
	for _, n := range []int{1, 3, 7} {
		f := &fakeChecker{}
		rc := &RetryChecker{Inner: f, Attempts: n}
		out := rc.Check(context.Background(), "http://localhost:30085")
		if out.Success {
			t.Fatalf("n=%d: expected failure", n)
		}
		if f.calls != n || out.Attempts != n {
			t.Fatalf("n=%d: got calls=%d attempts=%d", n, f.calls, out.Attempts)
		}
		if got := len(multierr.Errors(out.Err)); got != n {
			t.Fatalf("n=%d: want %d aggregated errors, got %d", n, n, got)
		}
	}
}

func TestRetryChecker_FirstSuccessDoesNotWait(t *testing.T) {
	f := &fakeChecker{results: []CheckResult{{Success: true, StatusCode: 200}}}
	rc := &RetryChecker{Inner: f, Attempts: 10, Interval: time.Hour, ErrorInterval: time.Hour}

	start := time.Now()
	out := rc.Check(context.Background(), "http://localhost:30085")
	if !out.Success || f.calls != 1 {
		t.Fatalf("want one successful attempt, got calls=%d %+v", f.calls, out)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("should not have waited")
	}
}

func TestRetryChecker_NoWaitAfterLastAttempt(t *testing.T) {
	f := &fakeChecker{}
	rc := &RetryChecker{Inner: f, Attempts: 2, Interval: 50 * time.Millisecond}

	start := time.Now()
	rc.Check(context.Background(), "http://localhost:30085")
	if el := time.Since(start); el >= 100*time.Millisecond {
		t.Fatalf("waited after final attempt: %v", el)
	}
}

func TestRetryChecker_UsesErrorIntervalForTransportErrors(t *testing.T) {
	f := &fakeChecker{results: []CheckResult{
		{StatusCode: 0, Message: "connection refused"},
		{Success: true, StatusCode: 200},
	}}
	rc := &RetryChecker{Inner: f, Attempts: 2, Interval: time.Hour, ErrorInterval: time.Millisecond}

	done := make(chan CheckResult, 1)
	go func() { done <- rc.Check(context.Background(), "http://localhost:30085") }()
	select {
	case out := <-done:
		if !out.Success {
			t.Fatalf("want success, got %+v", out)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("used the non-200 interval after a transport error")
	}
}

func TestRetryChecker_StopsOnCancel(t *testing.T) {
	f := &fakeChecker{}
	rc := &RetryChecker{Inner: f, Attempts: 5, Interval: time.Hour}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	out := rc.Check(ctx, "http://localhost:30085")
	if out.Success || f.calls != 1 {
		t.Fatalf("want single failed attempt before cancel, got calls=%d", f.calls)
	}
	if !errors.Is(out.Err, context.DeadlineExceeded) {
		t.Fatalf("want deadline in aggregated error, got %v", out.Err)
	}
}

func TestRetryChecker_LogsEachAttempt(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	f := &fakeChecker{results: []CheckResult{
		{StatusCode: 503, Message: "503 Service Unavailable"},
		{Success: true, StatusCode: 200, Message: "200 OK"},
	}}
	rc := &RetryChecker{Inner: f, Attempts: 3, Logger: zap.New(core)}
	rc.Check(context.Background(), "http://localhost:30085")

	entries := logs.FilterMessage("health_attempt").All()
	if len(entries) != 2 {
		t.Fatalf("want 2 attempt logs, got %d", len(entries))
	}
	first := entries[0].ContextMap()
	if first["attempt"] != int64(1) || first["status"] != int64(503) {
		t.Fatalf("unexpected first attempt fields: %v", first)
	}
}
