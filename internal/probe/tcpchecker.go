package probe

import (
	"context"
	"net"
	"time"

	"github.com/hamed0406/llamaprobe/internal/domain"
)

// TCPChecker dials the target's host:port, separating "nothing listening"
// from HTTP-level failures.
type TCPChecker struct {
	Timeout time.Duration
}

func NewTCPChecker(timeout time.Duration) *TCPChecker {
	return &TCPChecker{Timeout: timeout}
}

func (c *TCPChecker) Check(ctx context.Context, target string) CheckResult {
	addr := domain.ProbeTarget{URL: target}.HostPort()
	d := net.Dialer{Timeout: c.Timeout}

	start := time.Now()
	conn, err := d.DialContext(ctx, "tcp", addr)
	latency := sinceMS(start)
	if err != nil {
		return CheckResult{Name: "TCP", Message: err.Error(), Err: domain.Classify(err), LatencyMS: latency}
	}
	_ = conn.Close()
	return CheckResult{Name: "TCP", Success: true, Message: "connected " + addr, LatencyMS: latency}
}
