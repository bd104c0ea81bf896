package probe

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/hamed0406/llamaprobe/internal/domain"
)

const maxBodyBytes = 1 << 20

// HTTPChecker issues a GET against target+Path and succeeds only on 200.
type HTTPChecker struct {
	Client *http.Client
	Path   string
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		Client: &http.Client{Timeout: timeout},
		Path:   "/health",
	}
}

func (h *HTTPChecker) Check(ctx context.Context, target string) CheckResult {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target+h.Path, nil)
	if err != nil {
		return CheckResult{Name: "HTTP", Message: err.Error(), Err: domain.Classify(err)}
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return CheckResult{
			Name:      "HTTP",
			Message:   err.Error(),
			Err:       domain.Classify(err),
			LatencyMS: sinceMS(start),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	latency := sinceMS(start)
	if err != nil {
		return CheckResult{
			Name:       "HTTP",
			StatusCode: resp.StatusCode,
			Message:    err.Error(),
			Err:        domain.Classify(err),
			LatencyMS:  latency,
		}
	}

	out := CheckResult{
		Name:       "HTTP",
		Success:    resp.StatusCode == http.StatusOK,
		StatusCode: resp.StatusCode,
		Message:    resp.Status,
		Body:       body,
		LatencyMS:  latency,
	}
	if !out.Success {
		out.Err = domain.HTTPError(resp.StatusCode, string(body))
	}
	return out
}

func sinceMS(start time.Time) float64 {
	return time.Since(start).Seconds() * 1000
}
