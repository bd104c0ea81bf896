package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hamed0406/llamaprobe/internal/domain"
)

// PromptSender posts a single completion request. It never retries.
type PromptSender struct {
	Client *http.Client
}

func NewPromptSender(timeout time.Duration) *PromptSender {
	return &PromptSender{Client: &http.Client{Timeout: timeout}}
}

// Send posts req to target. A 200 with a JSON body is a Success carrying that
// body; any other status is a Failure whose reason is the raw response text.
func (p *PromptSender) Send(ctx context.Context, target string, req domain.PromptRequest) domain.ProbeResult {
	if req.Prompt == "" {
		return domain.Failure("prompt must not be empty", nil)
	}
	if req.NPredict <= 0 {
		return domain.Failure(fmt.Sprintf("n_predict must be positive, got %d", req.NPredict), nil)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return domain.Failure(err.Error(), err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return domain.Failure(err.Error(), domain.Classify(err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.Client.Do(httpReq)
	if err != nil {
		res := domain.Failure(err.Error(), domain.Classify(err))
		res.Latency = time.Since(start)
		return res
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	latency := time.Since(start)
	if err != nil {
		res := domain.Failure(err.Error(), domain.Classify(err))
		res.StatusCode = resp.StatusCode
		res.Latency = latency
		return res
	}

	var res domain.ProbeResult
	switch {
	case resp.StatusCode != http.StatusOK:
		reason := string(raw)
		if reason == "" {
			reason = resp.Status
		}
		res = domain.Failure(reason, domain.HTTPError(resp.StatusCode, string(raw)))
		res.Body = raw
	case !json.Valid(raw):
		res = domain.Failure(string(raw), domain.ParseError(resp.StatusCode, string(raw), errors.New("response is not valid JSON")))
		res.Body = raw
	default:
		res = domain.Success(resp.StatusCode, raw)
	}
	res.StatusCode = resp.StatusCode
	res.Latency = latency
	return res
}
