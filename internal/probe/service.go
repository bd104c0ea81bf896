package probe

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/llamaprobe/internal/domain"
)

// Options tunes a ServiceProbe. Zero Attempts and timeouts fall back to the
// values noted on each field; zero intervals mean no wait between attempts.
type Options struct {
	Attempts      int           // 10
	Interval      time.Duration // wait after a non-200 health response
	ErrorInterval time.Duration // wait after a transport error
	HealthTimeout time.Duration // 5s
	PromptTimeout time.Duration // 30s
	Temperature   *float64      // omitted from the payload when nil
}

// ServiceProbe checks that the inference service is ready and then
// exercises its completion endpoint once.
type ServiceProbe struct {
	Logger      *zap.Logger
	Health      Checker
	Prompts     *PromptSender
	Temperature *float64
}

func NewServiceProbe(logger *zap.Logger, o Options) *ServiceProbe {
	if logger == nil {
		logger = zap.NewNop()
	}
	if o.Attempts < 1 {
		o.Attempts = 10
	}
	if o.HealthTimeout <= 0 {
		o.HealthTimeout = 5 * time.Second
	}
	if o.PromptTimeout <= 0 {
		o.PromptTimeout = 30 * time.Second
	}
	return &ServiceProbe{
		Logger: logger,
		Health: &RetryChecker{
			Inner:         NewHTTPChecker(o.HealthTimeout),
			Attempts:      o.Attempts,
			Interval:      o.Interval,
			ErrorInterval: o.ErrorInterval,
			Logger:        logger,
		},
		Prompts:     NewPromptSender(o.PromptTimeout),
		Temperature: o.Temperature,
	}
}

// CheckHealth polls the health endpoint until it answers 200 or the retry
// budget is spent, in which case the reason is "service not ready".
func (s *ServiceProbe) CheckHealth(ctx context.Context, target domain.ProbeTarget) domain.ProbeResult {
	out := s.Health.Check(ctx, target.URL)

	var res domain.ProbeResult
	if out.Success {
		res = domain.Success(out.StatusCode, out.Body)
		s.Logger.Info("health_ready",
			zap.String("url", target.HealthURL()),
			zap.Int("attempts", out.Attempts),
		)
	} else {
		res = domain.Failure(domain.ErrNotReady.Error(), multierr.Append(domain.ErrNotReady, out.Err))
		res.Body = out.Body
		s.Logger.Warn("health_not_ready",
			zap.String("url", target.HealthURL()),
			zap.Int("attempts", out.Attempts),
			zap.Int("last_status", out.StatusCode),
			zap.Error(out.Err),
		)
	}
	res.StatusCode = out.StatusCode
	res.Attempts = out.Attempts
	res.Latency = time.Duration(out.LatencyMS * float64(time.Millisecond))
	return res
}

// SendPrompt issues one completion request. Failures are reported, never retried.
func (s *ServiceProbe) SendPrompt(ctx context.Context, target domain.ProbeTarget, prompt string, nPredict int) domain.ProbeResult {
	res := s.Prompts.Send(ctx, target.URL, domain.PromptRequest{
		Prompt:      prompt,
		NPredict:    nPredict,
		Temperature: s.Temperature,
	})
	res.Attempts = 1

	fields := []zap.Field{
		zap.String("url", target.URL),
		zap.Int("n_predict", nPredict),
		zap.Int("status", res.StatusCode),
		zap.Duration("latency", res.Latency),
	}
	if res.OK() {
		s.Logger.Info("prompt_ok", fields...)
	} else {
		s.Logger.Warn("prompt_failed", append(fields,
			zap.String("kind", string(domain.KindOf(res.Err))),
			zap.Error(res.Err),
		)...)
	}
	return res
}
