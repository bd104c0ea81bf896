package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/llamaprobe/internal/domain"
	"github.com/hamed0406/llamaprobe/internal/notify"
	"github.com/hamed0406/llamaprobe/internal/probe"
)

// Process exit codes.
const (
	ExitOK           = 0
	ExitNotReady     = 1
	ExitPromptFailed = 2 // only with FailOnPromptError
)

// Prober is the subset of probe.ServiceProbe the runner drives.
type Prober interface {
	CheckHealth(ctx context.Context, target domain.ProbeTarget) domain.ProbeResult
	SendPrompt(ctx context.Context, target domain.ProbeTarget, prompt string, nPredict int) domain.ProbeResult
}

type Config struct {
	Target            domain.ProbeTarget
	Prompt            string
	NPredict          int
	SkipHealth        bool
	FailOnPromptError bool
}

type Runner struct {
	Logger   *zap.Logger
	Probe    Prober
	Diag     *probe.Diagnostics // optional, run when the health check gives up
	Notifier notify.Notifier    // optional
	Out      io.Writer
	Cfg      Config
}

func NewRunner(
	logger *zap.Logger,
	p Prober,
	diag *probe.Diagnostics,
	n notify.Notifier,
	out io.Writer,
	cfg Config,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Runner{Logger: logger, Probe: p, Diag: diag, Notifier: n, Out: out, Cfg: cfg}
}

// Run checks health, sends one prompt and reports both. The exit code is
// ExitNotReady only when the health check never succeeded; a failed prompt
// still exits ExitOK unless FailOnPromptError is set.
func (r *Runner) Run(ctx context.Context) int {
	tgt := r.Cfg.Target
	r.Logger.Info("probe_start",
		zap.String("url", tgt.URL),
		zap.Bool("skip_health", r.Cfg.SkipHealth),
	)

	if !r.Cfg.SkipHealth {
		health := r.Probe.CheckHealth(ctx, tgt)
		printHealth(r.Out, health)
		if !health.OK() {
			var diag []probe.CheckResult
			if r.Diag != nil {
				diag = r.Diag.Run(ctx, tgt.URL)
				r.logDiagnostics(diag)
			}
			printDiagnostics(r.Out, diag)
			r.notify(ctx, "service not ready", healthSummary(tgt, health, diag))
			return ExitNotReady
		}
	}

	fmt.Fprintf(r.Out, "Sending request to %s\n", tgt.URL)
	res := r.Probe.SendPrompt(ctx, tgt, r.Cfg.Prompt, r.Cfg.NPredict)
	printPrompt(r.Out, res)

	if !res.OK() {
		r.notify(ctx, "prompt failed", promptSummary(tgt, res))
		if r.Cfg.FailOnPromptError {
			return ExitPromptFailed
		}
		return ExitOK
	}
	r.notify(ctx, "service ready", promptSummary(tgt, res))
	return ExitOK
}

func (r *Runner) logDiagnostics(results []probe.CheckResult) {
	for _, d := range results {
		r.Logger.Info("diagnostic",
			zap.String("check", d.Name),
			zap.Bool("ok", d.Success),
			zap.String("message", d.Message),
			zap.Float64("latency_ms", d.LatencyMS),
		)
	}
}

func (r *Runner) notify(ctx context.Context, title, text string) {
	if r.Notifier == nil {
		return
	}
	// The run context may already be cancelled; the summary should still go out.
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := r.Notifier.Send(nctx, "llamaprobe: "+title, text); err != nil {
		r.Logger.Warn("notify_error", zap.Error(err))
	}
}
