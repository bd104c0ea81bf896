package main

import (
	"context"
	"errors"
	"io"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/hamed0406/llamaprobe/internal/config"
	"github.com/hamed0406/llamaprobe/internal/domain"
	"github.com/hamed0406/llamaprobe/internal/logging"
	"github.com/hamed0406/llamaprobe/internal/notify"
	"github.com/hamed0406/llamaprobe/internal/probe"
	"github.com/hamed0406/llamaprobe/internal/runner"
)

// newRootCmd binds every config field to a flag whose default comes from the
// environment. The probe's exit code is written to exit.
func newRootCmd(cfg *config.Config, exit *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "llamaprobe [url] [flags]",
		Short: "Smoke-test a llama inference service",
		Long: heredoc.Doc(`
			Wait for the inference service to report healthy, then send one
			completion request and print the response.

			Exits 1 when the service never becomes healthy. A failed completion
			request exits 0 unless --fail-on-prompt-error is set.
		`),
		Example: heredoc.Doc(`
			$ llamaprobe
			$ llamaprobe http://10.0.0.5:30085 --prompt "Once upon a time" --n_predict 128
			$ llamaprobe --skip-health --temperature -1
			$ HEALTH_ATTEMPTS=30 llamaprobe --interval 2s
		`),
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if cmd.Flags().Changed("url") {
					return errors.New("give the url either as an argument or with --url, not both")
				}
				cfg.URL = args[0]
			}
			code, err := runProbe(cmd.Context(), *cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			*exit = code
			return nil
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&cfg.URL, "url", cfg.URL, "Service URL")
	f.StringVar(&cfg.Prompt, "prompt", cfg.Prompt, "Prompt to send")
	f.IntVar(&cfg.NPredict, "n_predict", cfg.NPredict, "Number of tokens to predict")
	f.Float64Var(&cfg.Temperature, "temperature", cfg.Temperature, "Sampling temperature (negative to omit)")
	f.IntVar(&cfg.HealthAttempts, "attempts", cfg.HealthAttempts, "Health check attempts before giving up")
	f.DurationVar(&cfg.HealthInterval, "interval", cfg.HealthInterval, "Wait after a non-200 health response")
	f.DurationVar(&cfg.ErrorInterval, "error-interval", cfg.ErrorInterval, "Wait after a connection error or timeout")
	f.DurationVar(&cfg.HealthTimeout, "health-timeout", cfg.HealthTimeout, "Timeout for each health request")
	f.DurationVar(&cfg.PromptTimeout, "prompt-timeout", cfg.PromptTimeout, "Timeout for the completion request")
	f.BoolVar(&cfg.SkipHealth, "skip-health", cfg.SkipHealth, "Send the prompt without checking /health first")
	f.BoolVar(&cfg.FailOnPromptError, "fail-on-prompt-error", cfg.FailOnPromptError, "Exit 2 when the completion request fails")
	f.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Directory for rotated JSON logs (empty disables)")
	f.StringVar(&cfg.SlackWebhook, "slack-webhook", cfg.SlackWebhook, "Slack webhook for a run summary")

	cmd.AddCommand(preflightCmd(cfg))
	return cmd
}

func runProbe(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	tgt, err := domain.NewTarget(cfg.URL)
	if err != nil {
		return 0, err
	}

	logger, err := logging.NewLogger(cfg.LogDir, stderr)
	if err != nil {
		return 0, err
	}
	defer func() { _ = logger.Sync() }()

	var temp *float64
	if cfg.Temperature >= 0 {
		t := cfg.Temperature
		temp = &t
	}
	sp := probe.NewServiceProbe(logger, probe.Options{
		Attempts:      cfg.HealthAttempts,
		Interval:      cfg.HealthInterval,
		ErrorInterval: cfg.ErrorInterval,
		HealthTimeout: cfg.HealthTimeout,
		PromptTimeout: cfg.PromptTimeout,
		Temperature:   temp,
	})

	var n notify.Notifier
	if s := notify.NewSlack(cfg.SlackWebhook); s != nil {
		n = s
	}

	r := runner.NewRunner(logger, sp, probe.NewDiagnostics(cfg.HealthTimeout), n, stdout, runner.Config{
		Target:            tgt,
		Prompt:            cfg.Prompt,
		NPredict:          cfg.NPredict,
		SkipHealth:        cfg.SkipHealth,
		FailOnPromptError: cfg.FailOnPromptError,
	})
	return r.Run(ctx), nil
}
