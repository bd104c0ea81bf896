package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamed0406/llamaprobe/internal/config"
	"github.com/hamed0406/llamaprobe/internal/domain"
)

// preflightCmd prints the resolved settings without contacting the service.
func preflightCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check probe settings without sending requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ok := func(msg string) { fmt.Fprintln(out, "✔", msg) }
			warn := func(msg string) { fmt.Fprintln(out, "⚠", msg) }

			if err := cfg.Validate(); err != nil {
				return err
			}
			tgt, err := domain.NewTarget(cfg.URL)
			if err != nil {
				return fmt.Errorf("url: %w", err)
			}
			ok("URL=" + tgt.URL + " (health: " + tgt.HealthURL() + ")")

			if strings.HasPrefix(tgt.URL, "https://") {
				ok("TLS target")
			} else if h := tgt.Host(); h != "localhost" && h != "127.0.0.1" {
				warn("plain http to a non-local host")
			}

			worst := cfg.HealthInterval
			if cfg.ErrorInterval > worst {
				worst = cfg.ErrorInterval
			}
			ok(fmt.Sprintf("health: %d attempts, worst case ~%s", cfg.HealthAttempts,
				(worst+cfg.HealthTimeout)*time.Duration(cfg.HealthAttempts)))
			ok(fmt.Sprintf("prompt: %q, n_predict=%d, timeout=%s", cfg.Prompt, cfg.NPredict, cfg.PromptTimeout))

			if cfg.Temperature < 0 {
				warn("temperature omitted; the service default applies")
			}
			if cfg.SkipHealth {
				warn("health check skipped")
			}
			if cfg.LogDir == "" {
				warn("file logging disabled")
			} else {
				ok("LOG_DIR=" + cfg.LogDir)
			}
			if cfg.SlackWebhook == "" {
				warn("no Slack webhook; run summaries are not sent")
			} else if !strings.HasPrefix(cfg.SlackWebhook, "https://") {
				return errors.New("slack webhook must be an https URL")
			} else {
				ok("Slack webhook present")
			}

			ok("preflight passed")
			return nil
		},
	}
}
