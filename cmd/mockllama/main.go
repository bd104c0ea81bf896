package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/llamaprobe/internal/logging"
	"github.com/hamed0406/llamaprobe/internal/mockserve"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	var (
		addr   string
		logDir string
		opts   mockserve.Options
	)
	cmd := &cobra.Command{
		Use:   "mockllama",
		Short: "Serve a stand-in llama completion API for local smoke tests",
		Example: heredoc.Doc(`
			$ mockllama --warmup 3
			$ mockllama --fail-status 500 --addr 127.0.0.1:30086
		`),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.NewLogger(logDir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return serve(cmd.Context(), logger, addr, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr, "addr", "127.0.0.1:30085", "Listen address")
	f.StringVar(&logDir, "log-dir", "", "Directory for rotated JSON logs (empty disables)")
	f.IntVar(&opts.WarmupChecks, "warmup", 0, "Health checks answered 503 before becoming ready")
	f.IntVar(&opts.PromptStatus, "fail-status", 0, "Status returned for completion requests (0 = 200)")
	f.StringVar(&opts.Reply, "reply", "Hello", "Completion text")
	f.DurationVar(&opts.Latency, "latency", 0, "Delay before each completion response")
	return cmd
}

func serve(ctx context.Context, logger *zap.Logger, addr string, opts mockserve.Options) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           mockserve.NewServer(logger, opts).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("mock_listen", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("mock_stopped")
		return nil
	}
}
