package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/founder-outreach/internal/pipeline"
	"github.com/jonathan/founder-outreach/internal/server"
	"github.com/jonathan/founder-outreach/internal/server/ratelimit"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server that exposes the company records, scans and sends as REST endpoints, plus /health and /metrics.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	logger := zap.L()
	p, err := initPipeline(ctx, st, cfg.Scan.Seed, nil)
	if err != nil {
		return err
	}

	port := cfg.Server.Port
	if servePort > 0 {
		port = servePort
	}

	srv := server.New(server.Config{
		Port:      port,
		RateLimit: ratelimit.NewConfig(cfg.Server.RateLimit),
	}, server.Deps{
		Records:  st,
		Scanner:  configuredScanner{p: p, limit: cfg.Scan.Limit},
		Mailer:   initMailer(st, logger),
		Composer: initComposer(),
		Logger:   logger,
	})
	return srv.Start(ctx)
}

// configuredScanner applies scan.limit when a request does not set one.
type configuredScanner struct {
	p     *pipeline.Pipeline
	limit int
}

func (s configuredScanner) Run(ctx context.Context, limit int) (*pipeline.Summary, error) {
	if limit <= 0 {
		limit = s.limit
	}
	return s.p.Run(ctx, limit)
}
