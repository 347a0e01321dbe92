package servecmder

import (
	"context"
	"fmt"
	"net"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/visorx/cmd/visorx/bootstrap"
	"github.com/papercomputeco/visorx/pkg/config"
	"github.com/papercomputeco/visorx/pkg/logger"
	"github.com/papercomputeco/visorx/server"
)

const serveLongDesc string = `Serve the VisorX chat page.

Opens a Gemini chat session with web search grounding, then serves the
single-page chat UI, a small JSON API and Prometheus metrics. The API key is
read from GEMINI_API_KEY (or API_KEY), optionally from a .env file in the
working directory.

Examples:
  visorx serve
  visorx serve --listen :9000 --config visorx.toml
  VISORX_USE_MOCK=true visorx serve --debug`

const serveShortDesc string = "Serve the VisorX web UI"

type serveCommander struct {
	listen     string
	configPath string
	debug      bool
	mock       bool
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (default from config, :8080)")
	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to a TOML config file")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&cmder.mock, "mock", false, "Use the offline echo provider instead of Gemini")

	return cmd
}

func (c *serveCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := bootstrap.LoadConfig(c.configPath, func(cfg *config.Config) {
		if cmd.Flags().Changed("listen") {
			cfg.ListenAddr = c.listen
		}
		if c.debug {
			cfg.Debug = true
		}
		if c.mock {
			cfg.UseMock = true
		}
	})
	if err != nil {
		return err
	}

	log := logger.NewLogger(cfg.Debug)
	defer func() { _ = log.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ctrl, err := bootstrap.NewController(ctx, cfg, reg, log)
	if err != nil {
		return err
	}

	if err := ctrl.Start(ctx); err != nil {
		return fmt.Errorf("could not start conversation: %w", err)
	}

	srv, err := server.New(server.Config{ListenAddr: cfg.ListenAddr, Gatherer: reg}, ctrl, log)
	if err != nil {
		return fmt.Errorf("could not create server: %w", err)
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", cfg.ListenAddr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.RunWithListener(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down web server")
		if err := srv.Shutdown(); err != nil {
			log.Warn("shutdown failed", zap.Error(err))
		}
		return nil
	}
}
