package chatcmder

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/papercomputeco/visorx/cmd/visorx/bootstrap"
	"github.com/papercomputeco/visorx/pkg/config"
	"github.com/papercomputeco/visorx/pkg/logger"
	"github.com/papercomputeco/visorx/tui"
)

const chatLongDesc string = `Chat with VisorX in the terminal.

Opens a Gemini chat session with web search grounding and runs an
interactive terminal UI over it.

Commands inside the chat:
  /image <path|url>  attach an image to the next message
  /noimage           remove the attached image
  /quit              exit (or ctrl+c)

Logs go to the configured log file (log_file, VISORX_LOG_FILE) and are
discarded otherwise, since the UI owns the terminal.

Examples:
  visorx chat
  visorx chat --glamour --config visorx.toml`

const chatShortDesc string = "Chat with VisorX in the terminal"

// ErrNotTerminal is returned when stdin or stdout is not a terminal.
var ErrNotTerminal = errors.New("visorx chat needs an interactive terminal")

type chatCommander struct {
	configPath string
	glamour    bool
	debug      bool
	mock       bool
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to a TOML config file")
	cmd.Flags().BoolVar(&cmder.glamour, "glamour", false, "Render replies with glamour")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&cmder.mock, "mock", false, "Use the offline echo provider instead of Gemini")

	return cmd
}

func (c *chatCommander) run(ctx context.Context, cmd *cobra.Command) error {
	if !isTerminal(cmd.InOrStdin()) || !isTerminal(cmd.OutOrStdout()) {
		return ErrNotTerminal
	}

	cfg, err := bootstrap.LoadConfig(c.configPath, func(cfg *config.Config) {
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

	log, closeLog, err := fileLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctrl, err := bootstrap.NewController(ctx, cfg, nil, log)
	if err != nil {
		return err
	}

	opts := tui.Options{Logger: log}
	if c.glamour {
		opts.Renderer = tui.NewGlamourRenderer()
	}

	model := tui.New(ctx, ctrl, opts)
	defer model.Close()

	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal UI failed: %w", err)
	}

	if err := model.Err(); err != nil {
		return fmt.Errorf("could not start conversation: %w", err)
	}
	return nil
}

// fileLogger writes to the configured log file, or nowhere.
func fileLogger(cfg config.Config) (*zap.Logger, func(), error) {
	if cfg.LogFile == "" {
		return zap.NewNop(), func() {}, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open log file %s: %w", cfg.LogFile, err)
	}

	log := logger.NewLogger(cfg.Debug, logger.WithOutput(f))
	return log, func() {
		_ = log.Sync()
		_ = f.Close()
	}, nil
}

func isTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}
