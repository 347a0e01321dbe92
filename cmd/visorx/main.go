package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/visorx/cmd/visorx/chat"
	servecmder "github.com/papercomputeco/visorx/cmd/visorx/serve"
	versioncmder "github.com/papercomputeco/visorx/cmd/visorx/version"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visorx",
		Short: "VisorX, a grounded financial chat assistant",
		Long: `VisorX answers financial questions with Gemini and web search grounding,
citing the sources it consulted. Run it as a web page (serve) or in the
terminal (chat).`,
		SilenceUsage: true,
	}

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
