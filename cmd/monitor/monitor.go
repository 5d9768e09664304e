// Package monitor implements the real-time processing command.
package monitor

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkuoppala/audiofx/internal/audiofx"
	"github.com/mkuoppala/audiofx/internal/conf"
)

// Command creates the monitor command that processes live audio until
// interrupted.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Process live audio in real time",
		Long:  "Attach the configured effect chains to a duplex audio device and process until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return audiofx.RunMonitor(ctx, settings)
		},
	}
}
