// Package render implements the offline file processing command.
package render

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkuoppala/audiofx/internal/conf"
	"github.com/mkuoppala/audiofx/internal/render"
)

// Command creates the render command processing a WAV file through the
// configured chains.
func Command(settings *conf.Settings) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render [input.wav]",
		Short: "Process a WAV file through the effect chains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("output path is required")
			}
			return render.ProcessFile(settings, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output WAV file path")

	return cmd
}
