// Package devices implements the device enumeration command.
package devices

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mkuoppala/audiofx/internal/audiofx"
	"github.com/mkuoppala/audiofx/internal/conf"
)

// Command creates the devices command listing capture and playback devices.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List available audio devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			capture, err := audiofx.ListCaptureDevices()
			if err != nil {
				return err
			}
			playback, err := audiofx.ListPlaybackDevices()
			if err != nil {
				return err
			}

			fmt.Println("Capture devices:")
			printDevices(capture)
			fmt.Println("Playback devices:")
			printDevices(playback)
			return nil
		},
	}
}

func printDevices(devices []audiofx.DeviceInfo) {
	for _, d := range devices {
		marker := " "
		if d.Default {
			marker = "*"
		}
		line := fmt.Sprintf("%s %d: %s", marker, d.Index, d.Name)
		if runtime.GOOS == "linux" {
			line = fmt.Sprintf("%s, %s", line, d.ID)
		}
		fmt.Println(line)
	}
}
