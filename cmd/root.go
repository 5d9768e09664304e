// Package cmd builds the command tree of the audiofx CLI.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkuoppala/audiofx/cmd/devices"
	"github.com/mkuoppala/audiofx/cmd/monitor"
	"github.com/mkuoppala/audiofx/cmd/render"
	"github.com/mkuoppala/audiofx/internal/conf"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "audiofx",
		Short: "Real-time audio effects pipeline",
		Long:  "Run configurable effect chains (gate, compressor, EQ, limiter) over live audio or files.",
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
	}

	rootCmd.AddCommand(
		devices.Command(settings),
		monitor.Command(settings),
		render.Command(settings),
	)

	return rootCmd
}

// setupFlags configures the global flags shared by all subcommands.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.PersistentFlags().BoolVar(&settings.Debug, "debug", viper.GetBool("debug"), "Enable debug output")
	cmd.PersistentFlags().StringVar(&settings.Audio.Source, "source", viper.GetString("audio.source"), "Audio capture source (device id or name substring)")
	cmd.PersistentFlags().StringVar(&settings.Audio.Sink, "sink", viper.GetString("audio.sink"), "Audio playback sink (device id or name substring)")
	cmd.PersistentFlags().IntVar(&settings.Audio.SampleRate, "samplerate", viper.GetInt("audio.samplerate"), "Sample rate in Hz")
	cmd.PersistentFlags().IntVar(&settings.Audio.BlockSize, "blocksize", viper.GetInt("audio.blocksize"), "Processing block size in sample frames")
	cmd.PersistentFlags().BoolVar(&settings.Metrics.Enabled, "metrics", viper.GetBool("metrics.enabled"), "Enable Prometheus metrics endpoint")
	cmd.PersistentFlags().StringVar(&settings.Metrics.Listen, "listen", viper.GetString("metrics.listen"), "Listen address of the metrics endpoint")

	if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
