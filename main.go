package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mkuoppala/audiofx/cmd"
	"github.com/mkuoppala/audiofx/internal/conf"
	"github.com/mkuoppala/audiofx/internal/logging"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	level := parseLogLevel(settings.Log.Level)
	if settings.Debug {
		level = slog.LevelDebug
	}
	if settings.Log.File != "" {
		if err := logging.InitWithFile(level, settings.Log.File); err != nil {
			fmt.Fprintf(os.Stderr, "error initializing log file: %v\n", err)
			os.Exit(1)
		}
	} else {
		logging.Init(level)
	}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
