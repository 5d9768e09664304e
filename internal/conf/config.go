// Package conf loads and validates the application configuration with
// viper, supporting a yaml config file and AUDIOFX_ environment overrides.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Settings is the root configuration structure.
type Settings struct {
	Debug bool // enables debug level logging

	Log      LogSettings
	Audio    AudioSettings
	Pipeline PipelineSettings
	Metrics  MetricsSettings
}

// LogSettings controls log output.
type LogSettings struct {
	Level string // debug, info, warn, error
	File  string // optional rotated log file path
}

// AudioSettings describes the stream format and device selection.
type AudioSettings struct {
	SampleRate   int
	BlockSize    int
	Channels     int
	Source       string        // capture device id or name substring, empty for default
	Sink         string        // playback device id or name substring, empty for default
	BufferBlocks int           // input/output ring capacity in blocks
	PollInterval time.Duration // monitor loop poll cadence
}

// MetricsSettings controls the optional Prometheus endpoint.
type MetricsSettings struct {
	Enabled bool
	Listen  string // host:port of the metrics HTTP listener
}

// PipelineSettings describes the processing chains built on startup.
type PipelineSettings struct {
	ID     string
	Chains []ChainSettings
}

// ChainSettings describes one processing chain and its effects in order.
type ChainSettings struct {
	ID          string
	Name        string
	Priority    string // critical, high, medium, low
	LatencyMode string // ultra_low, low, medium, high
	Enabled     bool
	Effects     []EffectSettings
}

// EffectSettings describes one effect instance inside a chain.
type EffectSettings struct {
	Name       string
	Type       string // compressor, equalizer, limiter, noise_gate
	Enabled    bool
	DryWet     float64
	Parameters map[string]float64
}

var (
	settingsInstance *Settings
	settingsMutex    sync.Mutex
)

// Load reads the configuration file and environment variables into a
// validated Settings instance.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// Setting returns the last loaded settings, or nil before Load.
func Setting() *Settings {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	return settingsInstance
}

func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("audiofx")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	configPaths, err := defaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("fatal error reading config file: %w", err)
		}
		// No config file is fine, defaults plus env apply.
	}

	return nil
}

// defaultConfigPaths returns the OS specific configuration search paths,
// with the working directory always included for local runs.
func defaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return []string{"."}, nil
	}

	switch runtime.GOOS {
	case "windows":
		return []string{
			".",
			filepath.Join(homeDir, "AppData", "Roaming", "audiofx"),
		}, nil
	default:
		return []string{
			".",
			filepath.Join(homeDir, ".config", "audiofx"),
			"/etc/audiofx",
		}, nil
	}
}
