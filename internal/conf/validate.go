package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/mkuoppala/audiofx/internal/dsp"
)

var validPriorities = map[string]bool{
	"critical": true,
	"high":     true,
	"medium":   true,
	"low":      true,
}

var validLatencyModes = map[string]bool{
	"ultra_low": true,
	"low":       true,
	"medium":    true,
	"high":      true,
}

// parameterRange bounds one effect parameter. Min and Max are inclusive
// unless ExclusiveMin is set.
type parameterRange struct {
	Min          float64
	Max          float64
	ExclusiveMin bool
}

func (r parameterRange) contains(v float64) bool {
	if r.ExclusiveMin {
		if v <= r.Min {
			return false
		}
	} else if v < r.Min {
		return false
	}
	return v <= r.Max
}

// parameterRanges holds the accepted value ranges per effect type. EQ
// frequency and Q ranges depend on the sample rate and are checked
// separately.
var parameterRanges = map[string]map[string]parameterRange{
	dsp.TypeCompressor: {
		"threshold":    {Min: -120, Max: 0},
		"ratio":        {Min: 1, Max: 100},
		"attack_time":  {Min: 0, Max: 10, ExclusiveMin: true},
		"release_time": {Min: 0, Max: 10, ExclusiveMin: true},
		"knee_width":   {Min: 0, Max: 24},
		"makeup_gain":  {Min: -24, Max: 24},
	},
	dsp.TypeLimiter: {
		"threshold":      {Min: -120, Max: 0},
		"attack_time":    {Min: 0, Max: 10, ExclusiveMin: true},
		"release_time":   {Min: 0, Max: 10, ExclusiveMin: true},
		"lookahead_time": {Min: 0, Max: 0.05, ExclusiveMin: true},
	},
	dsp.TypeNoiseGate: {
		"threshold":    {Min: -120, Max: 0},
		"attack_time":  {Min: 0, Max: 10, ExclusiveMin: true},
		"release_time": {Min: 0, Max: 10, ExclusiveMin: true},
		"hold_time":    {Min: 0, Max: 10},
		"range":        {Min: -120, Max: 0},
	},
}

// ValidateSettings checks the whole configuration and returns the first
// problem found.
func ValidateSettings(settings *Settings) error {
	if err := validateAudio(&settings.Audio); err != nil {
		return err
	}
	return validatePipeline(settings)
}

func validateAudio(audio *AudioSettings) error {
	switch audio.SampleRate {
	case 22050, 44100, 48000, 88200, 96000, 192000:
	default:
		return fmt.Errorf("unsupported sample rate: %d", audio.SampleRate)
	}
	if audio.BlockSize < 32 || audio.BlockSize > 8192 {
		return fmt.Errorf("block size out of range [32, 8192]: %d", audio.BlockSize)
	}
	if audio.Channels < 1 || audio.Channels > 8 {
		return fmt.Errorf("channel count out of range [1, 8]: %d", audio.Channels)
	}
	if audio.BufferBlocks < 2 || audio.BufferBlocks > 64 {
		return fmt.Errorf("buffer blocks out of range [2, 64]: %d", audio.BufferBlocks)
	}
	if audio.PollInterval <= 0 || audio.PollInterval > 100*time.Millisecond {
		return fmt.Errorf("poll interval out of range (0, 100ms]: %s", audio.PollInterval)
	}
	return nil
}

func validatePipeline(settings *Settings) error {
	if settings.Pipeline.ID == "" {
		return fmt.Errorf("pipeline id cannot be empty")
	}

	seen := make(map[string]bool)
	for i := range settings.Pipeline.Chains {
		chain := &settings.Pipeline.Chains[i]
		if chain.ID == "" {
			return fmt.Errorf("chain %d: id cannot be empty", i)
		}
		if seen[chain.ID] {
			return fmt.Errorf("duplicate chain id: %s", chain.ID)
		}
		seen[chain.ID] = true

		if !validPriorities[chain.Priority] {
			return fmt.Errorf("chain %s: unknown priority: %s", chain.ID, chain.Priority)
		}
		if !validLatencyModes[chain.LatencyMode] {
			return fmt.Errorf("chain %s: unknown latency mode: %s", chain.ID, chain.LatencyMode)
		}

		for j := range chain.Effects {
			if err := validateEffect(settings, &chain.Effects[j]); err != nil {
				return fmt.Errorf("chain %s: effect %d (%s): %w", chain.ID, j, chain.Effects[j].Name, err)
			}
		}
	}
	return nil
}

// validateEffect checks the effect type and every configured parameter.
// A probe effect instance verifies that each parameter name exists, so
// typos in the config fail at startup instead of being silently ignored.
func validateEffect(settings *Settings, effect *EffectSettings) error {
	probe, err := dsp.New(effect.Type, settings.Audio.SampleRate, settings.Audio.BlockSize)
	if err != nil {
		return err
	}

	if effect.DryWet < 0 || effect.DryWet > 1 {
		return fmt.Errorf("drywet out of range [0, 1]: %g", effect.DryWet)
	}

	for name, value := range effect.Parameters {
		if _, ok := probe.Parameter(name); !ok {
			return fmt.Errorf("unknown parameter: %s", name)
		}
		if err := validateParameterValue(settings, effect.Type, name, value); err != nil {
			return err
		}
	}
	return nil
}

func validateParameterValue(settings *Settings, effectType, name string, value float64) error {
	if effectType == dsp.TypeEqualizer {
		return validateEqualizerParameter(settings, name, value)
	}
	r, ok := parameterRanges[effectType][name]
	if !ok {
		return nil
	}
	if !r.contains(value) {
		return fmt.Errorf("parameter %s out of range: %g", name, value)
	}
	return nil
}

func validateEqualizerParameter(settings *Settings, name string, value float64) error {
	switch {
	case strings.HasSuffix(name, "_gain"):
		if value < -24 || value > 24 {
			return fmt.Errorf("parameter %s out of range [-24, 24]: %g", name, value)
		}
	case strings.HasSuffix(name, "_freq"):
		nyquist := float64(settings.Audio.SampleRate) / 2
		if value <= 0 || value >= nyquist {
			return fmt.Errorf("parameter %s out of range (0, %g): %g", name, nyquist, value)
		}
	case strings.HasSuffix(name, "_q"):
		if value <= 0 || value > 36 {
			return fmt.Errorf("parameter %s out of range (0, 36]: %g", name, value)
		}
	}
	return nil
}
