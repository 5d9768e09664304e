package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	return &Settings{
		Audio: AudioSettings{
			SampleRate:   48000,
			BlockSize:    512,
			Channels:     2,
			BufferBlocks: 8,
			PollInterval: 2 * time.Millisecond,
		},
		Pipeline: PipelineSettings{
			ID: "main",
			Chains: []ChainSettings{
				{
					ID:          "voice",
					Name:        "Voice",
					Priority:    "high",
					LatencyMode: "low",
					Enabled:     true,
					Effects: []EffectSettings{
						{
							Name:    "comp",
							Type:    "compressor",
							Enabled: true,
							DryWet:  1.0,
							Parameters: map[string]float64{
								"threshold": -20.0,
								"ratio":     4.0,
							},
						},
					},
				},
			},
		},
	}
}

func TestValidateSettings_Valid(t *testing.T) {
	assert.NoError(t, ValidateSettings(validSettings()))
}

func TestValidateSettings_Audio(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"odd sample rate", func(s *Settings) { s.Audio.SampleRate = 12345 }},
		{"block size too small", func(s *Settings) { s.Audio.BlockSize = 16 }},
		{"block size too large", func(s *Settings) { s.Audio.BlockSize = 16384 }},
		{"zero channels", func(s *Settings) { s.Audio.Channels = 0 }},
		{"too few buffer blocks", func(s *Settings) { s.Audio.BufferBlocks = 1 }},
		{"zero poll interval", func(s *Settings) { s.Audio.PollInterval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(s)
			assert.Error(t, ValidateSettings(s))
		})
	}
}

func TestValidateSettings_Pipeline(t *testing.T) {
	t.Run("empty pipeline id", func(t *testing.T) {
		s := validSettings()
		s.Pipeline.ID = ""
		assert.Error(t, ValidateSettings(s))
	})

	t.Run("duplicate chain id", func(t *testing.T) {
		s := validSettings()
		s.Pipeline.Chains = append(s.Pipeline.Chains, s.Pipeline.Chains[0])
		assert.Error(t, ValidateSettings(s))
	})

	t.Run("unknown priority", func(t *testing.T) {
		s := validSettings()
		s.Pipeline.Chains[0].Priority = "urgent"
		assert.Error(t, ValidateSettings(s))
	})

	t.Run("unknown latency mode", func(t *testing.T) {
		s := validSettings()
		s.Pipeline.Chains[0].LatencyMode = "instant"
		assert.Error(t, ValidateSettings(s))
	})
}

func TestValidateSettings_Effects(t *testing.T) {
	t.Run("unknown effect type", func(t *testing.T) {
		s := validSettings()
		s.Pipeline.Chains[0].Effects[0].Type = "reverb"
		err := ValidateSettings(s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reverb")
	})

	t.Run("unknown parameter name", func(t *testing.T) {
		s := validSettings()
		s.Pipeline.Chains[0].Effects[0].Parameters["wetness"] = 0.5
		err := ValidateSettings(s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "wetness")
	})

	t.Run("parameter out of range", func(t *testing.T) {
		s := validSettings()
		s.Pipeline.Chains[0].Effects[0].Parameters["ratio"] = 500.0
		assert.Error(t, ValidateSettings(s))
	})

	t.Run("drywet out of range", func(t *testing.T) {
		s := validSettings()
		s.Pipeline.Chains[0].Effects[0].DryWet = 1.5
		assert.Error(t, ValidateSettings(s))
	})

	t.Run("equalizer frequency above nyquist", func(t *testing.T) {
		s := validSettings()
		s.Pipeline.Chains[0].Effects = []EffectSettings{{
			Name:    "eq",
			Type:    "equalizer",
			Enabled: true,
			DryWet:  1.0,
			Parameters: map[string]float64{
				"mid_freq": 30000.0,
			},
		}}
		assert.Error(t, ValidateSettings(s))
	})

	t.Run("equalizer gain in range", func(t *testing.T) {
		s := validSettings()
		s.Pipeline.Chains[0].Effects = []EffectSettings{{
			Name:    "eq",
			Type:    "equalizer",
			Enabled: true,
			DryWet:  1.0,
			Parameters: map[string]float64{
				"mid_gain": 6.0,
			},
		}}
		assert.NoError(t, ValidateSettings(s))
	})
}
