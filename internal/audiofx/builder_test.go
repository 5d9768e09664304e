package audiofx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuoppala/audiofx/internal/conf"
	"github.com/mkuoppala/audiofx/internal/dsp"
)

func builderSettings() *conf.Settings {
	return &conf.Settings{
		Audio: conf.AudioSettings{
			SampleRate:   48000,
			BlockSize:    512,
			Channels:     2,
			PollInterval: 2 * time.Millisecond,
		},
		Pipeline: conf.PipelineSettings{
			ID: "main",
			Chains: []conf.ChainSettings{
				{
					ID:          "voice",
					Name:        "Voice",
					Priority:    "high",
					LatencyMode: "low",
					Enabled:     true,
					Effects: []conf.EffectSettings{
						{
							Name:    "gate",
							Type:    "noise_gate",
							Enabled: true,
							DryWet:  1.0,
							Parameters: map[string]float64{
								"threshold": -45.0,
							},
						},
						{
							Name:    "comp",
							Type:    "compressor",
							Enabled: true,
							DryWet:  0.8,
							Parameters: map[string]float64{
								"threshold": -18.0,
								"ratio":     3.0,
							},
						},
					},
				},
				{
					ID:          "master",
					Name:        "Master",
					Priority:    "critical",
					LatencyMode: "ultra_low",
					Enabled:     false,
					Effects: []conf.EffectSettings{
						{
							Name:    "limiter",
							Type:    "limiter",
							Enabled: true,
							DryWet:  1.0,
						},
					},
				},
			},
		},
	}
}

func TestBuildPipeline(t *testing.T) {
	pipeline, err := BuildPipeline(builderSettings(), nil)
	require.NoError(t, err)

	assert.Equal(t, "main", pipeline.ID())
	assert.Equal(t, 48000, pipeline.SampleRate())
	assert.Equal(t, 512, pipeline.BlockSize())
	assert.Equal(t, 2, pipeline.Channels())

	chains := pipeline.Chains()
	require.Len(t, chains, 2)

	voice := chains[0]
	assert.Equal(t, "voice", voice.ID())
	assert.Equal(t, PriorityHigh, voice.Priority())
	assert.Equal(t, LatencyLow, voice.LatencyMode())
	assert.True(t, voice.Enabled())

	effects := voice.Effects()
	require.Len(t, effects, 2)
	assert.Equal(t, "gate", effects[0].Name())
	assert.Equal(t, dsp.TypeNoiseGate, effects[0].Type())

	threshold, ok := effects[0].Parameter("threshold")
	require.True(t, ok)
	assert.InDelta(t, -45.0, threshold, 1e-10)

	assert.Equal(t, "comp", effects[1].Name())
	assert.InDelta(t, 0.8, effects[1].DryWet(), 1e-10)

	master := chains[1]
	assert.False(t, master.Enabled())
	assert.Equal(t, PriorityCritical, master.Priority())
}

func TestBuildPipeline_Errors(t *testing.T) {
	t.Run("unknown effect type", func(t *testing.T) {
		s := builderSettings()
		s.Pipeline.Chains[0].Effects[0].Type = "chorus"
		_, err := BuildPipeline(s, nil)
		assert.Error(t, err)
	})

	t.Run("unknown priority", func(t *testing.T) {
		s := builderSettings()
		s.Pipeline.Chains[0].Priority = "urgent"
		_, err := BuildPipeline(s, nil)
		assert.Error(t, err)
	})
}
