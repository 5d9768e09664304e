package audiofx

import (
	"github.com/mkuoppala/audiofx/internal/conf"
	"github.com/mkuoppala/audiofx/internal/dsp"
	"github.com/mkuoppala/audiofx/internal/errors"
	"github.com/mkuoppala/audiofx/internal/observability/metrics"
)

// BuildPipeline constructs a pipeline with all configured chains and
// effects. Settings are expected to be validated already; construction
// errors still surface for anything validation cannot catch.
func BuildPipeline(settings *conf.Settings, metricsInstance *metrics.AudioFXMetrics) (*Pipeline, error) {
	audio := settings.Audio
	pipeline, err := NewPipelineSized(settings.Pipeline.ID, audio.SampleRate, audio.BlockSize, audio.Channels, audio.BufferBlocks, metricsInstance)
	if err != nil {
		return nil, err
	}

	for i := range settings.Pipeline.Chains {
		chain, err := buildChain(&settings.Pipeline.Chains[i], audio.SampleRate, audio.BlockSize, audio.Channels)
		if err != nil {
			return nil, err
		}
		if err := pipeline.AddChain(chain); err != nil {
			return nil, err
		}
	}

	return pipeline, nil
}

func buildChain(cfg *conf.ChainSettings, sampleRate, blockSize, channels int) (*Chain, error) {
	priority, err := ParsePriority(cfg.Priority)
	if err != nil {
		return nil, err
	}
	latencyMode, err := ParseLatencyMode(cfg.LatencyMode)
	if err != nil {
		return nil, err
	}

	chain := NewChain(cfg.ID, cfg.Name, priority, latencyMode)
	chain.SetEnabled(cfg.Enabled)

	for i := range cfg.Effects {
		effect, err := buildEffect(&cfg.Effects[i], sampleRate, blockSize, channels)
		if err != nil {
			return nil, errors.New(err).
				Component("audiofx").
				Category(errors.CategoryConfiguration).
				Context("chain_id", cfg.ID).
				Context("effect_name", cfg.Effects[i].Name).
				Build()
		}
		if err := chain.AddEffect(effect); err != nil {
			return nil, err
		}
	}

	return chain, nil
}

func buildEffect(cfg *conf.EffectSettings, sampleRate, blockSize, channels int) (dsp.Effect, error) {
	effect, err := dsp.New(cfg.Type, sampleRate, blockSize)
	if err != nil {
		return nil, err
	}

	effect.SetName(cfg.Name)
	effect.SetChannels(channels)
	for name, value := range cfg.Parameters {
		effect.SetParameter(name, value)
	}
	effect.SetEnabled(cfg.Enabled)
	effect.SetDryWet(cfg.DryWet)

	return effect, nil
}
