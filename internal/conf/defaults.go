package conf

import (
	"github.com/spf13/viper"
)

// setDefaultConfig sets the default value for every configuration
// parameter. The defaults describe a single "main" chain running the full
// effect complement at conservative settings.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", "")

	viper.SetDefault("audio.samplerate", 48000)
	viper.SetDefault("audio.blocksize", 512)
	viper.SetDefault("audio.channels", 2)
	viper.SetDefault("audio.source", "")
	viper.SetDefault("audio.sink", "")
	viper.SetDefault("audio.bufferblocks", 8)
	viper.SetDefault("audio.pollinterval", "2ms")

	viper.SetDefault("pipeline.id", "main")
	viper.SetDefault("pipeline.chains", defaultChains())

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.listen", "localhost:9090")
}

// defaultChains returns the chain configuration applied when no config
// file overrides it. Shapes use lowercase keys so viper's map merge works
// consistently with yaml input.
func defaultChains() []map[string]any {
	return []map[string]any{
		{
			"id":          "voice",
			"name":        "Voice",
			"priority":    "high",
			"latencymode": "low",
			"enabled":     true,
			"effects": []map[string]any{
				{
					"name":    "gate",
					"type":    "noise_gate",
					"enabled": true,
					"drywet":  1.0,
					"parameters": map[string]float64{
						"threshold":    -50.0,
						"attack_time":  0.001,
						"release_time": 0.1,
						"hold_time":    0.05,
						"range":        -60.0,
					},
				},
				{
					"name":    "comp",
					"type":    "compressor",
					"enabled": true,
					"drywet":  1.0,
					"parameters": map[string]float64{
						"threshold":    -20.0,
						"ratio":        4.0,
						"attack_time":  0.005,
						"release_time": 0.1,
						"knee_width":   6.0,
						"makeup_gain":  3.0,
					},
				},
				{
					"name":    "eq",
					"type":    "equalizer",
					"enabled": true,
					"drywet":  1.0,
					"parameters": map[string]float64{
						"low_shelf_gain":  0.0,
						"low_mid_gain":    0.0,
						"mid_gain":        0.0,
						"high_mid_gain":   0.0,
						"high_shelf_gain": 0.0,
					},
				},
				{
					"name":    "limiter",
					"type":    "limiter",
					"enabled": true,
					"drywet":  1.0,
					"parameters": map[string]float64{
						"threshold":      -1.0,
						"attack_time":    0.001,
						"release_time":   0.05,
						"lookahead_time": 0.005,
					},
				},
			},
		},
	}
}
