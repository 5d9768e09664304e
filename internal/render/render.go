// Package render runs the processing pipeline offline over a WAV file,
// using the same chains and effects as the real-time path.
package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/mkuoppala/audiofx/internal/audiofx"
	"github.com/mkuoppala/audiofx/internal/conf"
	"github.com/mkuoppala/audiofx/internal/errors"
	"github.com/mkuoppala/audiofx/internal/logging"
)

const outputBitDepth = 16

// ProcessFile decodes inputPath, runs every block through the configured
// pipeline and writes the result to outputPath as 16-bit WAV. The file's
// own sample rate and channel count override the configured ones so the
// effect coefficients match the material.
func ProcessFile(settings *conf.Settings, inputPath, outputPath string) error {
	logger := logging.ForService("audiofx")

	inFile, err := os.Open(inputPath)
	if err != nil {
		return errors.New(err).
			Component("render").
			Category(errors.CategoryFileIO).
			Context("path", inputPath).
			Build()
	}
	defer inFile.Close()

	decoder := wav.NewDecoder(inFile)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return errors.Newf("input is not a valid WAV audio file: %s", inputPath).
			Component("render").
			Category(errors.CategoryValidation).
			Build()
	}

	divisor, err := sampleDivisor(int(decoder.BitDepth))
	if err != nil {
		return err
	}

	// Rebuild the pipeline at the file's format.
	fileSettings := *settings
	fileSettings.Audio.SampleRate = int(decoder.SampleRate)
	fileSettings.Audio.Channels = int(decoder.NumChans)

	pipeline, err := audiofx.BuildPipeline(&fileSettings, nil)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return errors.New(err).
			Component("render").
			Category(errors.CategoryFileIO).
			Context("path", outputPath).
			Build()
	}
	outFile, err := os.Create(outputPath)
	if err != nil {
		return errors.New(err).
			Component("render").
			Category(errors.CategoryFileIO).
			Context("path", outputPath).
			Build()
	}
	defer outFile.Close()

	encoder := wav.NewEncoder(outFile,
		int(decoder.SampleRate), outputBitDepth, int(decoder.NumChans), 1)

	blockSamples := fileSettings.Audio.BlockSize * fileSettings.Audio.Channels
	format := &audio.Format{
		SampleRate:  int(decoder.SampleRate),
		NumChannels: int(decoder.NumChans),
	}
	inBuf := &audio.IntBuffer{
		Data:   make([]int, blockSamples),
		Format: format,
	}
	block := make([]float32, blockSamples)
	outInts := make([]int, blockSamples)

	blocks := 0
	for {
		n, err := decoder.PCMBuffer(inBuf)
		if err != nil {
			return errors.New(err).
				Component("render").
				Category(errors.CategoryFileIO).
				Context("operation", "decode").
				Build()
		}
		if n == 0 {
			break
		}

		for i := 0; i < n; i++ {
			block[i] = float32(float64(inBuf.Data[i]) / divisor)
		}
		// Final partial block is zero-padded to keep effect state aligned.
		for i := n; i < blockSamples; i++ {
			block[i] = 0
		}

		out := pipeline.ProcessBlock(block)

		for i := 0; i < n; i++ {
			v := float64(out[i]) * 32767.0
			if v > 32767 {
				v = 32767
			} else if v < -32768 {
				v = -32768
			}
			outInts[i] = int(v)
		}

		if err := encoder.Write(&audio.IntBuffer{Data: outInts[:n], Format: format}); err != nil {
			return errors.New(err).
				Component("render").
				Category(errors.CategoryFileIO).
				Context("operation", "encode").
				Build()
		}
		blocks++
	}

	if err := encoder.Close(); err != nil {
		return errors.New(err).
			Component("render").
			Category(errors.CategoryFileIO).
			Context("operation", "encoder_close").
			Build()
	}

	snapshot := pipeline.Snapshot()
	logger.Info("file rendered",
		"input", inputPath,
		"output", outputPath,
		"blocks", blocks,
		"avg_processing", snapshot.AverageProcessingTime,
		"overloads", snapshot.OverloadCount)
	fmt.Printf("Rendered %d blocks to %s\n", blocks, outputPath)

	return nil
}

func sampleDivisor(bitDepth int) (float64, error) {
	switch bitDepth {
	case 16:
		return 32768.0, nil
	case 24:
		return 8388608.0, nil
	case 32:
		return 2147483648.0, nil
	default:
		return 0, errors.Newf("unsupported bit depth: %d", bitDepth).
			Component("render").
			Category(errors.CategoryValidation).
			Build()
	}
}
