package audiofx

import (
	"encoding/hex"
	"runtime"
	"strings"
	"unsafe"

	"github.com/gen2brain/malgo"

	"github.com/mkuoppala/audiofx/internal/errors"
	"github.com/mkuoppala/audiofx/internal/logging"
)

// DeviceInfo describes one enumerated audio device.
type DeviceInfo struct {
	Index   int
	Name    string
	ID      string
	Default bool
}

// platformBackend picks the native backend for the current OS. Other
// platforms fall through to miniaudio's auto selection.
func platformBackend() []malgo.Backend {
	switch runtime.GOOS {
	case "linux":
		return []malgo.Backend{malgo.BackendAlsa}
	case "windows":
		return []malgo.Backend{malgo.BackendWasapi}
	case "darwin":
		return []malgo.Backend{malgo.BackendCoreaudio}
	default:
		return nil
	}
}

// ListCaptureDevices enumerates the available capture devices.
func ListCaptureDevices() ([]DeviceInfo, error) {
	return listDevices(malgo.Capture)
}

// ListPlaybackDevices enumerates the available playback devices.
func ListPlaybackDevices() ([]DeviceInfo, error) {
	return listDevices(malgo.Playback)
}

func listDevices(deviceType malgo.DeviceType) ([]DeviceInfo, error) {
	ctx, err := malgo.InitContext(platformBackend(), malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, errors.New(err).
			Component("audiofx").
			Category(errors.CategoryAudioDevice).
			Context("operation", "context_init").
			Build()
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(deviceType)
	if err != nil {
		return nil, errors.New(err).
			Component("audiofx").
			Category(errors.CategoryAudioDevice).
			Context("operation", "device_enumeration").
			Build()
	}

	logger := logging.ForService("audiofx")
	devices := make([]DeviceInfo, 0, len(infos))
	for i, info := range infos {
		decodedID, err := hexToASCII(info.ID.String())
		if err != nil {
			if logger != nil {
				logger.Warn("skipping device with undecodable id", "index", i, "error", err)
			}
			continue
		}
		devices = append(devices, DeviceInfo{
			Index:   i,
			Name:    info.Name(),
			ID:      decodedID,
			Default: info.IsDefault == 1,
		})
	}
	return devices, nil
}

// matchesDevice checks whether an enumerated device matches the
// user-specified source string by id or name substring.
func matchesDevice(decodedID string, info malgo.DeviceInfo, source string) bool {
	if runtime.GOOS == "windows" && source == "sysdefault" {
		// Windows has no "sysdefault" device, use the system default.
		return info.IsDefault == 1
	}
	return decodedID == source || strings.Contains(info.Name(), source)
}

// hexToASCII converts a hexadecimal device id string to ASCII.
func hexToASCII(hexStr string) (string, error) {
	bytes, err := hex.DecodeString(hexStr)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// DuplexStream owns a malgo duplex device bound to a RealTimeProcessor.
// It satisfies AudioStream.
type DuplexStream struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	name   string
}

// selectDevice finds the device id matching the given source string among
// the devices of the requested type. It returns the id pointer and the
// device name.
func selectDevice(ctx *malgo.AllocatedContext, deviceType malgo.DeviceType, source string) (unsafe.Pointer, string, error) {
	infos, err := ctx.Devices(deviceType)
	if err != nil {
		return nil, "", errors.New(err).
			Component("audiofx").
			Category(errors.CategoryAudioDevice).
			Context("operation", "device_enumeration").
			Build()
	}

	for _, info := range infos {
		decodedID, err := hexToASCII(info.ID.String())
		if err != nil {
			continue
		}
		if matchesDevice(decodedID, info, source) {
			return info.ID.Pointer(), info.Name(), nil
		}
	}
	return nil, "", errors.Newf("no device matches %q", source).
		Component("audiofx").
		Category(errors.CategoryNotFound).
		Context("source", source).
		Build()
}

// OpenDuplexStream initializes a full duplex device whose capture callback
// feeds the processor input buffer and whose playback callback drains the
// processed output. source selects the capture device and sink the playback
// device; empty means the system default for either direction.
func OpenDuplexStream(source, sink string, rt *RealTimeProcessor) (*DuplexStream, error) {
	ctx, err := malgo.InitContext(platformBackend(), malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, errors.New(err).
			Component("audiofx").
			Category(errors.CategoryAudioDevice).
			Context("operation", "context_init").
			Build()
	}

	cleanup := func() {
		_ = ctx.Uninit()
		ctx.Free()
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Duplex)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(rt.cfg.Channels)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(rt.cfg.Channels)
	deviceConfig.SampleRate = uint32(rt.cfg.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(rt.cfg.BlockSize)
	deviceConfig.Alsa.NoMMap = 1

	name := "default"
	if source != "" {
		id, deviceName, err := selectDevice(ctx, malgo.Capture, source)
		if err != nil {
			cleanup()
			return nil, err
		}
		deviceConfig.Capture.DeviceID = id
		name = deviceName
	}
	if sink != "" {
		id, _, err := selectDevice(ctx, malgo.Playback, sink)
		if err != nil {
			cleanup()
			return nil, err
		}
		deviceConfig.Playback.DeviceID = id
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, pInputSample []byte, framecount uint32) {
			rt.OnDeviceInput(pInputSample)
			rt.FillDeviceOutput(pOutputSample)
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		cleanup()
		return nil, errors.New(err).
			Component("audiofx").
			Category(errors.CategoryAudioDevice).
			Context("operation", "device_init").
			Context("source", source).
			Build()
	}

	return &DuplexStream{ctx: ctx, device: device, name: name}, nil
}

// DeviceName returns the name of the selected capture device.
func (s *DuplexStream) DeviceName() string { return s.name }

// Start begins the device callbacks.
func (s *DuplexStream) Start() error {
	if err := s.device.Start(); err != nil {
		return errors.New(err).
			Component("audiofx").
			Category(errors.CategoryAudioDevice).
			Context("operation", "device_start").
			Build()
	}
	return nil
}

// Stop halts the device callbacks.
func (s *DuplexStream) Stop() error {
	if err := s.device.Stop(); err != nil {
		return errors.New(err).
			Component("audiofx").
			Category(errors.CategoryAudioDevice).
			Context("operation", "device_stop").
			Build()
	}
	return nil
}

// Close releases the device and the backend context.
func (s *DuplexStream) Close() {
	s.device.Uninit()
	_ = s.ctx.Uninit()
	s.ctx.Free()
}
