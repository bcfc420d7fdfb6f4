package audio

import (
	"encoding/binary"
	"fmt"

	"github.com/gen2brain/malgo"
)

// Capture owns a single live microphone device, normalizing and
// resampling every callback buffer before pushing it onto a Queue. The
// device callback thread is the only goroutine touching the device; it
// never blocks on recognition.
type Capture struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	queue  *Queue
}

// Start opens deviceInfo for capture at the given source sample rate and
// begins pushing normalized, resampled samples into queue. Pass a nil
// deviceInfo to use the platform default capture device; device
// enumeration itself is an external concern this module doesn't implement
// (see SPEC_FULL.md).
func Start(deviceInfo *malgo.DeviceInfo, sourceRate int, queue *Queue) (*Capture, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if err != nil {
		return nil, fmt.Errorf("audio: init malgo context: %w", err)
	}

	devCfg := malgo.DefaultDeviceConfig(malgo.Capture)
	devCfg.SampleRate = uint32(sourceRate)
	devCfg.Capture.Format = malgo.FormatS16
	devCfg.Capture.Channels = 1
	devCfg.Alsa.NoMMap = 1
	if deviceInfo != nil {
		devCfg.Capture.DeviceID = deviceInfo.ID.Pointer()
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(_ []byte, raw []byte, _ uint32) {
			if len(raw) == 0 {
				return
			}
			n := len(raw) / 2
			pcm := make([]int16, n)
			for i := 0; i < n; i++ {
				pcm[i] = int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
			}
			normalized := Normalize(pcm)
			queue.Push(Resample(normalized, sourceRate))
		},
	}

	device, err := malgo.InitDevice(ctx.Context, devCfg, callbacks)
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("audio: init capture device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("audio: start capture device: %w", err)
	}

	return &Capture{ctx: ctx, device: device, queue: queue}, nil
}

// Stop halts capture and releases the device and context. The sample
// queue is left untouched: backlog intentionally survives a device swap
// or shutdown.
func (c *Capture) Stop() error {
	c.device.Stop()
	c.device.Uninit()
	if err := c.ctx.Uninit(); err != nil {
		c.ctx.Free()
		return fmt.Errorf("audio: uninit context: %w", err)
	}
	c.ctx.Free()
	return nil
}
