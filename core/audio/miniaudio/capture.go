package miniaudio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/voxline/vox-core/core/audio"
)

type captureClient struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig

	onChunk func(chunk []byte)
	onLevel func(level float64)

	mu      sync.Mutex
	buffer  [][]byte
	started bool
}

func (c *captureClient) Init(audioContext *malgo.AllocatedContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sampleRate := uint32(audio.DefaultSampleRate)
	channels := 1
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	c.config = malgo.DefaultDeviceConfig(malgo.Capture)
	c.config.SampleRate = sampleRate
	c.config.Capture.Format = format
	c.config.Capture.Channels = uint32(channels)
	c.config.Alsa.NoMMap = 1
	c.config.PerformanceProfile = malgo.LowLatency
	c.config.PeriodSizeInFrames = 480
	c.config.Periods = 3

	c.audioContext = audioContext

	var err error
	c.device, err = malgo.InitDevice(c.audioContext.Context, c.config, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * bytesPerFrame
			if len(pInput) < n || n == 0 {
				return
			}
			c.consume(pInput[:n])
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}

	return nil
}

func (c *captureClient) consume(chunk []byte) {
	received := make([]byte, len(chunk))
	copy(received, chunk)

	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.buffer = append(c.buffer, received)
	c.mu.Unlock()

	if c.onChunk != nil {
		c.onChunk(received)
	}
	if c.onLevel != nil {
		c.onLevel(audio.Level(received))
	}
}

func (c *captureClient) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.started
}

func (c *captureClient) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return fmt.Errorf("device not initialized")
	} else if c.started {
		return nil
	}

	c.buffer = nil
	if err := c.device.Start(); err != nil {
		return fmt.Errorf("failed to start capture device: %w", err)
	}
	c.started = true

	return nil
}

func (c *captureClient) Stop() ([]byte, error) {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return nil, nil
	}
	c.started = false
	device := c.device
	c.mu.Unlock()

	if device != nil {
		if err := device.Stop(); err != nil {
			return nil, fmt.Errorf("failed to stop capture device: %w", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var size int
	for _, chunk := range c.buffer {
		size += len(chunk)
	}
	pcm := make([]byte, 0, size)
	for _, chunk := range c.buffer {
		pcm = append(pcm, chunk...)
	}
	c.buffer = nil

	return pcm, nil
}

func (c *captureClient) Uninit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}
	c.started = false

	return nil
}
