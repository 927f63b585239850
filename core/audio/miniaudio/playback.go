package miniaudio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/voxline/vox-core/core/audio"
)

// PlaybackSink feeds raw PCM into the playback device and reports when the
// buffered audio has drained.
type PlaybackSink struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig

	leftoverAudio []byte
	drainWaiters  []chan struct{}

	mu      sync.Mutex
	audioMu sync.Mutex
}

func (c *PlaybackSink) Init(audioContext *malgo.AllocatedContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sampleRate := uint32(audio.DefaultSampleRate)
	channels := 1
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	c.config = malgo.DefaultDeviceConfig(malgo.Playback)
	c.config.SampleRate = sampleRate
	c.config.Playback.Format = format
	c.config.Playback.Channels = uint32(channels)
	c.config.Alsa.NoMMap = 1
	c.config.PeriodSizeInFrames = sampleRate / 10 // ~100ms of audio
	c.config.Periods = 4

	c.audioContext = audioContext

	var err error
	if c.device, err = malgo.InitDevice(
		c.audioContext.Context,
		c.config,
		malgo.DeviceCallbacks{Data: c.processAudio(bytesPerFrame)},
	); err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	return nil
}

// Play queues the samples on the device and blocks until they have drained,
// the context is cancelled or Stop is called.
func (c *PlaybackSink) Play(ctx context.Context, pcm []byte, encoding audio.EncodingInfo) error {
	if encoding.Format.IsCompressed() {
		return fmt.Errorf("playback sink only accepts raw PCM, got %q", encoding.Format.Name())
	}

	c.mu.Lock()
	if c.device == nil {
		c.mu.Unlock()
		return fmt.Errorf("device not initialized")
	}
	if !c.device.IsStarted() {
		if err := c.device.Start(); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("failed to start playback device: %w", err)
		}
	}
	c.mu.Unlock()

	drained := make(chan struct{})
	c.audioMu.Lock()
	c.leftoverAudio = append(c.leftoverAudio, pcm...)
	c.drainWaiters = append(c.drainWaiters, drained)
	c.audioMu.Unlock()

	select {
	case <-ctx.Done():
		_ = c.Stop()
		return ctx.Err()
	case <-drained:
		return nil
	}
}

// Stop drops any buffered audio and releases pending Play calls.
func (c *PlaybackSink) Stop() error {
	c.audioMu.Lock()
	c.leftoverAudio = nil
	waiters := c.drainWaiters
	c.drainWaiters = nil
	c.audioMu.Unlock()

	for _, waiter := range waiters {
		close(waiter)
	}

	return nil
}

func (c *PlaybackSink) Uninit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return fmt.Errorf("device not initialized")
	}

	c.device.Uninit()
	c.device = nil

	return nil
}

func (c *PlaybackSink) processAudio(bytesPerFrame int) malgo.DataProc {
	return func(pOutput, _ []byte, frameCount uint32) {
		need := int(frameCount) * bytesPerFrame

		c.audioMu.Lock()
		defer c.audioMu.Unlock()

		if len(c.leftoverAudio) == 0 {
			return
		}

		if len(c.leftoverAudio) <= need {
			copy(pOutput, c.leftoverAudio)
			c.leftoverAudio = nil
			waiters := c.drainWaiters
			c.drainWaiters = nil
			for _, waiter := range waiters {
				close(waiter)
			}
			return
		}

		copy(pOutput, c.leftoverAudio[:need])
		c.leftoverAudio = c.leftoverAudio[need:]
	}
}
