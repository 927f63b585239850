// Package miniaudio provides in-process capture and playback through the
// miniaudio library, as an alternative to the subprocess backends.
package miniaudio

import (
	"context"
	"fmt"

	"github.com/gen2brain/malgo"

	"github.com/voxline/vox-core/core/audio"
)

type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext   *malgo.AllocatedContext
	playbackClient PlaybackSink
	captureClient  captureClient
}

type ClientOption func(*Client)

// WithLevelCallback registers a callback invoked with the normalized RMS
// level of every captured chunk.
func WithLevelCallback(callback func(level float64)) ClientOption {
	return func(c *Client) {
		c.captureClient.onLevel = callback
	}
}

// WithChunkCallback registers a callback invoked for every captured chunk.
func WithChunkCallback(callback func(chunk []byte)) ClientOption {
	return func(c *Client) {
		c.captureClient.onChunk = callback
	}
}

func NewClient(opts ...ClientOption) (*Client, error) {
	audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize miniaudio context: %w", err)
	}

	client := Client{audioContext: audioCtx}
	for _, opt := range opts {
		opt(&client)
	}

	if err := client.playbackClient.Init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize playback client: %w", err)
	}
	if err := client.captureClient.Init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize capture client: %w", err)
	}

	return &client, nil
}

// Start begins buffering captured audio. It satisfies the same contract as
// the subprocess recorder.
func (c *Client) Start(ctx context.Context) error {
	return c.captureClient.Start(ctx)
}

// Stop ends the capture and returns the buffered recording.
func (c *Client) Stop() ([]byte, error) {
	return c.captureClient.Stop()
}

func (c *Client) Active() bool {
	return c.captureClient.Active()
}

// Sink exposes the playback device as a raw PCM sink. The returned value
// satisfies [github.com/voxline/vox-core/core/audio/playback.Sink].
func (c *Client) Sink() *PlaybackSink {
	return &c.playbackClient
}

func (c *Client) Close() {
	_ = c.captureClient.Uninit()
	_ = c.playbackClient.Uninit()
	_ = c.audioContext.Uninit()
	c.audioContext.Free()
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}
