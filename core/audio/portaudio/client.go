// Package portaudio provides an in-process capture backend through
// PortAudio, as an alternative to the subprocess recorder.
package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/voxline/vox-core/core/audio"
)

const defaultBufferSize = 1600 // 100ms of frames at 16kHz

// captureStream is the part of *portaudio.Stream the client drives.
type captureStream interface {
	Start() error
	Stop() error
	Close() error
	Read() error
}

type Client struct {
	bufferSize int
	stream     captureStream
	in         []int16

	onChunk func(chunk []byte)
	onLevel func(level float64)

	mu      sync.Mutex
	buffer  [][]byte
	started bool
	done    chan struct{}
}

type ClientOption func(*Client)

func WithBufferSize(bufferSize int) ClientOption {
	return func(c *Client) {
		c.bufferSize = bufferSize
	}
}

func WithChunkCallback(callback func(chunk []byte)) ClientOption {
	return func(c *Client) {
		c.onChunk = callback
	}
}

func WithLevelCallback(callback func(level float64)) ClientOption {
	return func(c *Client) {
		c.onLevel = callback
	}
}

func NewClient(opts ...ClientOption) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	client := &Client{bufferSize: defaultBufferSize}
	for _, opt := range opts {
		opt(client)
	}

	client.in = make([]int16, client.bufferSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, audio.DefaultSampleRate, client.bufferSize, client.in)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open portaudio stream: %w", err)
	}
	client.stream = stream

	return client, nil
}

func (c *Client) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.started
}

// Start begins buffering. The capture outlives the context of the
// command that started it; only Stop ends it.
func (c *Client) Start(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}
	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start portaudio stream: %w", err)
	}

	c.started = true
	c.buffer = nil
	c.done = make(chan struct{})

	go c.consume(c.done)

	return nil
}

func (c *Client) consume(done chan struct{}) {
	defer close(done)

	for {
		c.mu.Lock()
		started := c.started
		c.mu.Unlock()
		if !started {
			return
		}

		if err := c.stream.Read(); err != nil {
			logger.Warn("failed to read from portaudio stream", "error", err)
			continue
		}

		chunkBuffer := bytes.Buffer{}
		binary.Write(&chunkBuffer, binary.LittleEndian, c.in)
		chunk := chunkBuffer.Bytes()

		c.mu.Lock()
		if c.started {
			c.buffer = append(c.buffer, chunk)
		}
		c.mu.Unlock()

		if c.onChunk != nil {
			c.onChunk(chunk)
		}
		if c.onLevel != nil {
			c.onLevel(audio.Level(chunk))
		}
	}
}

func (c *Client) Stop() ([]byte, error) {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return nil, nil
	}
	c.started = false
	done := c.done
	c.mu.Unlock()

	<-done
	if err := c.stream.Stop(); err != nil {
		return nil, fmt.Errorf("failed to stop portaudio stream: %w", err)
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

func (c *Client) Close() {
	c.stream.Close()
	portaudio.Terminate()
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}
