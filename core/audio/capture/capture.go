// Package capture records microphone audio through an external capture
// subprocess that streams raw PCM (mono, 16-bit signed, 16 kHz) on stdout.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"go.opentelemetry.io/otel/codes"

	"github.com/voxline/vox-core/core/audio"
)

// ErrSpawn wraps failures to start the capture subprocess. It is fatal to the
// current capture attempt, not to the session.
var ErrSpawn = errors.New("failed to spawn capture subprocess")

const chunkSize = 3200 // 100ms of s16le/16kHz/mono

// Recorder owns one capture subprocess at a time and buffers the PCM it
// streams. Start while recording and Stop while idle are both no-ops.
type Recorder struct {
	mu sync.Mutex

	command []string
	onChunk func(chunk []byte)
	onLevel func(level float64)

	cmd    *exec.Cmd
	buffer [][]byte
	done   chan struct{}
}

type RecorderOption func(*Recorder)

// WithCommand overrides the capture command. The subprocess must write raw
// s16le/16kHz/mono PCM to stdout until it is terminated.
func WithCommand(name string, args ...string) RecorderOption {
	return func(r *Recorder) {
		r.command = append([]string{name}, args...)
	}
}

// WithChunkCallback registers a callback invoked for every raw PCM chunk as
// it arrives.
func WithChunkCallback(callback func(chunk []byte)) RecorderOption {
	return func(r *Recorder) {
		r.onChunk = callback
	}
}

// WithLevelCallback registers a callback invoked with the normalized RMS
// level of every chunk, for visualization.
func WithLevelCallback(callback func(level float64)) RecorderOption {
	return func(r *Recorder) {
		r.onLevel = callback
	}
}

func NewRecorder(opts ...RecorderOption) *Recorder {
	recorder := &Recorder{command: defaultCaptureCommand()}
	for _, opt := range opts {
		opt(recorder)
	}

	return recorder
}

func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cmd != nil
}

// Start spawns the capture subprocess and begins buffering its output.
// Calling Start while a capture is active is a no-op.
func (r *Recorder) Start(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "start audio capture")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil {
		return nil
	}

	cmd := exec.Command(r.command[0], r.command[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSpawn, err)
	}
	if err := cmd.Start(); err != nil {
		recordedErr := fmt.Errorf("%w: %v", ErrSpawn, err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return recordedErr
	}

	r.cmd = cmd
	r.buffer = nil
	r.done = make(chan struct{})

	go r.consume(stdout, r.done)

	return nil
}

func (r *Recorder) consume(stdout io.Reader, done chan struct{}) {
	defer close(done)

	chunk := make([]byte, chunkSize)
	for {
		n, err := io.ReadFull(stdout, chunk)
		if n > 0 {
			received := make([]byte, n)
			copy(received, chunk[:n])

			r.mu.Lock()
			r.buffer = append(r.buffer, received)
			r.mu.Unlock()

			if r.onChunk != nil {
				r.onChunk(received)
			}
			if r.onLevel != nil {
				r.onLevel(audio.Level(received))
			}
		}
		if err != nil {
			return
		}
	}
}

// Stop terminates the subprocess and returns the concatenated recording.
// Calling Stop without an active capture returns an empty buffer.
func (r *Recorder) Stop() ([]byte, error) {
	r.mu.Lock()
	cmd := r.cmd
	done := r.done
	r.cmd = nil
	r.mu.Unlock()

	if cmd == nil {
		return nil, nil
	}

	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
	<-done
	_ = cmd.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()

	var size int
	for _, chunk := range r.buffer {
		size += len(chunk)
	}
	pcm := make([]byte, 0, size)
	for _, chunk := range r.buffer {
		pcm = append(pcm, chunk...)
	}
	r.buffer = nil

	return pcm, nil
}
