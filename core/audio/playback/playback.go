// Package playback plays finished audio buffers. Compressed buffers are
// decoded by an external player subprocess fed over stdin; raw PCM goes
// straight to a local audio sink when one is configured.
package playback

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"

	"go.opentelemetry.io/otel/codes"

	"github.com/voxline/vox-core/core/audio"
)

// ErrSpawn wraps failures to start the player subprocess.
var ErrSpawn = errors.New("failed to spawn playback subprocess")

// ErrBusy is returned when a second playback is requested while one is
// already active.
var ErrBusy = errors.New("playback already active")

// Sink plays raw PCM without an external process.
type Sink interface {
	// Play blocks until the samples have been played, the context is
	// cancelled or Stop is called.
	Play(ctx context.Context, pcm []byte, encoding audio.EncodingInfo) error
	Stop() error
}

// Player routes buffers to the player subprocess or the raw PCM sink based on
// their encoding. Only one playback may be active at a time.
type Player struct {
	mu sync.Mutex

	playerCommand []string
	rawCommand    []string
	sink          Sink

	active *activePlayback
}

type activePlayback struct {
	stopped bool
	stop    func()
}

type PlayerOption func(*Player)

// WithPlayerCommand overrides the external player used for compressed
// buffers. The subprocess must read the audio stream from stdin and exit when
// it ends.
func WithPlayerCommand(name string, args ...string) PlayerOption {
	return func(p *Player) {
		p.playerCommand = append([]string{name}, args...)
	}
}

// WithRawCommand overrides the fallback subprocess used for raw PCM when no
// sink is configured.
func WithRawCommand(name string, args ...string) PlayerOption {
	return func(p *Player) {
		p.rawCommand = append([]string{name}, args...)
	}
}

// WithSink routes raw PCM buffers to an in-process audio sink.
func WithSink(sink Sink) PlayerOption {
	return func(p *Player) {
		p.sink = sink
	}
}

func NewPlayer(opts ...PlayerOption) *Player {
	player := &Player{
		playerCommand: defaultPlayerCommand(),
		rawCommand:    defaultRawCommand(),
	}
	for _, opt := range opts {
		opt(player)
	}

	return player
}

func (p *Player) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.active != nil
}

// Play blocks until the buffer has finished playing or Stop is called.
func (p *Player) Play(ctx context.Context, data []byte, encoding audio.EncodingInfo) error {
	ctx, span := tracer.Start(ctx, "play audio buffer")
	defer span.End()

	if encoding.IsZero() {
		encoding = audio.GetDefaultEncodingInfo()
	}

	var err error
	switch {
	case encoding.Format.IsCompressed():
		err = p.playThroughSubprocess(ctx, data, p.playerCommand)
	case p.sink != nil:
		err = p.playThroughSink(ctx, padToWholeFrames(data, encoding), encoding)
	default:
		err = p.playThroughSubprocess(ctx, padToWholeFrames(data, encoding), p.rawCommand)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// padToWholeFrames extends a raw buffer that was cut mid-sample (an
// interrupted synthesis stream, typically) to a whole number of frames,
// so the tail plays as silence instead of a stray sample.
func padToWholeFrames(data []byte, encoding audio.EncodingInfo) []byte {
	size := encoding.Format.ByteSize()
	if size <= 0 || len(data)%size == 0 {
		return data
	}

	padded := make([]byte, len(data)+size-len(data)%size)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = encoding.SilenceValue()
	}
	return padded
}

func (p *Player) playThroughSink(ctx context.Context, data []byte, encoding audio.EncodingInfo) error {
	playCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sink := p.sink
	playback := &activePlayback{stop: func() {
		cancel()
		_ = sink.Stop()
	}}

	if err := p.setActive(playback); err != nil {
		return err
	}
	defer p.clearActive()

	if err := sink.Play(playCtx, data, encoding); err != nil && !p.wasStopped(playback) {
		return fmt.Errorf("sink playback failed: %w", err)
	}
	return nil
}

func (p *Player) playThroughSubprocess(_ context.Context, data []byte, command []string) error {
	cmd := exec.Command(command[0], command[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSpawn, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	playback := &activePlayback{stop: func() {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
	}}

	if err := p.setActive(playback); err != nil {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		_ = cmd.Wait()
		return err
	}
	defer p.clearActive()

	// A stopped player closes its end of the pipe, so write errors while
	// stopping are expected.
	if _, err := stdin.Write(data); err != nil && !p.wasStopped(playback) {
		_ = stdin.Close()
		_ = cmd.Wait()
		return fmt.Errorf("failed to stream buffer to player: %w", err)
	}
	_ = stdin.Close()

	if err := cmd.Wait(); err != nil && !p.wasStopped(playback) {
		return fmt.Errorf("player subprocess failed: %w", err)
	}
	return nil
}

func (p *Player) wasStopped(playback *activePlayback) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return playback.stopped
}

// Stop terminates the active playback immediately. Pending Play calls resolve
// promptly and without error.
func (p *Player) Stop() {
	p.mu.Lock()
	playback := p.active
	if playback != nil {
		playback.stopped = true
	}
	p.mu.Unlock()

	if playback != nil {
		playback.stop()
	}
}

func (p *Player) setActive(playback *activePlayback) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active != nil {
		return ErrBusy
	}
	p.active = playback
	return nil
}

func (p *Player) clearActive() {
	p.mu.Lock()
	p.active = nil
	p.mu.Unlock()
}
