// Package texttospeech defines the synthesizer capability implemented by
// interchangeable text-to-speech backends.
package texttospeech

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when a synthesizer is not configured or its
// credentials are missing. Unlike transient call failures, callers should not
// retry it.
var ErrUnavailable = errors.New("synthesizer unavailable")

// Speaker turns text into played audio.
type Speaker interface {
	// Speak blocks until the synthesized audio has finished playing or Stop
	// is called. A stopped utterance resolves without error.
	Speak(ctx context.Context, text string) error
	// Stop interrupts the in-flight utterance immediately.
	Stop() error
	// IsAvailable reports whether the synthesizer can currently serve calls.
	IsAvailable() bool
	// Close releases any resources held by the synthesizer.
	Close(ctx context.Context) error
}
