// Package deepgram synthesizes speech through Deepgram's streaming speak
// endpoint and plays the finished utterance through the session's player.
package deepgram

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/voxline/vox-core/core/audio"
	"github.com/voxline/vox-core/core/audio/playback"
	"github.com/voxline/vox-core/core/texttospeech"
)

const defaultVoice = "aura-2-thalia-en"

type Speaker struct {
	apiKey  string
	voice   string
	host    string
	player  *playback.Player
	options texttospeech.SpeakerOptions

	mu      sync.Mutex
	conn    *websocket.Conn
	stopped bool
}

// NewSpeaker builds a speaker that plays utterances through player.
func NewSpeaker(player *playback.Player, opts ...texttospeech.SpeakerOption) *Speaker {
	options := texttospeech.SpeakerOptions{
		Voice:        defaultVoice,
		EncodingInfo: audio.GetDefaultEncodingInfo(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Speaker{
		apiKey:  os.Getenv("DEEPGRAM_API_KEY"),
		voice:   options.Voice,
		host:    "api.deepgram.com",
		player:  player,
		options: options,
	}
}

func (s *Speaker) IsAvailable() bool {
	return s.apiKey != ""
}

func (s *Speaker) Close(context.Context) error {
	return s.Stop()
}

// Stop interrupts the in-flight utterance: the websocket is torn down and the
// player is stopped. The pending Speak resolves without error.
func (s *Speaker) Stop() error {
	s.mu.Lock()
	s.stopped = true
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		_ = conn.WriteJSON(clearMsg)
		_ = conn.Close()
	}
	s.player.Stop()

	return nil
}

// resetStop rearms the speaker for a new utterance. A stop flag left
// over from an interrupt that landed between utterances is stale.
func (s *Speaker) resetStop() {
	s.mu.Lock()
	s.stopped = false
	s.mu.Unlock()
}

func (s *Speaker) setConn(conn *websocket.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return fmt.Errorf("speaker stopped")
	}
	s.conn = conn
	return nil
}

func (s *Speaker) clearConn() (wasStopped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conn = nil
	wasStopped = s.stopped
	s.stopped = false
	return wasStopped
}
