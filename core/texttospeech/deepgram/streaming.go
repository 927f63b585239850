package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/codes"

	"github.com/voxline/vox-core/core/audio"
	"github.com/voxline/vox-core/core/texttospeech"
)

// Speak synthesizes one utterance and blocks until it has finished playing.
// A Stop call while synthesis or playback is in flight resolves Speak without
// error.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	ctx, span := tracer.Start(ctx, "deepgram speak")
	defer span.End()

	if !s.IsAvailable() {
		return fmt.Errorf("deepgram api key not found: %w", texttospeech.ErrUnavailable)
	}

	// A Stop aimed at an earlier utterance must not suppress this one.
	s.resetStop()

	conn, err := s.connectWebsocket()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to open websocket: %w", err)
	}
	if err := s.setConn(conn); err != nil {
		_ = conn.Close()
		return nil
	}

	if err := conn.WriteJSON(sendTextMsg(text)); err != nil {
		s.teardown(conn)
		return fmt.Errorf("failed to send text to deepgram: %w", err)
	}
	if err := conn.WriteJSON(flushMsg); err != nil {
		s.teardown(conn)
		return fmt.Errorf("failed to flush deepgram buffer: %w", err)
	}

	utterance, err := s.collectAudio(conn)
	if wasStopped := s.clearConn(); wasStopped {
		return nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to receive synthesized audio: %w", err)
	}

	if s.options.SpeechStartedCallback != nil {
		s.options.SpeechStartedCallback(text)
	}
	playErr := s.player.Play(ctx, utterance, s.options.EncodingInfo)
	if s.options.SpeechEndedCallback != nil {
		s.options.SpeechEndedCallback(text)
	}
	if playErr != nil {
		span.RecordError(playErr)
		span.SetStatus(codes.Error, playErr.Error())
		return fmt.Errorf("failed to play synthesized audio: %w", playErr)
	}

	return nil
}

func (s *Speaker) connectWebsocket() (*websocket.Conn, error) {
	urlValues := url.Values{}
	urlValues.Set("model", s.voice)
	if s.options.EncodingInfo.Format.IsCompressed() {
		urlValues.Set("encoding", "mp3")
	} else {
		urlValues.Set("encoding", s.options.EncodingInfo.Format.Name())
		urlValues.Set("sample_rate", strconv.Itoa(s.options.EncodingInfo.SampleRate))
		urlValues.Set("container", "none")
	}

	conn, _, err := websocket.DefaultDialer.Dial(
		(&url.URL{
			Scheme: "wss",
			Host:   s.host, Path: "/v1/speak",
			RawQuery: urlValues.Encode(),
		}).String(),
		http.Header{"Authorization": {"token " + s.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

// collectAudio reads the stream until the flush confirmation arrives, then
// returns the concatenated utterance.
func (s *Speaker) collectAudio(conn *websocket.Conn) ([]byte, error) {
	var utterance []byte
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			return nil, err
		}

		switch msgType {
		case websocket.BinaryMessage:
			utterance = append(utterance, msg...)
		case websocket.TextMessage:
			var parsedMsg struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(msg, &parsedMsg); err != nil {
				logger.Warn("failed to unmarshal deepgram message", "error", err)
				continue
			}

			if parsedMsg.Type == "Flushed" {
				_ = conn.WriteJSON(closeMsg)
				_ = conn.Close()
				return utterance, nil
			}
		}
	}
}

func (s *Speaker) teardown(conn *websocket.Conn) {
	_ = conn.Close()
	s.clearConn()
}

// EncodingInfo reports the encoding utterances are synthesized in.
func (s *Speaker) EncodingInfo() audio.EncodingInfo {
	return s.options.EncodingInfo
}

type websocketMessage struct {
	Type string `json:"type"`
}

var (
	sendTextMsg = func(text string) struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} {
		return struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{Type: "Speak", Text: text}
	}
	flushMsg = websocketMessage{Type: "Flush"}
	clearMsg = websocketMessage{Type: "Clear"}
	closeMsg = websocketMessage{Type: "Close"}
)
