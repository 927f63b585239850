package control

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/jinzhu/copier"
	session "github.com/voxline/vox-core/core"
)

// maxBodySize bounds command bodies. Speech texts and tty identities
// are small; anything larger is a protocol error.
const maxBodySize = 1 << 20

type statusResponse struct {
	Identity            string             `json:"identity"`
	State               session.VoiceState `json:"state"`
	CaptureActive       bool               `json:"capture_active"`
	QueueLength         int                `json:"queue_length"`
	TranscriptPending   bool               `json:"transcript_pending"`
	InterruptionEnabled bool               `json:"interruption_enabled"`
	Ready               bool               `json:"ready"`
	UptimeSeconds       float64            `json:"uptime_seconds"`
	CPUPercent          float64            `json:"cpu_percent"`
	MemoryRSSBytes      uint64             `json:"memory_rss_bytes"`
}

func (s *Server) handlePTTStart(w http.ResponseWriter, r *http.Request) {
	if err := s.session.BeginCapture(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeOK(w)
}

func (s *Server) handlePTTStop(w http.ResponseWriter, r *http.Request) {
	if err := s.session.EndCapture(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeOK(w)
}

func (s *Server) handlePTTToggle(w http.ResponseWriter, r *http.Request) {
	if err := s.session.ToggleCapture(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeOK(w)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.session.Status()

	response := statusResponse{
		State:         status.State,
		UptimeSeconds: status.Uptime.Seconds(),
	}
	if err := copier.Copy(&response, &status); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	response.CPUPercent, response.MemoryRSSBytes = processHealth()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed to encode status response", "error", err)
	}
}

func (s *Server) handleTranscription(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, s.session.ReadTranscript())
}

func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	text, ok := readBody(w, r)
	if !ok {
		return
	}
	s.session.Speak(text)
	writeOK(w)
}

func (s *Server) handleTTY(w http.ResponseWriter, r *http.Request) {
	identity, ok := readBody(w, r)
	if !ok {
		return
	}
	if s.presenter != nil {
		if err := s.presenter.BindTTY(strings.TrimSpace(identity)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	writeOK(w)
}

func (s *Server) handleCountdownStart(w http.ResponseWriter, r *http.Request) {
	preview, ok := readBody(w, r)
	if !ok {
		return
	}
	if s.presenter != nil {
		s.presenter.StartCountdown(preview)
	}
	writeOK(w)
}

func (s *Server) handleCountdownCancel(w http.ResponseWriter, r *http.Request) {
	if s.presenter != nil {
		s.presenter.CancelCountdown()
	}
	writeOK(w)
}

func (s *Server) handleCountdownSend(w http.ResponseWriter, r *http.Request) {
	if s.presenter != nil {
		s.presenter.CompleteCountdown()
	}
	writeOK(w)
}

func (s *Server) handleStateReady(w http.ResponseWriter, r *http.Request) {
	s.session.SetReady(true)
	if s.presenter != nil {
		s.presenter.ShowReady()
	}
	writeOK(w)
}

func readBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return "", false
	}
	return string(data), true
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok")
}
