package session

import "time"

// Status is a point-in-time snapshot of the session. It is a value
// copy; mutating it has no effect on the controller.
type Status struct {
	Identity            string
	State               VoiceState
	CaptureActive       bool
	QueueLength         int
	TranscriptPending   bool
	InterruptionEnabled bool
	Ready               bool
	Uptime              time.Duration
}

// Status snapshots the session under one lock acquisition, so the
// reported fields are mutually consistent.
func (s *SessionController) Status() Status {
	s.mu.Lock()
	status := Status{
		Identity:            s.identity,
		State:               s.state,
		CaptureActive:       s.state == StateListening,
		QueueLength:         len(s.pending),
		InterruptionEnabled: s.interruptionEnabled,
		Ready:               s.ready,
		Uptime:              time.Since(s.startedAt),
	}
	s.mu.Unlock()

	status.TranscriptPending = s.mailbox.Has()
	return status
}
