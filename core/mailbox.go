package session

import "sync"

// transcriptMailbox holds at most the most recent transcript. A new
// recording clears any unread value, so readers that care must poll
// promptly after the gesture ends.
type transcriptMailbox struct {
	mu         sync.Mutex
	transcript string
	present    bool
}

// Put overwrites whatever the mailbox currently holds.
func (m *transcriptMailbox) Put(transcript string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transcript = transcript
	m.present = true
}

// Take returns the held transcript and clears the slot. An empty
// mailbox yields the empty string; Take never blocks and never fails.
func (m *transcriptMailbox) Take() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	transcript := m.transcript
	m.transcript = ""
	m.present = false
	return transcript
}

// Clear empties the slot without reading it.
func (m *transcriptMailbox) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transcript = ""
	m.present = false
}

// Has reports whether an unread transcript is waiting.
func (m *transcriptMailbox) Has() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.present
}
