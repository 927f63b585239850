package session

import "testing"

func TestMailboxTakeWhenEmpty(t *testing.T) {
	var mailbox transcriptMailbox

	if transcript := mailbox.Take(); transcript != "" {
		t.Fatalf("expected empty string from empty mailbox, got %q", transcript)
	}
	if mailbox.Has() {
		t.Fatal("expected empty mailbox")
	}
}

func TestMailboxOverwrites(t *testing.T) {
	var mailbox transcriptMailbox

	mailbox.Put("first")
	mailbox.Put("second")

	if transcript := mailbox.Take(); transcript != "second" {
		t.Fatalf("expected latest transcript, got %q", transcript)
	}
	if transcript := mailbox.Take(); transcript != "" {
		t.Fatalf("expected mailbox to be cleared by the read, got %q", transcript)
	}
}

func TestMailboxClear(t *testing.T) {
	var mailbox transcriptMailbox

	mailbox.Put("anything")
	mailbox.Clear()

	if mailbox.Has() {
		t.Fatal("expected cleared mailbox")
	}
	if transcript := mailbox.Take(); transcript != "" {
		t.Fatalf("expected empty string after clear, got %q", transcript)
	}
}
