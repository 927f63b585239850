package addressing

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
)

func TestPublishAndLookup(t *testing.T) {
	dir := t.TempDir()

	record, err := Publish("A", 49321, WithDirectory(dir))
	if err != nil {
		t.Fatalf("failed to publish record: %v", err)
	}

	port, ok := Lookup("A", WithDirectory(dir))
	if !ok {
		t.Fatal("expected record for identity A")
	}
	if port != 49321 {
		t.Fatalf("expected port 49321, got %d", port)
	}

	data, err := os.ReadFile(record.path)
	if err != nil {
		t.Fatalf("failed to read record file: %v", err)
	}
	if string(data) != "49321" {
		t.Fatalf("expected plain-text port in record file, got %q", string(data))
	}
}

func TestRemoveLeavesOtherSessionsAlone(t *testing.T) {
	dir := t.TempDir()

	recordA, err := Publish("A", PortFromIdentity("A"), WithDirectory(dir))
	if err != nil {
		t.Fatalf("failed to publish record for A: %v", err)
	}
	if _, err := Publish("B", PortFromIdentity("B"), WithDirectory(dir)); err != nil {
		t.Fatalf("failed to publish record for B: %v", err)
	}

	if err := recordA.Remove(); err != nil {
		t.Fatalf("failed to remove record for A: %v", err)
	}

	if _, ok := Lookup("A", WithDirectory(dir)); ok {
		t.Fatal("expected record for A to be gone")
	}
	if _, ok := Lookup("B", WithDirectory(dir)); !ok {
		t.Fatal("expected record for B to survive A's removal")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	record, err := Publish("A", 49321, WithDirectory(dir))
	if err != nil {
		t.Fatalf("failed to publish record: %v", err)
	}

	if err := record.Remove(); err != nil {
		t.Fatalf("first removal failed: %v", err)
	}
	if err := record.Remove(); err != nil {
		t.Fatalf("second removal should be a no-op, got: %v", err)
	}
}

func TestLookupRejectsCorruptRecord(t *testing.T) {
	dir := t.TempDir()

	if _, err := Publish("A", 49321, WithDirectory(dir)); err != nil {
		t.Fatalf("failed to publish record: %v", err)
	}
	if err := os.WriteFile(recordPath(dir, "A"), []byte("not a port"), 0o644); err != nil {
		t.Fatalf("failed to corrupt record: %v", err)
	}

	if _, ok := Lookup("A", WithDirectory(dir)); ok {
		t.Fatal("expected lookup to reject a corrupt record")
	}
}

func TestResolvePrefersLiveRecordedPort(t *testing.T) {
	dir := t.TempDir()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, portStr, err := net.SplitHostPort(server.Listener.Addr().String())
	if err != nil {
		t.Fatalf("failed to split server address: %v", err)
	}
	port, _ := strconv.Atoi(portStr)

	if _, err := Publish("A", port, WithDirectory(dir)); err != nil {
		t.Fatalf("failed to publish record: %v", err)
	}

	resolved, err := Resolve(context.Background(), "A", WithDirectory(dir))
	if err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}
	if resolved != port {
		t.Fatalf("expected resolved port %d, got %d", port, resolved)
	}
}

func TestResolveFindsRecordPublishedUnderOtherIdentity(t *testing.T) {
	dir := t.TempDir()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, portStr, err := net.SplitHostPort(server.Listener.Addr().String())
	if err != nil {
		t.Fatalf("failed to split server address: %v", err)
	}
	port, _ := strconv.Atoi(portStr)

	// The session published its record under a different identity than
	// the one the client resolves with (the terminal was renamed, say).
	// The directory scan still finds it.
	if _, err := Publish("B", port, WithDirectory(dir)); err != nil {
		t.Fatalf("failed to publish record: %v", err)
	}

	resolved, err := Resolve(context.Background(), "A", WithDirectory(dir))
	if err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}
	if resolved != port {
		t.Fatalf("expected scanned port %d, got %d", port, resolved)
	}
}

func TestScanRecordsSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()

	if _, err := Publish("A", 49321, WithDirectory(dir)); err != nil {
		t.Fatalf("failed to publish record: %v", err)
	}
	if err := os.WriteFile(recordPath(dir, "B"), []byte("not a port"), 0o644); err != nil {
		t.Fatalf("failed to write corrupt record: %v", err)
	}

	ports := ScanRecords(WithDirectory(dir))
	if len(ports) != 1 || ports[0] != 49321 {
		t.Fatalf("expected only the valid port 49321, got %v", ports)
	}
}

func TestResolveSkipsStaleRecord(t *testing.T) {
	dir := t.TempDir()

	// A record pointing at a port nothing listens on is stale. With no
	// live session anywhere, Resolve falls back to the derived port and
	// says so.
	if _, err := Publish("A", 1, WithDirectory(dir)); err != nil {
		t.Fatalf("failed to publish stale record: %v", err)
	}

	resolved, err := Resolve(context.Background(), "A", WithDirectory(dir))
	if err != ErrUnverified {
		t.Fatalf("expected ErrUnverified, got %v", err)
	}
	if resolved != PortFromIdentity("A") {
		t.Fatalf("expected derived port %d as best guess, got %d", PortFromIdentity("A"), resolved)
	}
}
