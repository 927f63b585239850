package capture

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"
)

func requirePOSIXShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub capture commands require a POSIX shell")
	}
}

func TestStopWhileIdleReturnsEmptyBuffer(t *testing.T) {
	recorder := NewRecorder()

	pcm, err := recorder.Stop()
	if err != nil {
		t.Fatalf("expected idle stop to succeed, got %v", err)
	}
	if len(pcm) != 0 {
		t.Fatalf("expected empty buffer, got %d bytes", len(pcm))
	}
}

func TestStartSpawnFailureReportsErrSpawn(t *testing.T) {
	recorder := NewRecorder(WithCommand("/nonexistent/capture-binary"))

	err := recorder.Start(context.Background())
	if !errors.Is(err, ErrSpawn) {
		t.Fatalf("expected ErrSpawn, got %v", err)
	}
	if recorder.Active() {
		t.Fatalf("expected recorder to stay inactive after spawn failure")
	}
}

func TestCaptureBuffersStreamedPCM(t *testing.T) {
	requirePOSIXShell(t)

	chunks := make(chan []byte, 64)
	recorder := NewRecorder(
		WithCommand("sh", "-c", "dd if=/dev/zero bs=3200 count=5 2>/dev/null; sleep 10"),
		WithChunkCallback(func(chunk []byte) { chunks <- chunk }),
	)

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	if !recorder.Active() {
		t.Fatalf("expected recorder to be active")
	}

	for range 5 {
		select {
		case <-chunks:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for capture chunks")
		}
	}

	pcm, err := recorder.Stop()
	if err != nil {
		t.Fatalf("expected stop to succeed, got %v", err)
	}
	if len(pcm) != 5*3200 {
		t.Fatalf("expected 16000 bytes of buffered PCM, got %d", len(pcm))
	}
	if recorder.Active() {
		t.Fatalf("expected recorder to be inactive after stop")
	}
}

func TestStartWhileActiveIsNoOp(t *testing.T) {
	requirePOSIXShell(t)

	recorder := NewRecorder(WithCommand("sh", "-c", "sleep 10"))
	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	defer recorder.Stop()

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("expected repeated start to be a no-op, got %v", err)
	}
}

func TestLevelCallbackReceivesNormalizedLevels(t *testing.T) {
	requirePOSIXShell(t)

	levels := make(chan float64, 64)
	recorder := NewRecorder(
		WithCommand("sh", "-c", "dd if=/dev/zero bs=3200 count=1 2>/dev/null; sleep 10"),
		WithLevelCallback(func(level float64) { levels <- level }),
	)

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	defer recorder.Stop()

	select {
	case level := <-levels:
		if level != 0 {
			t.Fatalf("expected zero level for silence, got %f", level)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for level sample")
	}
}
