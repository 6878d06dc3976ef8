package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestWatcherRequiresCallback(t *testing.T) {
	if _, err := New(t.TempDir(), nil, zerolog.Nop()); err == nil {
		t.Fatal("expected error for nil callback")
	}
}

func TestWatcherMissingDir(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "nope"), func() {}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err == nil {
		w.Stop()
		t.Fatal("expected error watching a missing directory")
	}
}

func TestWatcherFiresAfterBurst(t *testing.T) {
	dir := t.TempDir()

	var fired atomic.Int32
	w, err := New(dir, func() { fired.Add(1) }, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	w.SetDebounce(50 * time.Millisecond)

	if err := w.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer w.Stop()

	// A burst of receipt writes should collapse into one callback.
	for i := 0; i < 3; i++ {
		name := filepath.Join(dir, "com.example.receipt"+string(rune('a'+i)))
		if err := os.WriteFile(name, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	deadline := time.After(3 * time.Second)
	for fired.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("callback never fired")
		case <-time.After(20 * time.Millisecond):
		}
	}

	// Allow the settle window to pass fully and confirm the burst did not
	// fan out into one callback per event.
	time.Sleep(150 * time.Millisecond)
	if n := fired.Load(); n != 1 {
		t.Errorf("callback fired %d times, want 1", n)
	}
}

func TestWatcherStopIsIdempotentWithPendingTimer(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir, func() {}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	w.SetDebounce(time.Hour) // pending timer at stop time

	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "receipt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error: %v", err)
	}
}
