package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcher_RegeneratesOnChange(t *testing.T) {
	dir := t.TempDir()

	regenerated := make(chan string, 4)
	w, err := New([]string{dir}, "constgen_gen.go", 50*time.Millisecond,
		func(ctx context.Context, d string) error {
			regenerated <- d
			return nil
		}, nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	if !w.IsWatching() {
		t.Fatal("watcher should be running after Start")
	}

	if err := os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case got := <-regenerated:
		if got != dir {
			t.Errorf("regenerated %q, want %q", got, dir)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for regeneration")
	}

	stats := w.GetStats()
	if stats.Events == 0 || stats.Regenerations == 0 {
		t.Errorf("stats = %+v, want events and regenerations recorded", stats)
	}
}

func TestWatcher_IgnoresOwnOutput(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	calls := 0
	w, err := New([]string{dir}, "constgen_gen.go", 50*time.Millisecond,
		func(ctx context.Context, d string) error {
			mu.Lock()
			calls++
			mu.Unlock()
			return nil
		}, nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	// Writing the generated file and a non-Go file must not trigger.
	if err := os.WriteFile(filepath.Join(dir, "constgen_gen.go"), []byte("package a\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	time.Sleep(400 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Errorf("regenerated %d times for ignored files", calls)
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir}, "constgen_gen.go", 50*time.Millisecond,
		func(ctx context.Context, d string) error { return nil }, nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	w.Start(context.Background())
	w.Stop()
	w.Stop()

	if w.IsWatching() {
		t.Error("watcher still running after Stop")
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	_, err := New([]string{"/nonexistent/constgen"}, "constgen_gen.go", time.Millisecond,
		func(ctx context.Context, d string) error { return nil }, nil)
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
