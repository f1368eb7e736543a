package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/mdxmend/internal/models"
	"github.com/starford/mdxmend/internal/testutil"
	"github.com/starford/mdxmend/internal/watcher"
)

type recorder struct {
	mu     sync.Mutex
	events []string
	counts map[string]int
}

func newRecorder() *recorder {
	return &recorder{counts: make(map[string]int)}
}

func (r *recorder) cb(kind, name string, findings []models.Finding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind+":"+name)
	if kind == watcher.KindChecked {
		r.counts[name] = len(findings)
	}
}

func (r *recorder) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

func (r *recorder) count(name string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.counts[name]
	return n, ok
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_ChecksChangedDocument(t *testing.T) {
	dir, svc := testutil.TestService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := newRecorder()
	go watcher.Watch(ctx, svc, watcher.Options{Debounce: 50 * time.Millisecond}, testutil.Logger(), rec.cb)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(dir, "new.mdx"), []byte("word[text](url)\n"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("word[text](url)\n"), 0o644)

	eventually(t, 5*time.Second, 25*time.Millisecond, func() bool {
		n, ok := rec.count("new.mdx")
		return ok && n == 1
	}, "new.mdx not checked with one finding")

	if rec.has("checked:ignored.txt") {
		t.Error("non-document was checked")
	}
	if got := testutil.ReadFile(t, dir, "new.mdx"); got != "word[text](url)\n" {
		t.Errorf("check-only watcher modified file: %q", got)
	}
}

func TestWatch_AutoFix(t *testing.T) {
	dir, svc := testutil.TestService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := newRecorder()
	opts := watcher.Options{Debounce: 50 * time.Millisecond, AutoFix: true}
	go watcher.Watch(ctx, svc, opts, testutil.Logger(), rec.cb)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(dir, "post.mdx"), []byte("see[a](b) <i> x</i>\n"), 0o644)

	eventually(t, 5*time.Second, 25*time.Millisecond, func() bool {
		return rec.has("fixed:post.mdx")
	}, "post.mdx not fixed")

	eventually(t, 5*time.Second, 25*time.Millisecond, func() bool {
		n, ok := rec.count("post.mdx")
		return ok && n == 0
	}, "post.mdx still has findings after auto-fix")

	if got := testutil.ReadFile(t, dir, "post.mdx"); got != "see [a](b) <i>x</i>\n" {
		t.Errorf("content = %q", got)
	}
}

func TestWatch_Removed(t *testing.T) {
	dir, svc := testutil.TestService(t, map[string]string{"gone.mdx": "x"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := newRecorder()
	go watcher.Watch(ctx, svc, watcher.Options{Debounce: 50 * time.Millisecond}, testutil.Logger(), rec.cb)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(dir, "gone.mdx"))

	eventually(t, 5*time.Second, 25*time.Millisecond, func() bool {
		return rec.has("removed:gone.mdx")
	}, "removal not reported")
}

func TestWatch_StopsOnCancel(t *testing.T) {
	_, svc := testutil.TestService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- watcher.Watch(ctx, svc, watcher.Options{}, testutil.Logger(), nil)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
