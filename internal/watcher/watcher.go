// Package watcher re-checks documents as they change on disk.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/mdxmend/internal/models"
)

// Event kinds passed to Callback.
const (
	KindChecked = "checked"
	KindFixed   = "fixed"
	KindRemoved = "removed"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// Handler is the part of the service the watcher drives.
type Handler interface {
	Dir() string
	IsDocument(name string) bool
	CheckDocument(ctx context.Context, name string) ([]models.Finding, error)
	RepairDocument(ctx context.Context, name string) (models.Outcome, error)
}

// Callback is called after each processed change. findings is nil for
// KindFixed and KindRemoved.
type Callback func(kind, name string, findings []models.Finding)

// Options configures Watch.
type Options struct {
	Debounce time.Duration
	AutoFix  bool
}

// Watch starts an fsnotify watcher on the handler's directory and processes
// document changes until ctx is cancelled. Changes are batched: once the
// directory has been quiet for the debounce period every touched document
// is repaired (with AutoFix) and re-checked, in name order.
func Watch(ctx context.Context, h Handler, opts Options, logger *slog.Logger, cb Callback) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	root := h.Dir()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", root), slog.Bool("auto_fix", opts.AutoFix))

	pending := make(map[string]struct{})
	var flushTimer *time.Timer
	var flushCh <-chan time.Time

	schedule := func() {
		if flushTimer == nil {
			flushTimer = time.NewTimer(opts.Debounce)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(opts.Debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-flushCh:
			flush(ctx, h, opts, pending, logger, cb)
			pending = make(map[string]struct{})

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Dir(ev.Name) != root {
				continue
			}
			name := filepath.Base(ev.Name)
			if !h.IsDocument(name) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[name] = struct{}{}
				schedule()

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(pending, name)
				logger.Debug("watcher: removed", slog.String("document", name))
				if cb != nil {
					cb(KindRemoved, name, nil)
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func flush(ctx context.Context, h Handler, opts Options, pending map[string]struct{}, logger *slog.Logger, cb Callback) {
	names := make([]string, 0, len(pending))
	for n := range pending {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		if opts.AutoFix {
			o, err := h.RepairDocument(ctx, name)
			if err != nil {
				logger.Warn("watcher: repair failed", slog.String("document", name), slog.String("error", err.Error()))
				continue
			}
			if o.Changed() {
				logger.Debug("watcher: fixed", slog.String("document", name))
				if cb != nil {
					cb(KindFixed, name, nil)
				}
			}
		}

		findings, err := h.CheckDocument(ctx, name)
		if err != nil {
			logger.Warn("watcher: check failed", slog.String("document", name), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("watcher: checked", slog.String("document", name), slog.Int("findings", len(findings)))
		if cb != nil {
			cb(KindChecked, name, findings)
		}
	}
}
