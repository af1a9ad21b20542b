package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/goliatone/go-mdaform/pkg/model"
	"github.com/goliatone/go-mdaform/pkg/schema"
)

const defaultDebounce = 100 * time.Millisecond

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets how long the watcher waits after the last change before
// reloading.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithReloadHook is called after every reload attempt with the new schema or
// the error that left the previous one in place.
func WithReloadHook(hook func(*model.Schema, error)) WatchOption {
	return func(w *Watcher) {
		w.hook = hook
	}
}

// Watcher reloads a schema file whenever it changes on disk.
type Watcher struct {
	orch     *Orchestrator
	path     string
	fs       *fsnotify.Watcher
	debounce time.Duration
	hook     func(*model.Schema, error)

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Watch starts watching the schema file at path. The parent directory is
// watched so editors that replace the file by rename are still seen. The
// watcher stops when ctx ends or Close is called.
func (o *Orchestrator) Watch(ctx context.Context, path string, options ...WatchOption) (*Watcher, error) {
	if err := o.check(ctx); err != nil {
		return nil, err
	}
	if path == "" {
		return nil, errors.New("orchestrator: watch path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: watch: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("orchestrator: watch: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("orchestrator: watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		orch:     o,
		path:     abs,
		fs:       fsw,
		debounce: defaultDebounce,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		if opt != nil {
			opt(w)
		}
	}
	o.logger.Info("watching schema", zap.String("path", abs))

	go w.run(ctx)
	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stop)
		<-w.done
		err = w.fs.Close()
	})
	return err
}

// Done is closed once the watcher goroutine has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.orch.logger.Warn("schema watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			w.reload(ctx)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) reload(ctx context.Context) {
	loaded, err := w.orch.Load(ctx, schema.SourceFromFile(w.path))
	if err != nil {
		w.orch.logger.Warn("schema reload failed, keeping previous schema",
			zap.String("path", w.path),
			zap.Error(err),
		)
	}
	if w.hook != nil {
		w.hook(loaded, err)
	}
}
