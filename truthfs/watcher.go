package truthfs

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/truthlang/truth/truth"
)

// Watcher drives live reload for file-backed documents (spec §4.10, §5 NEW).
// Its fsnotify loop runs on its own goroutine and only ever reaches across
// to the Program by posting a path onto its internal reload channel; Run, which actually calls
// Document.EditAtomic, is meant to be driven from whichever goroutine owns
// the Program, so a watched document is never touched from two goroutines
// at once.
type Watcher struct {
	loader  *Loader
	program *truth.Program
	fw      *fsnotify.Watcher

	mu      sync.Mutex
	watched map[string]*truth.Document // absolute path -> document

	reload chan string
	done   chan struct{}
}

// DebounceWindow is how long Watcher waits after the last write to a path
// before queuing a reload, following the ticker-debounce shape of
// nebula.Watcher.
const DebounceWindow = 150 * time.Millisecond

// NewWatcher constructs a Watcher that reloads through loader into program.
func NewWatcher(program *truth.Program, loader *Loader) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		loader:  loader,
		program: program,
		fw:      fw,
		watched: map[string]*truth.Document{},
		reload:  make(chan string, 64),
		done:    make(chan struct{}),
	}, nil
}

// Watch starts watching doc's backing file for writes. doc must have a
// file:// URI already assigned. Call from the Program-owning goroutine.
func (w *Watcher) Watch(doc *truth.Document) error {
	u := doc.URI()
	path, err := w.loader.PathFor(u)
	if err != nil {
		return err
	}
	if err := w.fw.Add(path); err != nil {
		return err
	}
	w.mu.Lock()
	w.watched[path] = doc
	w.mu.Unlock()
	return nil
}

// Unwatch stops watching doc's backing file.
func (w *Watcher) Unwatch(doc *truth.Document) error {
	u := doc.URI()
	path, err := w.loader.PathFor(u)
	if err != nil {
		return err
	}
	w.mu.Lock()
	delete(w.watched, path)
	w.mu.Unlock()
	return w.fw.Remove(path)
}

// Start launches the fsnotify event loop in a background goroutine. It
// debounces bursts of writes to the same path and pushes the settled path
// onto the internal reload channel, read by Run.
func (w *Watcher) Start(ctx context.Context) {
	go w.loop(ctx)
}

func (w *Watcher) loop(ctx context.Context) {
	pending := map[string]time.Time{}
	ticker := time.NewTicker(DebounceWindow)
	defer ticker.Stop()
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) {
				continue
			}
			pending[ev.Name] = time.Now()
		case <-ticker.C:
			now := time.Now()
			for path, t := range pending {
				if now.Sub(t) < DebounceWindow {
					continue
				}
				delete(pending, path)
				select {
				case w.reload <- path:
				case <-ctx.Done():
					return
				}
			}
		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
		}
	}
}

// Run drains queued reloads and applies them, one at a time, to the
// documents Watch registered. It blocks until ctx is done; callers run it
// on the goroutine that owns program.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path := <-w.reload:
			if err := w.applyReload(ctx, path); err != nil {
				return err
			}
		}
	}
}

func (w *Watcher) applyReload(ctx context.Context, path string) error {
	w.mu.Lock()
	doc, ok := w.watched[path]
	w.mu.Unlock()
	if !ok {
		return nil
	}
	text, err := w.loader.Load(ctx, doc.URI())
	if err != nil {
		return err
	}
	return doc.EditAtomic(ctx, text)
}

// Close stops the fsnotify watcher and waits for the event loop to exit.
func (w *Watcher) Close() error {
	err := w.fw.Close()
	<-w.done
	return err
}
