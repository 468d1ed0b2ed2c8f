package truthfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truthlang/truth/truth"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.truth")
	require.NoError(t, os.WriteFile(path, []byte("A : B"), 0o644))

	loader, err := NewLoader(dir)
	require.NoError(t, err)
	program := truth.NewProgram(truth.WithUriReader(loader))
	doc, err := program.AddDocumentFromURI(context.Background(), &truth.Uri{Protocol: "file", Path: "a.truth"}, loader)
	require.NoError(t, err)

	w, err := NewWatcher(program, loader)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch(doc))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(path, []byte("A : C"), 0o644))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && doc.Version() == 0 {
		time.Sleep(20 * time.Millisecond)
	}
	require.NotZero(t, doc.Version(), "expected the document to have reloaded at least once")

	var texts []string
	for _, st := range doc.Statements() {
		texts = append(texts, st.SourceText)
	}
	assert.Contains(t, texts, "A : C")
}

func TestWatcherUnwatchStopsReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.truth")
	require.NoError(t, os.WriteFile(path, []byte("A : B"), 0o644))

	loader, err := NewLoader(dir)
	require.NoError(t, err)
	program := truth.NewProgram(truth.WithUriReader(loader))
	doc, err := program.AddDocumentFromURI(context.Background(), &truth.Uri{Protocol: "file", Path: "a.truth"}, loader)
	require.NoError(t, err)

	w, err := NewWatcher(program, loader)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch(doc))
	require.NoError(t, w.Unwatch(doc))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(path, []byte("A : C"), 0o644))
	time.Sleep(DebounceWindow + 200*time.Millisecond)

	assert.Zero(t, doc.Version(), "an unwatched document must not be reloaded")
}
