package truthfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truthlang/truth/truth"
)

func TestLoaderLoadReadsFileUnderRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.truth"), []byte("A : B"), 0o644))

	l, err := NewLoader(dir)
	require.NoError(t, err)

	text, err := l.Load(context.Background(), &truth.Uri{Protocol: "file", Path: "a.truth"})
	require.NoError(t, err)
	assert.Equal(t, "A : B", text)
}

func TestLoaderLoadClampsDotDotToRoot(t *testing.T) {
	// "../secret.truth" is rooted and cleaned before joining, so it resolves
	// to sub/secret.truth rather than escaping to the parent directory's
	// own secret.truth.
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.truth"), []byte("S : T"), 0o644))

	l, err := NewLoader(sub)
	require.NoError(t, err)

	_, err = l.Load(context.Background(), &truth.Uri{Protocol: "file", Path: "../secret.truth"})
	assert.Error(t, err, "the parent directory's secret.truth must not be reachable")
}

func TestLoaderLoadRejectsNonFileProtocol(t *testing.T) {
	l, err := NewLoader(t.TempDir())
	require.NoError(t, err)

	_, err = l.Load(context.Background(), &truth.Uri{Protocol: "https", Path: "a"})
	assert.Error(t, err)
}

func TestLoaderPathForJoinsRoot(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLoader(dir)
	require.NoError(t, err)

	got, err := l.PathFor(&truth.Uri{Protocol: "file", Path: "nested/a.truth"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nested", "a.truth"), got)
}

func TestLoaderPathForClampsDotDotToRoot(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLoader(dir)
	require.NoError(t, err)

	got, err := l.PathFor(&truth.Uri{Protocol: "file", Path: "../outside"})
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(got))
}
