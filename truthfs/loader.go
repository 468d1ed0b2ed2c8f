// Package truthfs implements truth.UriReader and a live-reload Watcher
// backed by the local filesystem (spec §4.10, NEW).
package truthfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/truthlang/truth/truth"
)

// Loader reads file:// URIs rooted at a configured directory; ".." segments
// in a path are clamped at that directory rather than escaping it. Grounded
// on glyph's bridge.go adapter between an external representation and the
// in-process value model.
type Loader struct {
	root string
}

// NewLoader constructs a Loader rooted at root. root is resolved to an
// absolute, cleaned path once so every subsequent Load compares against a
// stable base.
func NewLoader(root string) (*Loader, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &Loader{root: filepath.Clean(abs)}, nil
}

// Load implements truth.UriReader. Only the "file" protocol is supported;
// any other protocol is a programmer error by the caller wiring readers.
func (l *Loader) Load(ctx context.Context, u *truth.Uri) (string, error) {
	if u.Protocol != "file" {
		return "", fmt.Errorf("truthfs: unsupported protocol %q", u.Protocol)
	}
	full, err := l.resolve(u.Path)
	if err != nil {
		return "", err
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	b, err := os.ReadFile(full)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// resolve roots and cleans p before joining it onto the loader's root, so a
// ".." segment stops at the root instead of leaving it. Symlinks are not
// resolved, so a symlink under the root that points outside it is not
// rejected.
func (l *Loader) resolve(p string) (string, error) {
	joined := filepath.Join(l.root, filepath.Clean("/"+p))
	if !strings.HasPrefix(joined, l.root+string(filepath.Separator)) && joined != l.root {
		return "", fmt.Errorf("truthfs: path %q escapes root %q", p, l.root)
	}
	return joined, nil
}

// PathFor returns the absolute filesystem path a file:// Uri with this
// loader's root would read from, without reading it. The Watcher uses this
// to know what to hand fsnotify.
func (l *Loader) PathFor(u *truth.Uri) (string, error) {
	if u.Protocol != "file" {
		return "", fmt.Errorf("truthfs: unsupported protocol %q", u.Protocol)
	}
	return l.resolve(u.Path)
}
