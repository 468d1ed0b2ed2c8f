package truth

import (
	"path"
	"strings"
)

// Uri is a protocol-tagged reference to another document, optionally
// narrowed to a type path within that document (spec §3/§6).
//
// The statement parser only ever produces Uris with an empty TypePath: the
// bare source-text form `<proto>//<path>` reads until whitespace with no
// delimiter for a type-path suffix (spec §6 lists the store form, not the
// token form, as carrying one). A TypePath is attached programmatically via
// WithTypePath by callers that resolve a Uri to a specific type inside the
// target document; this is this implementation's resolution of spec §9's
// silence on how the source-text form encodes a type-path suffix.
type Uri struct {
	Protocol string
	Path     string
	TypePath []string
}

// ParseUriToken parses a bare source-text URI token (the form the scanner
// reads up to whitespace). It returns ok=false if tok does not begin with a
// registered protocol's "//" marker.
func ParseUriToken(tok string) (*Uri, bool) {
	idx := strings.Index(tok, "//")
	if idx < 0 {
		return nil, false
	}
	proto := tok[:idx]
	if !registeredProtocols[proto] {
		return nil, false
	}
	return &Uri{Protocol: proto, Path: tok[idx+2:]}, true
}

// ParseStoreForm parses the canonical "protocol://path[/typePath]" store
// form (spec §6).
func ParseStoreForm(s string) (*Uri, error) {
	idx := strings.Index(s, "://")
	if idx < 0 {
		return nil, &InvalidArgumentError{Func: "ParseStoreForm", Arg: "s", Value: s}
	}
	proto := s[:idx]
	rest := s[idx+3:]
	u := &Uri{Protocol: proto}
	parts := strings.Split(rest, "/")
	u.Path = parts[0]
	if len(parts) > 1 {
		u.TypePath = parts[1:]
	}
	return u, nil
}

// WithTypePath returns a copy of u narrowed to the given type path.
func (u *Uri) WithTypePath(typePath ...string) *Uri {
	cp := *u
	cp.TypePath = append([]string{}, typePath...)
	return &cp
}

// StoreString renders the canonical store form (spec §6).
func (u *Uri) StoreString() string {
	if u == nil {
		return ""
	}
	s := u.Protocol + "://" + u.Path
	if len(u.TypePath) > 0 {
		s += "/" + strings.Join(u.TypePath, "/")
	}
	return s
}

// Equal compares normalized protocol + path + type-path (spec §6).
func (u *Uri) Equal(o *Uri) bool {
	if u == nil || o == nil {
		return u == o
	}
	if u.Protocol != o.Protocol || u.Path != o.Path {
		return false
	}
	if len(u.TypePath) != len(o.TypePath) {
		return false
	}
	for i := range u.TypePath {
		if u.TypePath[i] != o.TypePath[i] {
			return false
		}
	}
	return true
}

// Resolve resolves u as relative to base when u's path does not begin with
// "/" and the protocols match; otherwise u is already absolute and is
// returned unchanged.
func (u *Uri) Resolve(base *Uri) *Uri {
	if base == nil || u.Protocol != base.Protocol || strings.HasPrefix(u.Path, "/") {
		return u
	}
	dir := path.Dir(base.Path)
	joined := path.Join(dir, u.Path)
	return &Uri{Protocol: u.Protocol, Path: joined, TypePath: u.TypePath}
}

// IsSilentInFaultRendering reports whether this Uri's protocol is omitted
// from canonical fault rendering (spec §6).
func (u *Uri) IsSilentInFaultRendering() bool {
	return u == nil || silentRenderProtocols[u.Protocol]
}
