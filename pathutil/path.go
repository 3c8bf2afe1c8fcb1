// Package pathutil implements the path grammar of spec §6:
// `[scheme:][//authority]path` with `//` collapsed in the path portion, and
// CreateTempPath's `.<name>.<uuid>.tmp` sibling-file convention. Adapted
// from the teacher's uri/uri.go scheme-detection pattern, with the
// IPFS/Filecoin/CID-specific methods dropped (spec Non-goals: this module
// never resolves content-addressed storage).
package pathutil

import (
	"strings"

	"github.com/google/uuid"
)

// Path is a parsed `[scheme:][//authority]path` location string, stored in
// its original (unparsed) form and re-split lazily by its accessors, the
// way the teacher's URI type stores the raw string rather than a struct of
// parts.
type Path string

func New(p string) Path { return Path(p) }

func (p Path) String() string { return string(p) }

func (p Path) IsZero() bool { return p == "" }

// Scheme returns the `scheme:` prefix, without the colon, or "" if p has
// none. A scheme is only recognized when it precedes "://" or ":/", since a
// bare "C:\..." Windows drive letter must not be mistaken for one.
func (p Path) Scheme() string {
	s := string(p)
	i := strings.Index(s, ":/")
	if i < 0 {
		return ""
	}
	return s[:i]
}

// Authority returns the `//authority` component (without the leading "//"),
// or "" if p has no scheme or no authority.
func (p Path) Authority() string {
	rest := p.withoutScheme()
	if !strings.HasPrefix(rest, "//") {
		return ""
	}
	rest = rest[2:]
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[:i]
	}
	return rest
}

// CleanPath returns the path portion after scheme and authority, with
// repeated "//" collapsed to a single "/" (spec §6).
func (p Path) CleanPath() string {
	rest := p.withoutScheme()
	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[i:]
		} else {
			rest = ""
		}
	}
	return collapseSlashes(rest)
}

func (p Path) withoutScheme() string {
	s := string(p)
	if scheme := p.Scheme(); scheme != "" {
		return s[len(scheme)+1:]
	}
	return s
}

func collapseSlashes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSlash := false
	for _, r := range s {
		if r == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsLocal reports whether p is a local filesystem path: "file://" scheme,
// or an absolute/relative path with no scheme at all.
func (p Path) IsLocal() bool {
	if p.Scheme() == "file" {
		return true
	}
	return p.Scheme() == ""
}

// IsWeb reports whether p is an http(s):// URI.
func (p Path) IsWeb() bool {
	scheme := p.Scheme()
	return scheme == "http" || scheme == "https"
}

// Name returns the final path segment, mirroring filepath.Base semantics
// but operating on CleanPath so a scheme/authority prefix never leaks in.
func (p Path) Name() string {
	clean := p.CleanPath()
	clean = strings.TrimRight(clean, "/")
	if clean == "" {
		return "/"
	}
	if i := strings.LastIndexByte(clean, '/'); i >= 0 {
		return clean[i+1:]
	}
	return clean
}

// Parent returns p with its final path segment removed, keeping any
// scheme/authority prefix intact.
func (p Path) Parent() Path {
	s := string(p)
	name := p.Name()
	trimmed := strings.TrimSuffix(strings.TrimRight(s, "/"), name)
	trimmed = strings.TrimRight(trimmed, "/")
	if trimmed == "" {
		return Path("/")
	}
	return Path(trimmed)
}

// Join appends segment to p's path, inserting exactly one "/" separator.
func (p Path) Join(segment string) Path {
	s := string(p)
	if s == "" {
		return Path(segment)
	}
	if strings.HasSuffix(s, "/") {
		return Path(s + segment)
	}
	return Path(s + "/" + segment)
}

// CreateTempPath builds the sibling temp-file path for p: the same parent
// directory, with name `.<name>.<uuid>.tmp` where <uuid> is a fresh random
// (v4) UUID (spec §6).
func CreateTempPath(p Path) Path {
	return p.Parent().Join("." + p.Name() + "." + uuid.NewString() + ".tmp")
}
