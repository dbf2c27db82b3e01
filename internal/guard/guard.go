// Package guard implements the per-request resource access policy.
//
// The rendering engine asks the guard before fetching any URL referenced
// from document content. Only two kinds of URL are ever allowed: data: URLs,
// which carry their payload inline and expose nothing, and local file URLs
// whose fully resolved path was ingested for the current request. Everything
// else, notably http(s), is denied. This is the sole sandbox between crafted
// document content and the host, so membership is checked on resolved
// absolute paths, never raw strings.
package guard

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
)

// ErrAccessDenied indicates the document referenced a resource outside its
// request's ingested file set.
var ErrAccessDenied = errors.New("access denied")

// Guard holds one request's valid path set. Construct a fresh Guard per
// request; it must never be cached or shared across requests.
type Guard struct {
	valid map[string]struct{}
}

// New builds a Guard from the request's ingested file paths. Each path is
// normalized to its resolved absolute form, so later membership checks are
// immune to symlink and ".." spelling games.
func New(paths ...string) (*Guard, error) {
	valid := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		resolved, err := resolvePath(p)
		if err != nil {
			return nil, fmt.Errorf("resolving ingested path %q: %w", p, err)
		}
		valid[resolved] = struct{}{}
	}
	return &Guard{valid: valid}, nil
}

// Allow reports whether the engine may fetch rawURL.
//
// data: URLs are always allowed; they decode in memory and touch nothing.
// Empty-scheme and file: URLs are allowed iff their resolved absolute path
// is in the valid set. Every other scheme is denied unconditionally.
func (g *Guard) Allow(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: unparseable url", ErrAccessDenied)
	}

	switch u.Scheme {
	case "data":
		return nil

	case "", "file":
		if u.Path == "" {
			return fmt.Errorf("%w: url has no path", ErrAccessDenied)
		}
		resolved, err := resolvePath(u.Path)
		if err != nil {
			// Nonexistent or unresolvable targets are denied, not errored.
			return fmt.Errorf("%w: %s", ErrAccessDenied, u.Path)
		}
		if _, ok := g.valid[resolved]; ok {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrAccessDenied, u.Path)

	default:
		return fmt.Errorf("%w: external resources are not allowed (%s)", ErrAccessDenied, u.Scheme)
	}
}

// resolvePath normalizes a path to its absolute, symlink-free form.
func resolvePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
