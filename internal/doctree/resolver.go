package doctree

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Resolver maps caller-supplied relative paths to files under a content root.
//
// Containment is checked lexically: the joined path is cleaned without
// touching the filesystem and must stay under the root. A symlink inside the
// root that points outside it is NOT caught. Callers that need that guarantee
// should additionally run filepath.EvalSymlinks on the result and re-check it
// against the real root, which changes behavior for setups relying on such links.
type Resolver struct {
	root string
}

// NewResolver creates a resolver for the given absolute content root.
func NewResolver(root string) *Resolver {
	return &Resolver{root: filepath.Clean(root)}
}

// Root returns the content root.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve percent-decodes requested, joins it onto the root and returns the
// cleaned absolute path. An empty request resolves to the root itself.
// Returns ErrMalformedPath or ErrPathEscape when the request is rejected.
func (r *Resolver) Resolve(requested string) (string, error) {
	decoded, err := url.PathUnescape(requested)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedPath, requested)
	}

	target := filepath.Join(r.root, decoded)
	if !r.contains(target) {
		return "", fmt.Errorf("%w: %q", ErrPathEscape, requested)
	}

	return target, nil
}

// ResolveFile resolves requested and verifies the target is an existing regular file.
// Targets that cannot be stat'ed and non-regular targets return ErrNotFound.
func (r *Resolver) ResolveFile(requested string) (string, fs.FileInfo, error) {
	target, err := r.Resolve(requested)
	if err != nil {
		return "", nil, err
	}

	// Any stat failure (missing, ENOTDIR, permission) reads as not found to the caller
	info, err := os.Stat(target)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %q: %v", ErrNotFound, requested, err)
	}
	if !info.Mode().IsRegular() {
		return "", nil, fmt.Errorf("%w: %q is not a regular file", ErrNotFound, requested)
	}

	return target, info, nil
}

// contains reports whether target is the root or lies below it.
// Matching whole path segments keeps a root "/srv/q" from admitting "/srv/q2".
func (r *Resolver) contains(target string) bool {
	if target == r.root {
		return true
	}
	prefix := r.root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(target, prefix)
}
