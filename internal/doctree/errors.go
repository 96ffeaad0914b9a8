package doctree

import (
	"errors"
	"fmt"
)

var (
	// ErrPathEscape indicates a requested path that normalizes outside the content root
	ErrPathEscape = errors.New("path escapes content root")

	// ErrMalformedPath indicates a requested path with invalid percent-encoding
	ErrMalformedPath = errors.New("malformed path encoding")

	// ErrNotFound indicates a resolved path that does not exist or is not a regular file
	ErrNotFound = errors.New("document not found")
)

// DirectoryReadError reports a directory that could not be listed while indexing.
type DirectoryReadError struct {
	Path string
	Err  error
}

func (e *DirectoryReadError) Error() string {
	return fmt.Sprintf("failed to read directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryReadError) Unwrap() error {
	return e.Err
}

// IsRejected reports whether err is a path rejection (escape or malformed encoding),
// as opposed to a missing file or an I/O failure.
func IsRejected(err error) bool {
	return errors.Is(err, ErrPathEscape) || errors.Is(err, ErrMalformedPath)
}
