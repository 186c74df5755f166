// Package storage defines the Directory interface for the managed media directory.
package storage

import (
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when a path does not exist under the directory root.
var ErrNotFound = errors.New("storage: not found")

// ErrOutsideRoot is returned when a path resolves outside the directory root.
var ErrOutsideRoot = errors.New("storage: path outside root")

// ErrTooLarge is returned by WriteFile when the payload exceeds maxBytes.
var ErrTooLarge = errors.New("storage: payload too large")

// ErrExist is returned by RenameFile when the destination already exists.
var ErrExist = errors.New("storage: already exists")

// ErrNotFile is returned when a file operation targets a directory.
var ErrNotFile = errors.New("storage: not a regular file")

// Entry is one item returned by Directory.List.
type Entry struct {
	Name    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// Directory abstracts a writable directory rooted at a fixed location.
// All paths are slash separated and relative to the root.
type Directory interface {
	// Create makes rel and any missing parents.
	Create(rel string) error
	// Delete removes rel recursively. Deleting a missing path is not an error.
	Delete(rel string) error
	// DeleteFile removes the single file rel. Directories give ErrNotFile;
	// deleting a missing file is not an error.
	DeleteFile(rel string) error
	// IsExist reports whether rel exists.
	IsExist(rel string) (bool, error)
	// AbsolutePath resolves rel to an absolute filesystem path inside the root.
	AbsolutePath(rel string) (string, error)
	// RelativePath converts an absolute path inside the root back to a relative one.
	RelativePath(abs string) (string, error)
	// RenameFile moves the file from to to, creating the destination parent.
	// An existing destination is never replaced: ErrExist is returned instead.
	RenameFile(from, to string) error
	// ReadFile returns the full contents of rel.
	ReadFile(rel string) ([]byte, error)
	// WriteFile stores reader under rel. maxBytes <= 0 disables the limit.
	WriteFile(rel string, reader io.Reader, maxBytes int64) (int64, error)
	// Open returns a reader for the file rel. Directories give ErrNotFile.
	Open(rel string) (io.ReadCloser, error)
	// List returns the direct children of rel sorted by name.
	List(rel string) ([]Entry, error)
}
