// Package docstore stores onboarding document blobs on a filesystem.
//
// Metadata lives in the sqlite documents table; this package only owns the
// bytes. It is built on afero so tests run against an in-memory
// filesystem and production runs against the OS one.
package docstore

import (
	"fmt"
	"io"
	"path"

	"github.com/spf13/afero"
)

// Store writes and reads document blobs under a base directory, one
// subdirectory per employee.
type Store struct {
	fs   afero.Fs
	base string
}

// New creates a docstore rooted at base on the given filesystem.
func New(fs afero.Fs, base string) *Store {
	return &Store{fs: fs, base: base}
}

// NewOS creates a docstore on the real filesystem.
func NewOS(base string) *Store {
	return New(afero.NewOsFs(), base)
}

func (s *Store) pathFor(employeeID, docType string) string {
	return path.Join(s.base, employeeID, docType)
}

// Put stores the blob for one document slot, replacing any previous
// upload of the same type. Returns the number of bytes written.
func (s *Store) Put(employeeID, docType string, r io.Reader) (int64, error) {
	dir := path.Join(s.base, employeeID)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("docstore: create %s: %w", dir, err)
	}

	f, err := s.fs.Create(s.pathFor(employeeID, docType))
	if err != nil {
		return 0, fmt.Errorf("docstore: create blob: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return n, fmt.Errorf("docstore: write blob: %w", err)
	}
	return n, nil
}

// Open returns a reader over a stored blob.
func (s *Store) Open(employeeID, docType string) (io.ReadCloser, error) {
	f, err := s.fs.Open(s.pathFor(employeeID, docType))
	if err != nil {
		return nil, fmt.Errorf("docstore: open blob: %w", err)
	}
	return f, nil
}

// Exists reports whether a blob is stored for the slot.
func (s *Store) Exists(employeeID, docType string) (bool, error) {
	return afero.Exists(s.fs, s.pathFor(employeeID, docType))
}
