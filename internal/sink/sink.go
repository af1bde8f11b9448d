// Package sink writes generated files.
package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Sink is the destination of generated files. Paths are file system paths.
// Implementations must be safe for concurrent use.
type Sink interface {
	WriteFile(ctx context.Context, path string, content []byte) error
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Remove(ctx context.Context, path string) error
}

// FsSink writes to an afero file system.
type FsSink struct {
	fs   afero.Fs
	mode os.FileMode
}

var _ Sink = (*FsSink)(nil)

// New creates a sink writing to fs.
func New(fs afero.Fs) *FsSink {
	return &FsSink{fs: fs, mode: 0o644}
}

// NewOsSink creates a sink writing to the local file system.
func NewOsSink() *FsSink {
	return New(afero.NewOsFs())
}

// Fs returns the underlying file system.
func (s *FsSink) Fs() afero.Fs {
	return s.fs
}

// WriteFile writes content to path atomically: the content goes to a temp
// file in the same directory which is then renamed over path. A file whose
// content is unchanged is left untouched.
func (s *FsSink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if old, err := afero.ReadFile(s.fs, path); err == nil && bytes.Equal(old, content) {
		return nil
	}

	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	tmp, err := afero.TempFile(s.fs, dir, ".buildit-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = s.fs.Remove(tmpPath) }

	_, writeErr := tmp.Write(content)
	closeErr := tmp.Close()
	if writeErr != nil {
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", writeErr)
	}
	if closeErr != nil {
		cleanup()
		return fmt.Errorf("failed to close temp file: %w", closeErr)
	}
	if err := s.fs.Chmod(tmpPath, s.mode); err != nil {
		cleanup()
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := ctx.Err(); err != nil {
		cleanup()
		return err
	}
	if err := s.fs.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// ReadFile returns the content of path. A missing file is reported with an
// error matching fs.ErrNotExist.
func (s *FsSink) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return afero.ReadFile(s.fs, path)
}

// Remove deletes path. Removing a missing file is not an error.
func (s *FsSink) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
