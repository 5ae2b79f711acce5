package domain

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// ErrReleased is returned when opening a handle that has already been released
var ErrReleased = errors.New("source handle released")

// SourceHandle is a revocable reference to a file's playable byte stream.
// Handles are compared by ID; two handles for the same path are distinct.
type SourceHandle struct {
	id   uuid.UUID
	path string

	mu       sync.Mutex
	released bool
	open     map[*os.File]struct{}
}

// NewSourceHandle creates a live handle for path
func NewSourceHandle(path string) *SourceHandle {
	return &SourceHandle{
		id:   uuid.New(),
		path: path,
		open: make(map[*os.File]struct{}),
	}
}

// ID returns the handle's identity
func (h *SourceHandle) ID() uuid.UUID {
	return h.id
}

// Path returns the underlying file path
func (h *SourceHandle) Path() string {
	return h.path
}

// Same reports whether h and other refer to the same handle
func (h *SourceHandle) Same(other *SourceHandle) bool {
	if h == nil || other == nil {
		return false
	}
	return h.id == other.id
}

// Released reports whether Release has been called
func (h *SourceHandle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// Open returns a reader over the file. The reader is closed automatically
// when the handle is released.
func (h *SourceHandle) Open() (io.ReadSeekCloser, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return nil, fmt.Errorf("open %s: %w", h.path, ErrReleased)
	}
	f, err := os.Open(h.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	h.open[f] = struct{}{}
	return &handleReader{File: f, handle: h}, nil
}

// Release revokes the handle and closes any readers still open on it.
// Releasing twice is a no-op.
func (h *SourceHandle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return nil
	}
	h.released = true

	var err error
	for f := range h.open {
		if cerr := f.Close(); !errors.Is(cerr, os.ErrClosed) {
			err = multierr.Append(err, cerr)
		}
	}
	h.open = nil
	return err
}

func (h *SourceHandle) forget(f *os.File) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.open, f)
}

type handleReader struct {
	*os.File
	handle *SourceHandle
}

func (r *handleReader) Close() error {
	r.handle.forget(r.File)
	err := r.File.Close()
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}
