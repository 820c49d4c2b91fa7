// Package watcher reports external changes to open documents.
//
// fsnotify watches the directory holding each document, because editors and
// tools often replace a file by renaming over it, which would drop a watch on
// the file itself. Events for other files in the directory are discarded.
// Rapid changes to one file are coalesced into a single Event after a short
// debounce delay.
package watcher

import (
	"errors"
	"strings"
	"time"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed   = errors.New("watcher is closed")
	ErrAlreadyWatching = errors.New("path is already being watched")
	ErrNotWatching     = errors.New("path is not being watched")
	ErrPathNotExist    = errors.New("path does not exist")
)

// DefaultDebounce is the default coalescing delay.
const DefaultDebounce = 100 * time.Millisecond

// Op is a set of file operations.
type Op uint32

const (
	// OpCreate indicates the file was created.
	OpCreate Op = 1 << iota
	// OpWrite indicates the file was written to.
	OpWrite
	// OpRemove indicates the file was removed.
	OpRemove
	// OpRename indicates the file was renamed away.
	OpRename
)

// String returns the operations joined with "|".
func (op Op) String() string {
	var parts []string
	for _, o := range []struct {
		op   Op
		name string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
	} {
		if op.Has(o.op) {
			parts = append(parts, o.name)
		}
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, "|")
}

// Has returns true if the operation includes o.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Changed reports whether the file content may differ from what was loaded.
func (op Op) Changed() bool {
	return op&(OpCreate|OpWrite) != 0
}

// Gone reports whether the file no longer exists under its name.
func (op Op) Gone() bool {
	return op&(OpRemove|OpRename) != 0
}

// Event is a debounced change to a watched file.
type Event struct {
	// Path is the absolute path of the file.
	Path string

	// Op combines every operation seen during the debounce window.
	Op Op

	// Timestamp is when the event was delivered.
	Timestamp time.Time
}

// Option configures a Watcher.
type Option func(*config)

type config struct {
	debounce   time.Duration
	bufferSize int
}

func defaultConfig() config {
	return config{
		debounce:   DefaultDebounce,
		bufferSize: 16,
	}
}

// WithDebounce sets the coalescing delay. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithBufferSize sets the capacity of the Events channel.
func WithBufferSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.bufferSize = n
		}
	}
}
