package buffer

import (
	"errors"
	"sync"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
)

// Buffer holds the live text of a document and its baseline.
// All methods are thread-safe.
type Buffer struct {
	mu       sync.RWMutex
	content  string
	baseline string
	revision uint64
}

// New creates a new empty buffer.
func New(opts ...Option) *Buffer {
	b := &Buffer{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Read Operations

// Content returns the current text.
func (b *Buffer) Content() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.content
}

// Baseline returns the text as of the last successful load or save.
func (b *Buffer) Baseline() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.baseline
}

// Len returns the byte length of the current text.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.content)
}

// IsEmpty returns true if the buffer has no content.
func (b *Buffer) IsEmpty() bool {
	return b.Len() == 0
}

// Revision returns a counter that changes every time the content changes.
// It is only meaningful for equality checks.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// IsDirty reports whether the content differs from the baseline.
func (b *Buffer) IsDirty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.content != b.baseline
}

// TextRange returns the text in the given byte range.
func (b *Buffer) TextRange(r Range) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkRange(r); err != nil {
		return "", err
	}
	return b.content[r.Start:r.End], nil
}

// Write Operations

// SetContent replaces the content. The baseline is left alone, so the buffer
// becomes dirty whenever text differs from it.
func (b *Buffer) SetContent(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setLocked(text)
}

// MarkSaved advances the baseline to the current content.
// Call it after a successful write.
func (b *Buffer) MarkSaved() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.baseline = b.content
}

// MarkLoaded advances the baseline to the current content.
// Call it after a successful read.
func (b *Buffer) MarkLoaded() {
	b.MarkSaved()
}

// Load replaces both content and baseline with text.
func (b *Buffer) Load(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setLocked(text)
	b.baseline = text
}

// Reset empties content and baseline.
func (b *Buffer) Reset() {
	b.Load("")
}

// Revert restores the content to the baseline.
func (b *Buffer) Revert() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setLocked(b.baseline)
}

// Insert inserts text at offset and returns the range of the inserted text.
func (b *Buffer) Insert(offset int, text string) (Range, error) {
	return b.Replace(Caret(offset), text)
}

// Delete removes the text in r.
func (b *Buffer) Delete(r Range) error {
	_, err := b.Replace(r, "")
	return err
}

// Replace replaces the text in r and returns the range now covered by text.
func (b *Buffer) Replace(r Range, text string) (Range, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkRange(r); err != nil {
		return Range{}, err
	}

	b.setLocked(b.content[:r.Start] + text + b.content[r.End:])
	return Range{Start: r.Start, End: r.Start + len(text)}, nil
}

// setLocked stores text and bumps the revision if it changed.
// Caller must hold the write lock.
func (b *Buffer) setLocked(text string) {
	if text == b.content {
		return
	}
	b.content = text
	b.revision++
}

// checkRange validates r against the current content.
// Caller must hold at least the read lock.
func (b *Buffer) checkRange(r Range) error {
	if !r.IsValid() {
		return ErrRangeInvalid
	}
	if r.End > len(b.content) {
		return ErrOffsetOutOfRange
	}
	return nil
}
