package history

import (
	"sync"
	"time"
)

// Option configures a History.
type Option func(*History)

// WithMaxEntries caps the undo stack. Zero or negative means unbounded.
// When the cap is exceeded the oldest records are evicted first.
func WithMaxEntries(max int) Option {
	return func(h *History) {
		if max < 0 {
			max = 0
		}
		h.maxEntries = max
	}
}

// WithClock sets the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *History) {
		if now != nil {
			h.now = now
		}
	}
}

// History manages undo/redo state for a document.
type History struct {
	mu sync.Mutex

	undoStack []*Record
	redoStack []*Record

	// Grouping state
	grouping      bool
	groupName     string
	groupRecorded bool
	groupRedo     []*Record // redo stack displaced by the group's record

	// Configuration
	maxEntries int
	now        func() time.Time
}

// New creates a new history manager.
func New(opts ...Option) *History {
	h := &History{now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Record pushes the text as it was before an edit and clears the redo stack.
func (h *History) Record(before string) {
	h.RecordNamed("", before)
}

// RecordNamed is Record with a description.
// Inside a group, only the first record is kept and it takes the group name.
func (h *History) RecordNamed(description, before string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		if h.groupRecorded {
			return
		}
		h.groupRecorded = true
		h.groupRedo = h.redoStack
		description = h.groupName
	}

	h.pushLocked(description, before)
}

// pushLocked adds a record without acquiring the lock.
func (h *History) pushLocked(description, before string) {
	h.undoStack = append(h.undoStack, &Record{
		Before:      before,
		Description: description,
		Timestamp:   h.now(),
	})

	// Clear redo stack
	h.redoStack = nil

	h.evictLocked()
}

// evictLocked drops the oldest undo records beyond maxEntries.
func (h *History) evictLocked() {
	if h.maxEntries > 0 && len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo restores the most recent record into t and makes it redoable.
// Returns the restored text, or false if there is nothing to undo.
func (h *History) Undo(t Target) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return "", false
	}

	entry := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]

	h.redoStack = append(h.redoStack, &Record{
		Before:      t.Content(),
		Description: entry.Description,
		Timestamp:   h.now(),
	})
	t.SetContent(entry.Before)
	return entry.Before, true
}

// Redo re-applies the most recently undone edit to t.
// Returns the resulting text, or false if there is nothing to redo.
func (h *History) Redo(t Target) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return "", false
	}

	entry := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]

	h.undoStack = append(h.undoStack, &Record{
		Before:      t.Content(),
		Description: entry.Description,
		Timestamp:   h.now(),
	})
	h.evictLocked()
	t.SetContent(entry.Before)
	return entry.Before, true
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo operations available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.groupRecorded = false
	h.groupRedo = nil
}

// UndoInfo returns info about available undo operations, oldest first.
func (h *History) UndoInfo() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infos(h.undoStack)
}

// RedoInfo returns info about available redo operations, oldest first.
func (h *History) RedoInfo() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infos(h.redoStack)
}

func infos(stack []*Record) []Info {
	result := make([]Info, len(stack))
	for i, entry := range stack {
		result[i] = entry.info()
	}
	return result
}

// PeekUndo returns info about the next undo operation without removing it.
func (h *History) PeekUndo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return Info{}, false
	}
	return h.undoStack[len(h.undoStack)-1].info(), true
}

// PeekRedo returns info about the next redo operation without removing it.
func (h *History) PeekRedo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return Info{}, false
	}
	return h.redoStack[len(h.redoStack)-1].info(), true
}

// SetMaxEntries changes the undo cap. Zero or negative means unbounded.
// If the current stack is larger, oldest entries are removed.
func (h *History) SetMaxEntries(max int) {
	if max < 0 {
		max = 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max
	h.evictLocked()
}

// MaxEntries returns the undo cap, 0 when unbounded.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
