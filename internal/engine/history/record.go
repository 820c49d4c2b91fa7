package history

import "time"

// Target is the text a History operates on.
// *buffer.Buffer satisfies it.
type Target interface {
	Content() string
	SetContent(text string)
}

// Record is a single undoable edit.
// It stores the text as it was before the edit, so applying a Record means
// restoring Before.
type Record struct {
	Before      string    // Text before the edit
	Description string    // Human-readable description, may be empty
	Timestamp   time.Time // When the edit was recorded
}

// Info provides read-only info about a Record.
// Used for displaying undo/redo history to users.
type Info struct {
	Description string    // Human-readable description
	Timestamp   time.Time // When the edit was recorded
	Bytes       int       // Size of the stored snapshot
}

func (r *Record) info() Info {
	return Info{
		Description: r.Description,
		Timestamp:   r.Timestamp,
		Bytes:       len(r.Before),
	}
}
