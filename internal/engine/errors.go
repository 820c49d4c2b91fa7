package engine

import "errors"

// Errors returned by session operations.
var (
	// ErrNoPath indicates the document has never been saved; use SaveAs.
	ErrNoPath = errors.New("document has no path")

	// ErrNoSelection indicates the operation needs a non-empty selection.
	ErrNoSelection = errors.New("no selection")

	// ErrClipboardUnavailable indicates the clipboard cannot be used.
	ErrClipboardUnavailable = errors.New("clipboard unavailable")
)
