// Package filestore reads and writes plain-text documents.
//
// Open returns the text of a file and Save writes text back. By default lines
// are joined on load, so every CR and LF is dropped, and Save deletes the
// previous file before writing the new one. WithPreserveLineEndings and
// WithAtomicSave change those two behaviours.
//
// All failures are *PathError values whose Kind is one of ErrUnreadable,
// ErrUnwritable or ErrIOFailure:
//
//	text, err := store.Open(ctx, path)
//	if filestore.IsUnreadable(err) {
//	    // report and keep the current document
//	}
package filestore
