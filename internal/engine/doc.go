// Package engine composes a single open document out of its parts.
//
// A Session owns the text buffer, its undo history, the find/replace state
// and the file store, and keeps them consistent across document lifecycle
// operations:
//
//   - NewDocument and Open replace the text wholesale and clear history.
//   - Every edit records exactly one undo step; ReplaceAll is one step too.
//   - Save advances the saved baseline only when the write succeeds, so a
//     failed save leaves the document dirty.
//   - A failed Open leaves the current document untouched.
//
// # Basic Usage
//
//	s := engine.New(engine.WithStore(filestore.New(nil)))
//	if err := s.Open(ctx, "notes.txt"); err != nil {
//	    return err
//	}
//	s.ReplaceAll("teh", "the")
//	if s.IsDirty() {
//	    err = s.Save(ctx)
//	}
//
// Offsets are byte offsets into the UTF-8 text. Selections are reported by
// the caller with Select and are updated by Find.
package engine
