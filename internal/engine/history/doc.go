// Package history provides undo/redo for the document engine.
//
// History keeps two stacks of Records. A Record is pushed just before a
// mutating edit commits and holds the text as it was, which is enough to
// invert the edit:
//
//	h := history.New()
//
//	h.Record(buf.Content()) // before the edit
//	buf.SetContent("edited")
//
//	h.Undo(buf) // buf back to the previous text
//	h.Redo(buf) // and forward again
//
// Recording a new edit after undoing clears the redo stack; history is
// strictly linear.
//
// # Depth
//
// History is unbounded by default. WithMaxEntries caps the undo stack and
// evicts the oldest records first.
//
// # Grouping
//
// Several edits can be collapsed into one undo step:
//
//	h.Transaction("Replace All", func() error {
//	    // ... many edits, each calling h.Record ...
//	    return nil
//	})
//
// Only the first Record inside the group is kept, so one Undo restores the
// text as it was before the group began.
package history
