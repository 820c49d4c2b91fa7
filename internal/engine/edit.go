package engine

import (
	"errors"
	"fmt"

	"github.com/dshills/agilitext/internal/engine/buffer"
	"github.com/dshills/agilitext/internal/engine/search"
)

// SetContent replaces the whole text as one undoable edit.
// Setting the current text again is a no-op.
func (s *Session) SetContent(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.buf.Content()
	if before == text {
		return
	}
	s.hist.RecordNamed("Edit", before)
	s.buf.SetContent(text)
}

// Insert inserts text at offset and returns the inserted range.
func (s *Session) Insert(offset int, text string) (buffer.Range, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.replaceLocked("Insert", buffer.Caret(offset), text)
}

// ReplaceRange replaces the text in r and returns the inserted range.
func (s *Session) ReplaceRange(r buffer.Range, text string) (buffer.Range, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.replaceLocked("Replace", r, text)
}

// Delete removes the text in r.
func (s *Session) Delete(r buffer.Range) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.replaceLocked("Delete", r, "")
	return err
}

// replaceLocked edits the buffer and records one undo step if anything changed.
func (s *Session) replaceLocked(desc string, r buffer.Range, text string) (buffer.Range, error) {
	before := s.buf.Content()
	out, err := s.buf.Replace(r, text)
	if err != nil {
		return out, err
	}
	if s.buf.Content() != before {
		s.hist.RecordNamed(desc, before)
	}
	return out, nil
}

// DeleteSelection removes the selected text and leaves a caret in its place.
func (s *Session) DeleteSelection() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, err := s.selectionLocked()
	if err != nil {
		return err
	}
	if _, err := s.replaceLocked("Delete", sel, ""); err != nil {
		return err
	}
	return s.finder.Select(buffer.Caret(sel.Start))
}

// InsertDate inserts the current date at the selection.
func (s *Session) InsertDate() (buffer.Range, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertAtSelectionLocked("Insert Date", s.now().Format(s.dateFormat))
}

// InsertTime inserts the current time at the selection.
func (s *Session) InsertTime() (buffer.Range, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertAtSelectionLocked("Insert Time", s.now().Format(s.timeFormat))
}

// Cut moves the selected text to the clipboard.
// Nothing is deleted if the clipboard fails.
func (s *Session) Cut() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, sel, err := s.copyLocked()
	if err != nil {
		return "", err
	}
	if _, err := s.replaceLocked("Cut", sel, ""); err != nil {
		return "", err
	}
	return text, s.finder.Select(buffer.Caret(sel.Start))
}

// Copy puts the selected text on the clipboard.
func (s *Session) Copy() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, _, err := s.copyLocked()
	return text, err
}

func (s *Session) copyLocked() (string, buffer.Range, error) {
	sel, err := s.selectionLocked()
	if err != nil {
		return "", sel, err
	}
	text, err := s.buf.TextRange(sel)
	if err != nil {
		return "", sel, err
	}
	if err := s.clipboard.WriteAll(text); err != nil {
		return "", sel, clipboardError(err)
	}
	return text, sel, nil
}

// Paste inserts the clipboard text at the selection.
func (s *Session) Paste() (buffer.Range, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.clipboard.ReadAll()
	if err != nil {
		return buffer.Range{}, clipboardError(err)
	}
	return s.insertAtSelectionLocked("Paste", text)
}

// insertAtSelectionLocked replaces the selection with text, or appends
// when nothing is selected. The selection becomes a caret after the text.
func (s *Session) insertAtSelectionLocked(desc, text string) (buffer.Range, error) {
	target, ok := s.finder.Selection()
	if !ok || !target.Within(s.buf.Len()) {
		target = buffer.Caret(s.buf.Len())
	}

	out, err := s.replaceLocked(desc, target, text)
	if err != nil {
		return out, err
	}
	return out, s.finder.Select(buffer.Caret(out.End))
}

func (s *Session) selectionLocked() (buffer.Range, error) {
	sel, ok := s.finder.Selection()
	if !ok || sel.IsEmpty() || !sel.Within(s.buf.Len()) {
		return buffer.Range{}, ErrNoSelection
	}
	return sel, nil
}

func clipboardError(err error) error {
	if errors.Is(err, ErrClipboardUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
}

// Find searches for query from the last match, wrapping at the end.
func (s *Session) Find(query string) search.MatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finder.Find(query)
}

// Replace replaces the current match and moves to the next one.
// Without a current match it only searches and returns false.
func (s *Session) Replace(replacement string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finder.Replace(replacement)
}

// ReplaceAll replaces every match of query as a single undo step.
func (s *Session) ReplaceAll(query, replacement string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	err := s.hist.Transaction("Replace All", func() error {
		var err error
		n, err = s.finder.ReplaceAll(query, replacement)
		return err
	})
	if n > 0 {
		s.log().Debug("replaced %d occurrences", n)
	}
	return n, err
}

// Count returns the number of case-insensitive matches of query.
func (s *Session) Count(query string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finder.Count(query)
}

// Select sets the selection.
func (s *Session) Select(r buffer.Range) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finder.Select(r)
}

// ClearSelection removes the selection.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finder.ClearSelection()
}

// Selection returns the selection, if any.
func (s *Session) Selection() (buffer.Range, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finder.Selection()
}

// FindState returns the remembered query and cursor.
func (s *Session) FindState() search.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finder.State()
}
