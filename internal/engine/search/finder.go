package search

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/patrickmn/go-cache"

	"github.com/dshills/agilitext/internal/engine/buffer"
)

// Source is the text a Finder searches and edits.
// Replace must apply the edit and return the range of the inserted text.
type Source interface {
	Content() string
	Revision() uint64
	Replace(r buffer.Range, text string) (buffer.Range, error)
}

// MatchResult describes the outcome of a find.
type MatchResult struct {
	Found   bool
	Range   buffer.Range
	Wrapped bool // found only after restarting from the beginning
}

// State is a snapshot of the Finder's memory.
type State struct {
	LastQuery string // folded
	Cursor    int
}

// Finder performs incremental find/replace over a Source.
type Finder struct {
	mu  sync.Mutex
	src Source

	lastQuery string
	cursor    int
	selection *buffer.Range

	// folded text per source revision
	folds *cache.Cache
}

// New creates a Finder over src.
func New(src Source) *Finder {
	return &Finder{
		src:   src,
		folds: cache.New(cache.NoExpiration, 0),
	}
}

// Find searches for query starting at the cursor, wrapping once to the
// beginning. A match becomes the current selection.
func (f *Finder) Find(query string) MatchResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	if query == "" {
		return MatchResult{}
	}
	return f.searchLocked(foldString(query), true)
}

// searchLocked runs one find step for an already folded query.
// The cursor resets made here stick even when nothing is found.
func (f *Finder) searchLocked(fq string, checkSelection bool) MatchResult {
	content := f.src.Content()
	fc := f.foldedLocked(content)

	if checkSelection && !f.selectionMatchesLocked(content) {
		f.cursor = 0
	}
	if fq != f.lastQuery {
		f.cursor = 0
	}
	if f.cursor < 0 || f.cursor > len(content) {
		f.cursor = 0
	}

	start := fc.fold(f.cursor)
	wrapped := false
	idx := strings.Index(fc.text[start:], fq)
	if idx >= 0 {
		idx += start
	} else if start > 0 {
		idx = strings.Index(fc.text, fq)
		wrapped = idx >= 0
	}
	if idx < 0 {
		return MatchResult{}
	}

	r := fc.original(idx, idx+len(fq))
	f.lastQuery = fq
	f.cursor = r.End
	f.selection = &r
	return MatchResult{Found: true, Range: r, Wrapped: wrapped}
}

// Replace swaps the selection for replacement when the selection still holds
// the last match, then finds lastQuery again. The selection is left as a
// caret, so that search starts over from the beginning. Without a matching
// selection it behaves like find-next and reports false.
func (f *Finder) Replace(replacement string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.lastQuery == "" {
		return false, nil
	}
	if !f.selectionMatchesLocked(f.src.Content()) {
		f.searchLocked(f.lastQuery, true)
		return false, nil
	}

	if _, err := f.replaceSelectionLocked(replacement); err != nil {
		return false, err
	}
	f.searchLocked(f.lastQuery, true)
	return true, nil
}

// replaceSelectionLocked replaces the selected text and leaves a caret after it.
func (f *Finder) replaceSelectionLocked(replacement string) (buffer.Range, error) {
	inserted, err := f.src.Replace(*f.selection, replacement)
	if err != nil {
		return inserted, fmt.Errorf("replace %s: %w", f.selection, err)
	}

	caret := buffer.Caret(inserted.End)
	f.selection = &caret
	return inserted, nil
}

// ReplaceAll replaces every match of query and returns how many were
// replaced. Nothing changes when query is empty or absent. Each search
// resumes after the inserted text and the pass stops once it wraps, so a
// replacement that contains the query is replaced only once per original match.
func (f *Finder) ReplaceAll(query, replacement string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fq := foldString(query)
	if fq == "" {
		return 0, nil
	}
	if !strings.Contains(f.foldedLocked(f.src.Content()).text, fq) {
		return 0, nil
	}

	f.lastQuery = fq
	f.cursor = 0
	f.selection = nil
	defer func() { f.cursor = 0 }()

	n := 0
	for res := f.searchLocked(fq, false); res.Found && !res.Wrapped; res = f.searchLocked(fq, false) {
		inserted, err := f.replaceSelectionLocked(replacement)
		if err != nil {
			return n, err
		}
		n++
		f.cursor = inserted.End
	}
	return n, nil
}

// Count returns the number of non-overlapping, case-insensitive matches.
// It does not touch the find state.
func (f *Finder) Count(query string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	fq := foldString(query)
	content := f.src.Content()
	if fq == "" || content == "" {
		return 0
	}
	return strings.Count(f.foldedLocked(content).text, fq)
}

// Select reports the caller's current selection.
func (f *Finder) Select(r buffer.Range) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !r.Within(len(f.src.Content())) {
		return fmt.Errorf("select %s: %w", r, buffer.ErrRangeInvalid)
	}
	f.selection = &r
	return nil
}

// ClearSelection forgets the selection.
func (f *Finder) ClearSelection() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selection = nil
}

// Selection returns the current selection, if any.
func (f *Finder) Selection() (buffer.Range, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.selection == nil {
		return buffer.Range{}, false
	}
	return *f.selection, true
}

// State returns the last query and cursor.
func (f *Finder) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{LastQuery: f.lastQuery, Cursor: f.cursor}
}

// Reset clears the query, cursor, and selection.
func (f *Finder) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastQuery = ""
	f.cursor = 0
	f.selection = nil
	f.folds.Flush()
}

// selectionMatchesLocked reports whether the selection still covers text
// equal to the last query.
func (f *Finder) selectionMatchesLocked(content string) bool {
	if f.selection == nil || !f.selection.Within(len(content)) {
		return false
	}
	return foldString(content[f.selection.Start:f.selection.End]) == f.lastQuery
}

func (f *Finder) foldedLocked(content string) *folded {
	key := strconv.FormatUint(f.src.Revision(), 10)
	if v, ok := f.folds.Get(key); ok {
		if fc := v.(*folded); fc.src == content {
			return fc
		}
	}

	// Only the current revision is worth keeping.
	f.folds.Flush()
	fc := foldText(content)
	f.folds.Set(key, fc, cache.NoExpiration)
	return fc
}
