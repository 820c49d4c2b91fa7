package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/agilitext/internal/engine/buffer"
	"github.com/dshills/agilitext/internal/engine/history"
	"github.com/dshills/agilitext/internal/engine/search"
	"github.com/dshills/agilitext/internal/filestore"
	"github.com/dshills/agilitext/internal/logging"
)

// State is the unsaved-changes state of a document.
type State int

const (
	// Clean means the text matches the last load or save.
	Clean State = iota
	// Dirty means there are unsaved changes.
	Dirty
)

// String returns the state name.
func (s State) String() string {
	if s == Dirty {
		return "dirty"
	}
	return "clean"
}

// Session is one open document: its text, history, find state and file.
// All methods are thread-safe.
type Session struct {
	mu sync.Mutex

	id   uuid.UUID
	path string

	buf    *buffer.Buffer
	hist   *history.History
	finder *search.Finder

	store     *filestore.Store
	clipboard Clipboard
	logger    *logging.Logger

	now        func() time.Time
	dateFormat string
	timeFormat string

	// Construction only
	maxUndo     int
	initContent *string
}

// New creates a session holding an empty, untitled document.
func New(opts ...Option) *Session {
	s := &Session{
		id:         uuid.New(),
		logger:     logging.Nop(),
		now:        time.Now,
		dateFormat: DefaultDateFormat,
		timeFormat: DefaultTimeFormat,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = filestore.New(nil, filestore.WithLogger(s.logger))
	}
	if s.clipboard == nil {
		if SystemClipboardSupported() {
			s.clipboard = SystemClipboard{}
		} else {
			s.clipboard = &MemoryClipboard{}
		}
	}

	s.buf = buffer.New()
	if s.initContent != nil {
		s.buf.SetContent(*s.initContent)
		s.initContent = nil
	}
	s.hist = history.New(history.WithMaxEntries(s.maxUndo), history.WithClock(s.now))
	s.finder = search.New(recordingSource{s})
	return s
}

// recordingSource lets the Finder edit the buffer while recording history.
// It never takes the session lock; callers already hold it.
type recordingSource struct {
	s *Session
}

func (r recordingSource) Content() string  { return r.s.buf.Content() }
func (r recordingSource) Revision() uint64 { return r.s.buf.Revision() }

func (r recordingSource) Replace(rg buffer.Range, text string) (buffer.Range, error) {
	before := r.s.buf.Content()
	out, err := r.s.buf.Replace(rg, text)
	if err != nil {
		return out, err
	}
	r.s.hist.RecordNamed("Replace", before)
	return out, nil
}

// ID identifies the current document. It changes on NewDocument and Open.
func (s *Session) ID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Path returns the document path, empty when untitled.
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Content returns the document text.
func (s *Session) Content() string {
	return s.buf.Content()
}

// IsDirty reports whether there are unsaved changes.
func (s *Session) IsDirty() bool {
	return s.buf.IsDirty()
}

// NeedsConfirmation reports whether discarding the document would lose work.
func (s *Session) NeedsConfirmation() bool {
	return s.buf.IsDirty()
}

// State returns Clean or Dirty.
func (s *Session) State() State {
	if s.buf.IsDirty() {
		return Dirty
	}
	return Clean
}

// UnsavedChanges returns a patch from the saved text to the current text.
// Empty when clean.
func (s *Session) UnsavedChanges() string {
	return s.buf.PatchText()
}

// ChangeSummary counts unsaved inserted and deleted characters.
func (s *Session) ChangeSummary() buffer.ChangeSummary {
	return s.buf.Summary()
}

// Stats returns document statistics.
func (s *Session) Stats() buffer.Stats {
	return s.buf.Stats()
}

// NewDocument discards the document and starts an empty, untitled one.
// Callers should check NeedsConfirmation first.
func (s *Session) NewDocument() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf.Reset()
	s.resetLocked("")
	s.log().Info("new document")
}

// Open replaces the document with the file at path.
// On error the current document is unchanged.
func (s *Session) Open(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.store.Open(ctx, path)
	if err != nil {
		s.log().WithField("path", path).Warn("open failed: %v", err)
		return err
	}

	s.buf.Load(text)
	s.resetLocked(path)
	s.log().Info("opened %d bytes", len(text))
	return nil
}

// resetLocked starts a fresh document identity at path.
func (s *Session) resetLocked(path string) {
	s.hist.Clear()
	s.finder.Reset()
	s.path = path
	s.id = uuid.New()
}

// Save writes the document to its path. Untitled documents return ErrNoPath.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return ErrNoPath
	}
	return s.saveLocked(ctx, s.path)
}

// SaveAs writes the document to path and makes it the document path.
// On error the path is unchanged.
func (s *Session) SaveAs(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveLocked(ctx, path); err != nil {
		return err
	}
	s.path = path
	return nil
}

func (s *Session) saveLocked(ctx context.Context, path string) error {
	text := s.buf.Content()
	if err := s.store.Save(ctx, path, text); err != nil {
		s.log().WithField("path", path).Warn("save failed: %v", err)
		return err
	}

	s.buf.MarkSaved()
	s.log().WithField("path", path).Info("saved %d bytes", len(text))
	return nil
}

// Revert restores the last saved text. It can be undone.
// Returns false when there was nothing to revert.
func (s *Session) Revert() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.buf.IsDirty() {
		return false
	}
	s.hist.RecordNamed("Revert", s.buf.Content())
	s.buf.Revert()
	s.finder.Reset()
	return true
}

// Undo reverts the most recent edit. Returns false if there is none.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.hist.Undo(s.buf)
	return ok
}

// Redo re-applies the most recently undone edit. Returns false if there is none.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.hist.Redo(s.buf)
	return ok
}

// CanUndo reports whether Undo would do anything.
func (s *Session) CanUndo() bool {
	return s.hist.CanUndo()
}

// CanRedo reports whether Redo would do anything.
func (s *Session) CanRedo() bool {
	return s.hist.CanRedo()
}

// UndoHistory describes the available undo steps, oldest first.
func (s *Session) UndoHistory() []history.Info {
	return s.hist.UndoInfo()
}

// RedoHistory describes the available redo steps, oldest first.
func (s *Session) RedoHistory() []history.Info {
	return s.hist.RedoInfo()
}

// HistoryDepth returns how many undo and redo steps are available.
func (s *Session) HistoryDepth() (undo, redo int) {
	return s.hist.UndoCount(), s.hist.RedoCount()
}

// NextUndo describes the step Undo would revert.
func (s *Session) NextUndo() (history.Info, bool) {
	return s.hist.PeekUndo()
}

// NextRedo describes the step Redo would re-apply.
func (s *Session) NextRedo() (history.Info, bool) {
	return s.hist.PeekRedo()
}

// SetMaxUndo changes the undo cap. Zero means unbounded; the oldest
// steps beyond a smaller cap are dropped.
func (s *Session) SetMaxUndo(n int) {
	s.hist.SetMaxEntries(n)
}

// MaxUndo returns the undo cap, 0 when unbounded.
func (s *Session) MaxUndo() int {
	return s.hist.MaxEntries()
}

func (s *Session) log() *logging.Logger {
	l := s.logger.WithComponent("session").WithField("doc", s.id.String())
	if s.path != "" {
		l = l.WithField("file", s.path)
	}
	return l
}
