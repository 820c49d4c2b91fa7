package engine

import (
	"time"

	"github.com/dshills/agilitext/internal/filestore"
	"github.com/dshills/agilitext/internal/logging"
)

// Default formats for InsertDate and InsertTime.
const (
	DefaultDateFormat = "02/01/2006"
	DefaultTimeFormat = "03:04:05"
)

// Option configures a Session during creation.
type Option func(*Session)

// WithStore sets the file store. The default uses the OS filesystem.
func WithStore(store *filestore.Store) Option {
	return func(s *Session) {
		if store != nil {
			s.store = store
		}
	}
}

// WithClipboard sets the clipboard used by Cut, Copy and Paste.
func WithClipboard(c Clipboard) Option {
	return func(s *Session) {
		if c != nil {
			s.clipboard = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxUndo caps undo history. Zero keeps it unbounded.
func WithMaxUndo(max int) Option {
	return func(s *Session) {
		s.maxUndo = max
	}
}

// WithInitialContent starts the session with text that has not been saved.
func WithInitialContent(text string) Option {
	return func(s *Session) {
		s.initContent = &text
	}
}

// WithClock sets the time source for InsertDate and InsertTime.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDateFormat sets the layout used by InsertDate.
func WithDateFormat(layout string) Option {
	return func(s *Session) {
		if layout != "" {
			s.dateFormat = layout
		}
	}
}

// WithTimeFormat sets the layout used by InsertTime.
func WithTimeFormat(layout string) Option {
	return func(s *Session) {
		if layout != "" {
			s.timeFormat = layout
		}
	}
}
