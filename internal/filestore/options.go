package filestore

import "github.com/dshills/agilitext/internal/logging"

// Option configures a Store.
type Option func(*Store)

// WithAtomicSave writes to a temporary file and renames it over the target,
// so a failed save never leaves the document missing.
func WithAtomicSave() Option {
	return func(s *Store) {
		s.atomic = true
	}
}

// WithPreserveLineEndings keeps CR and LF characters on Open.
func WithPreserveLineEndings() Option {
	return func(s *Store) {
		s.preserveLineEndings = true
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}
