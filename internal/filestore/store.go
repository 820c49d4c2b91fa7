package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/dshills/agilitext/internal/logging"
)

var (
	errIsDirectory  = errors.New("is a directory")
	errNotDirectory = errors.New("parent is not a directory")

	errNoAccessCheck = errors.New("no access check on this platform")
)

// lineJoiner drops line terminators, concatenating lines the way a
// line-by-line reader would.
var lineJoiner = strings.NewReplacer("\r", "", "\n", "")

const defaultPerm os.FileMode = 0o644

// Store reads and writes documents on an afero filesystem.
type Store struct {
	fs     afero.Fs
	logger *logging.Logger

	atomic              bool
	preserveLineEndings bool
}

// New creates a Store on fs. A nil fs means the OS filesystem.
func New(fs afero.Fs, opts ...Option) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	s := &Store{
		fs:     fs,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open reads the document at path.
func (s *Store) Open(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}

	info, err := s.fs.Stat(path)
	if err != nil {
		return "", newPathError("open", path, ErrUnreadable, err)
	}
	if info.IsDir() {
		return "", newPathError("open", path, ErrUnreadable, errIsDirectory)
	}

	f, err := s.fs.Open(path)
	if err != nil {
		return "", newPathError("open", path, ErrUnreadable, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", newPathError("open", path, ErrIOFailure, err)
	}

	text := string(data)
	if !s.preserveLineEndings {
		text = lineJoiner.Replace(text)
	}

	s.logger.WithField("path", path).Debug("opened %d bytes", len(data))
	return text, nil
}

// Save writes text to path, replacing any existing file.
// The file keeps its permissions; new files get 0644.
func (s *Store) Save(ctx context.Context, path, text string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := s.checkWritable(dir); err != nil {
		return newPathError("save", path, ErrUnwritable, err)
	}

	perm := defaultPerm
	if info, err := s.fs.Stat(path); err == nil {
		if info.IsDir() {
			return newPathError("save", path, ErrUnwritable, errIsDirectory)
		}
		perm = info.Mode().Perm()
	}

	var err error
	if s.atomic {
		err = s.writeAtomic(dir, path, text, perm)
	} else {
		err = s.writeReplace(path, text, perm)
	}
	if err != nil {
		return newPathError("save", path, ErrIOFailure, err)
	}

	s.logger.WithField("path", path).Debug("saved %d bytes", len(text))
	return nil
}

// checkWritable reports why new files cannot be created in dir, if they cannot.
func (s *Store) checkWritable(dir string) error {
	info, err := s.fs.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errNotDirectory
	}

	if _, ok := s.fs.(*afero.OsFs); ok {
		if err := osWritable(dir); !errors.Is(err, errNoAccessCheck) {
			return err
		}
	}

	probe, err := afero.TempFile(s.fs, dir, ".agilitext-probe-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	_ = probe.Close()
	return s.fs.Remove(name)
}

// writeReplace deletes the old file and writes a new one in its place.
// A failure after the delete leaves no file at path.
func (s *Store) writeReplace(path, text string, perm os.FileMode) error {
	if _, err := s.fs.Stat(path); err == nil {
		if err := s.fs.Remove(path); err != nil {
			return err
		}
	}

	f, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(f, text); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (s *Store) writeAtomic(dir, path, text string, perm os.FileMode) error {
	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()

	cleanup := func(err error) error {
		_ = s.fs.Remove(name)
		return err
	}

	if _, err := io.WriteString(tmp, text); err != nil {
		_ = tmp.Close()
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		return cleanup(err)
	}
	if err := s.fs.Chmod(name, perm); err != nil {
		return cleanup(err)
	}
	if err := s.fs.Rename(name, path); err != nil {
		return cleanup(err)
	}
	return nil
}
