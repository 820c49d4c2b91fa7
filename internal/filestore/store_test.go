package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errInjected = errors.New("injected failure")

// faultyFs fails reads and writes of one path.
type faultyFs struct {
	afero.Fs
	path string
}

func (f *faultyFs) Open(name string) (afero.File, error) {
	file, err := f.Fs.Open(name)
	if err != nil || name != f.path {
		return file, err
	}
	return &faultyFile{File: file}, nil
}

func (f *faultyFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if name == f.path && flag&os.O_CREATE != 0 {
		return nil, errInjected
	}
	return f.Fs.OpenFile(name, flag, perm)
}

type faultyFile struct {
	afero.File
}

func (f *faultyFile) Read([]byte) (int, error) {
	return 0, errInjected
}

func memStore(t *testing.T, opts ...Option) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/docs", 0o755))
	return New(fs, opts...), fs
}

func TestOpenJoinsLines(t *testing.T) {
	s, fs := memStore(t)
	require.NoError(t, afero.WriteFile(fs, "/docs/a.txt", []byte("one\r\ntwo\nthree\rfour"), 0o644))

	text, err := s.Open(context.Background(), "/docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "onetwothreefour", text)
}

func TestOpenPreserveLineEndings(t *testing.T) {
	s, fs := memStore(t, WithPreserveLineEndings())
	require.NoError(t, afero.WriteFile(fs, "/docs/a.txt", []byte("one\r\ntwo\n"), 0o644))

	text, err := s.Open(context.Background(), "/docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "one\r\ntwo\n", text)
}

func TestOpenErrors(t *testing.T) {
	s, fs := memStore(t)
	require.NoError(t, afero.WriteFile(fs, "/docs/bad.txt", []byte("x"), 0o644))
	s.fs = &faultyFs{Fs: fs, path: "/docs/bad.txt"}

	_, err := s.Open(context.Background(), "/docs/missing.txt")
	assert.True(t, IsUnreadable(err))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = s.Open(context.Background(), "/docs")
	assert.True(t, IsUnreadable(err))

	_, err = s.Open(context.Background(), "/docs/bad.txt")
	assert.True(t, IsIOFailure(err))
	assert.ErrorIs(t, err, errInjected)

	var pe *PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "open", pe.Op)
	assert.Equal(t, "/docs/bad.txt", pe.Path)
}

func TestOpenCanceled(t *testing.T) {
	s, fs := memStore(t)
	require.NoError(t, afero.WriteFile(fs, "/docs/a.txt", []byte("x"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Open(ctx, "/docs/a.txt")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsUnreadable(err))
}

func TestSave(t *testing.T) {
	for _, atomic := range []bool{false, true} {
		name := "replace"
		var opts []Option
		if atomic {
			name = "atomic"
			opts = append(opts, WithAtomicSave())
		}

		t.Run(name, func(t *testing.T) {
			s, fs := memStore(t, opts...)
			ctx := context.Background()

			require.NoError(t, s.Save(ctx, "/docs/a.txt", "first"))
			require.NoError(t, s.Save(ctx, "/docs/a.txt", "second"))

			data, err := afero.ReadFile(fs, "/docs/a.txt")
			require.NoError(t, err)
			assert.Equal(t, "second", string(data))

			entries, err := afero.ReadDir(fs, "/docs")
			require.NoError(t, err)
			assert.Len(t, entries, 1, "no probe or temp files left behind")
			exists, err := afero.Exists(fs, "/docs/a.txt")
			require.NoError(t, err)
			assert.True(t, exists)
		})
	}
}

func TestSaveUnwritable(t *testing.T) {
	s, fs := memStore(t)
	require.NoError(t, afero.WriteFile(fs, "/docs/file", []byte("x"), 0o644))
	ctx := context.Background()

	err := s.Save(ctx, "/missing/a.txt", "x")
	assert.True(t, IsUnwritable(err))

	err = s.Save(ctx, "/docs/file/a.txt", "x")
	assert.True(t, IsUnwritable(err))

	err = s.Save(ctx, "/docs", "x")
	assert.True(t, IsUnwritable(err))

	ro := New(afero.NewReadOnlyFs(fs))
	err = ro.Save(ctx, "/docs/a.txt", "x")
	assert.True(t, IsUnwritable(err))
	exists, _ := afero.Exists(fs, "/docs/a.txt")
	assert.False(t, exists)
}

func TestSaveWriteFailure(t *testing.T) {
	s, fs := memStore(t)
	s.fs = &faultyFs{Fs: fs, path: "/docs/a.txt"}

	err := s.Save(context.Background(), "/docs/a.txt", "x")
	assert.True(t, IsIOFailure(err))
	assert.ErrorIs(t, err, errInjected)
	assert.False(t, IsUnwritable(err))
}

func TestSaveCanceled(t *testing.T) {
	s, fs := memStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Save(ctx, "/docs/a.txt", "x")
	assert.ErrorIs(t, err, context.Canceled)

	exists, _ := afero.Exists(fs, "/docs/a.txt")
	assert.False(t, exists)
}

func TestOSRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	s := New(nil)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))
	require.NoError(t, s.Save(ctx, path, "line one\nline two"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "mode preserved")

	text, err := s.Open(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "line oneline two", text)
}

func TestOSUnwritableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses directory permissions")
	}

	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	err := New(nil).Save(context.Background(), filepath.Join(dir, "a.txt"), "x")
	assert.True(t, IsUnwritable(err))
}

func TestPathErrorMessage(t *testing.T) {
	err := newPathError("save", "/a.txt", ErrUnwritable, nil)
	assert.Equal(t, "save /a.txt: file unwritable", err.Error())
	assert.ErrorIs(t, err, ErrUnwritable)

	err = newPathError("open", "/a.txt", ErrUnreadable, os.ErrPermission)
	assert.Equal(t, "open /a.txt: file unreadable: permission denied", err.Error())
	assert.ErrorIs(t, err, os.ErrPermission)
}
