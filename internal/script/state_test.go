package script

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/agilitext/internal/engine"
)

func newState(t *testing.T, text string, opts ...Option) (*State, *engine.Session) {
	t.Helper()
	sess := engine.New(engine.WithClipboard(&engine.MemoryClipboard{}))
	if text != "" {
		sess.SetContent(text)
	}
	s := New(sess, opts...)
	t.Cleanup(func() { _ = s.Close() })
	return s, sess
}

func global(s *State, name string) lua.LValue {
	return s.L.GetGlobal(name)
}

func TestEditing(t *testing.T) {
	s, sess := newState(t, "")
	ctx := context.Background()

	require.NoError(t, s.Run(ctx, `
		doc.set_text("hello")
		stop = doc.insert(5, " world")
		text = doc.text()
		dirty = doc.dirty()
	`))

	assert.Equal(t, "hello world", sess.Content())
	assert.Equal(t, lua.LNumber(11), global(s, "stop"))
	assert.Equal(t, lua.LString("hello world"), global(s, "text"))
	assert.Equal(t, lua.LTrue, global(s, "dirty"))

	require.NoError(t, s.Run(ctx, `undone = doc.undo()`))
	assert.Equal(t, lua.LTrue, global(s, "undone"))
	assert.Equal(t, "hello", sess.Content())

	require.NoError(t, s.Run(ctx, `redone = doc.redo()`))
	assert.Equal(t, "hello world", sess.Content())
}

func TestFindAndReplace(t *testing.T) {
	s, sess := newState(t, "abcabc")

	require.NoError(t, s.Run(context.Background(), `
		found, a, b = doc.find("ABC")
		found2, c, d = doc.find("abc")
		missing = doc.find("zzz")
		n = doc.count("abc")
	`))

	assert.Equal(t, lua.LTrue, global(s, "found"))
	assert.Equal(t, lua.LNumber(0), global(s, "a"))
	assert.Equal(t, lua.LNumber(3), global(s, "b"))
	assert.Equal(t, lua.LNumber(3), global(s, "c"))
	assert.Equal(t, lua.LNumber(6), global(s, "d"))
	assert.Equal(t, lua.LFalse, global(s, "missing"))
	assert.Equal(t, lua.LNumber(2), global(s, "n"))

	require.NoError(t, s.Run(context.Background(), `
		doc.find("abc")
		ok = doc.replace("x")
		total = doc.replace_all("abc", "y")
	`))
	assert.Equal(t, lua.LTrue, global(s, "ok"))
	assert.Equal(t, lua.LNumber(1), global(s, "total"))
	assert.Equal(t, "xy", sess.Content())
}

func TestSelectStatsPath(t *testing.T) {
	s, _ := newState(t, "one two\nthree")

	require.NoError(t, s.Run(context.Background(), `
		doc.select(0, 3)
		st = doc.stats()
		words = st.words
		lines = st.lines
		p = doc.path()
	`))
	assert.Equal(t, lua.LNumber(3), global(s, "words"))
	assert.Equal(t, lua.LNumber(2), global(s, "lines"))
	assert.Equal(t, lua.LNil, global(s, "p"))

	err := s.Run(context.Background(), `doc.select(5, 100)`)
	assert.Error(t, err)
}

func TestInsertRejectsBadOffset(t *testing.T) {
	s, sess := newState(t, "abc")

	assert.Error(t, s.Run(context.Background(), `doc.insert(-1, "x")`))
	assert.Error(t, s.Run(context.Background(), `doc.insert(10, "x")`))
	assert.Equal(t, "abc", sess.Content())
}

func TestSandbox(t *testing.T) {
	s, _ := newState(t, "")

	require.NoError(t, s.Run(context.Background(), `
		assert(io == nil, "io")
		assert(os == nil, "os")
		assert(debug == nil, "debug")
		assert(dofile == nil, "dofile")
		assert(loadfile == nil, "loadfile")
		assert(load == nil, "load")
		assert(loadstring == nil, "loadstring")
		assert(require == nil, "require")
		assert(string.upper("a") == "A")
		assert(math.max(1, 2) == 2)
	`))
}

func TestPrint(t *testing.T) {
	var out bytes.Buffer
	s, _ := newState(t, "abc", WithOutput(&out))

	require.NoError(t, s.Run(context.Background(), `print("count", doc.count("b"))`))
	assert.Equal(t, "count\t1\n", out.String())
}

func TestInstructionLimit(t *testing.T) {
	s, _ := newState(t, "abc", WithInstructionLimit(5))

	err := s.Run(context.Background(), `for i = 1, 10 do doc.count("a") end`)
	assert.ErrorIs(t, err, ErrInstructionLimit)

	// The count starts over on every run.
	require.NoError(t, s.Run(context.Background(), `for i = 1, 5 do doc.count("a") end`))
}

func TestTimeout(t *testing.T) {
	s, _ := newState(t, "", WithTimeout(50*time.Millisecond))

	err := s.Run(context.Background(), `while true do end`)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestCanceled(t *testing.T) {
	s, _ := newState(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Run(ctx, `while true do end`)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSyntaxError(t *testing.T) {
	s, _ := newState(t, "")
	assert.Error(t, s.Run(context.Background(), `this is not lua`))
}

func TestRunFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/scripts/fix.lua", []byte(`doc.replace_all("teh", "the")`), 0o644))

	s, sess := newState(t, "teh cat and teh hat", WithFs(fs))
	require.NoError(t, s.RunFile(context.Background(), "/scripts/fix.lua"))
	assert.Equal(t, "the cat and the hat", sess.Content())

	assert.Error(t, s.RunFile(context.Background(), "/scripts/missing.lua"))
}

func TestClosed(t *testing.T) {
	s, _ := newState(t, "")
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Run(context.Background(), `x = 1`), ErrStateClosed)
}
