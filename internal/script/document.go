package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/agilitext/internal/engine/buffer"
	"github.com/dshills/agilitext/internal/engine/search"
)

// Document is what scripts can see and change. *engine.Session implements it.
type Document interface {
	Content() string
	SetContent(text string)
	Insert(offset int, text string) (buffer.Range, error)
	Find(query string) search.MatchResult
	Replace(replacement string) (bool, error)
	ReplaceAll(query, replacement string) (int, error)
	Count(query string) int
	Undo() bool
	Redo() bool
	IsDirty() bool
	Select(r buffer.Range) error
	Stats() buffer.Stats
	Path() string
}

// registerDocument installs the doc global.
func (s *State) registerDocument() {
	funcs := map[string]lua.LGFunction{
		"text":        s.text,
		"set_text":    s.setText,
		"insert":      s.insert,
		"find":        s.find,
		"replace":     s.replace,
		"replace_all": s.replaceAll,
		"count":       s.count,
		"undo":        s.undo,
		"redo":        s.redo,
		"dirty":       s.dirty,
		"select":      s.selectRange,
		"stats":       s.stats,
		"path":        s.path,
	}

	mod := s.L.NewTable()
	for name, fn := range funcs {
		fn := fn
		s.L.SetField(mod, name, s.L.NewFunction(func(L *lua.LState) int {
			s.step(L)
			return fn(L)
		}))
	}
	s.L.SetGlobal("doc", mod)
}

// text() -> string
func (s *State) text(L *lua.LState) int {
	L.Push(lua.LString(s.doc.Content()))
	return 1
}

// set_text(s)
func (s *State) setText(L *lua.LState) int {
	s.doc.SetContent(L.CheckString(1))
	return 0
}

// insert(offset, text) -> end_offset
func (s *State) insert(L *lua.LState) int {
	offset := L.CheckInt(1)
	text := L.CheckString(2)

	if offset < 0 {
		L.ArgError(1, "offset must be non-negative")
		return 0
	}

	r, err := s.doc.Insert(offset, text)
	if err != nil {
		L.RaiseError("insert: %v", err)
		return 0
	}
	L.Push(lua.LNumber(r.End))
	return 1
}

// find(query) -> true, start, stop | false
func (s *State) find(L *lua.LState) int {
	res := s.doc.Find(L.CheckString(1))
	if !res.Found {
		L.Push(lua.LFalse)
		return 1
	}
	L.Push(lua.LTrue)
	L.Push(lua.LNumber(res.Range.Start))
	L.Push(lua.LNumber(res.Range.End))
	return 3
}

// replace(replacement) -> bool
func (s *State) replace(L *lua.LState) int {
	ok, err := s.doc.Replace(L.CheckString(1))
	if err != nil {
		L.RaiseError("replace: %v", err)
		return 0
	}
	L.Push(lua.LBool(ok))
	return 1
}

// replace_all(query, replacement) -> count
func (s *State) replaceAll(L *lua.LState) int {
	n, err := s.doc.ReplaceAll(L.CheckString(1), L.CheckString(2))
	if err != nil {
		L.RaiseError("replace_all: %v", err)
		return 0
	}
	L.Push(lua.LNumber(n))
	return 1
}

// count(query) -> number
func (s *State) count(L *lua.LState) int {
	L.Push(lua.LNumber(s.doc.Count(L.CheckString(1))))
	return 1
}

func (s *State) undo(L *lua.LState) int {
	L.Push(lua.LBool(s.doc.Undo()))
	return 1
}

func (s *State) redo(L *lua.LState) int {
	L.Push(lua.LBool(s.doc.Redo()))
	return 1
}

func (s *State) dirty(L *lua.LState) int {
	L.Push(lua.LBool(s.doc.IsDirty()))
	return 1
}

// select(start, stop)
func (s *State) selectRange(L *lua.LState) int {
	r := buffer.NewRange(L.CheckInt(1), L.CheckInt(2))
	if err := s.doc.Select(r); err != nil {
		L.RaiseError("select: %v", err)
	}
	return 0
}

// stats() -> table
func (s *State) stats(L *lua.LState) int {
	st := s.doc.Stats()
	t := L.NewTable()
	L.SetField(t, "words", lua.LNumber(st.Words))
	L.SetField(t, "characters", lua.LNumber(st.Characters))
	L.SetField(t, "characters_no_spaces", lua.LNumber(st.CharactersNoSpaces))
	L.SetField(t, "lines", lua.LNumber(st.Lines))
	L.Push(t)
	return 1
}

// path() -> string | nil
func (s *State) path(L *lua.LState) int {
	p := s.doc.Path()
	if p == "" {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(p))
	return 1
}
