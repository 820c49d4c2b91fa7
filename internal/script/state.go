package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/afero"
	lua "github.com/yuin/gopher-lua"
)

// Default limits for a State.
const (
	DefaultInstructionLimit = 1_000_000
	DefaultTimeout          = 5 * time.Second
)

// Option configures a State.
type Option func(*State)

// WithInstructionLimit caps doc calls per run. Zero means unlimited.
func WithInstructionLimit(limit int64) Option {
	return func(s *State) {
		if limit >= 0 {
			s.instructionLimit = limit
		}
	}
}

// WithTimeout bounds each run. Zero means no timeout beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(s *State) {
		if d >= 0 {
			s.timeout = d
		}
	}
}

// WithOutput sets where print writes.
func WithOutput(w io.Writer) Option {
	return func(s *State) {
		if w != nil {
			s.out = w
		}
	}
}

// WithFs sets the filesystem RunFile reads from.
func WithFs(fs afero.Fs) Option {
	return func(s *State) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// State is a sandboxed Lua interpreter bound to one document.
//
// gopher-lua states are not goroutine-safe; the mutex serializes runs.
type State struct {
	L *lua.LState

	mu     sync.Mutex
	doc    Document
	out    io.Writer
	fs     afero.Fs
	closed bool

	instructionLimit int64
	instructionCount int64
	limitHit         bool
	timeout          time.Duration
}

// New creates a sandboxed state with the doc module bound to doc.
func New(doc Document, opts ...Option) *State {
	s := &State{
		doc:              doc,
		out:              io.Discard,
		fs:               afero.NewOsFs(),
		instructionLimit: DefaultInstructionLimit,
		timeout:          DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	s.installSandbox()
	s.registerDocument()
	return s
}

// Run executes Lua source.
func (s *State) Run(ctx context.Context, code string) error {
	return s.run(ctx, func() error {
		return s.L.DoString(code)
	})
}

// RunFile executes the Lua file at path.
func (s *State) RunFile(ctx context.Context, path string) error {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}

	return s.run(ctx, func() error {
		fn, err := s.L.Load(bytes.NewReader(data), path)
		if err != nil {
			return err
		}
		s.L.Push(fn)
		return s.L.PCall(0, lua.MultRet, nil)
	})
}

func (s *State) run(ctx context.Context, fn func() error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.instructionCount = 0
	s.limitHit = false
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	top := s.L.GetTop()
	err = fn()
	s.L.SetTop(top)

	switch {
	case err == nil:
		return nil
	case s.limitHit:
		return ErrInstructionLimit
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ErrTimeout
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return err
	}
}

// step counts one doc call and raises a Lua error past the limit.
func (s *State) step(L *lua.LState) {
	s.instructionCount++
	if s.instructionLimit > 0 && s.instructionCount > s.instructionLimit {
		s.limitHit = true
		L.RaiseError("%s", ErrInstructionLimit.Error())
	}
}

// Close releases the interpreter. It is safe to call more than once.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
