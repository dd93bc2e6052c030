// Package luabind runs Lua scripts against imstr strings.
//
// Scripts see strings as userdata of type "imstr" whose methods slice,
// clone and edit without copying the underlying text into Lua until text()
// or tostring() is called. Strings use the Local strategy: a State is
// confined to one goroutine at a time, so reference counts need no atomics.
package luabind

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/imstr/internal/imstr"
	"github.com/dshills/imstr/internal/logging"
)

// Default limits for Lua state.
const (
	DefaultExecutionTimeout = 5 * time.Second
	DefaultInstructionLimit = 1_000_000 // imstr operations per run
)

// State wraps gopher-lua with the imstr module installed.
//
// gopher-lua's LState is not goroutine-safe. The mutex serializes calls from
// Go, and every String created by a script is released when the State closes.
type State struct {
	L *lua.LState

	mu sync.Mutex

	executionTimeout time.Duration
	instructionLimit int64
	instructions     int64
	logger           *logging.Logger

	live   map[*handle]struct{}
	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout bounds the wall time of a single run. Zero disables
// the timeout.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.executionTimeout = d
	}
}

// WithInstructionLimit bounds the number of imstr operations a single run
// may perform. Zero disables the limit.
func WithInstructionLimit(limit int64) StateOption {
	return func(s *State) {
		s.instructionLimit = limit
	}
}

// WithLogger sets the logger behind the script-visible log function.
func WithLogger(l *logging.Logger) StateOption {
	return func(s *State) {
		s.logger = l
	}
}

// NewState creates a sandboxed Lua state with the imstr module loaded.
func NewState(opts ...StateOption) *State {
	state := &State{
		executionTimeout: DefaultExecutionTimeout,
		instructionLimit: DefaultInstructionLimit,
		logger:           logging.Nop(),
		live:             make(map[*handle]struct{}),
	}
	for _, opt := range opts {
		opt(state)
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	state.L = L

	openSafeLibraries(L)
	state.registerModule()
	L.SetGlobal("log", L.NewFunction(state.luaLog))
	return state
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Not opened: io, os, debug, package.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// DoString executes a Lua chunk.
func (s *State) DoString(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	return s.run(func() error {
		return s.L.DoString(code)
	})
}

// Call calls a global Lua function with the given arguments.
// Returns an empty slice (not nil) if the function returns no values.
func (s *State) Call(fn string, args ...lua.LValue) ([]lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	fnVal := s.L.GetGlobal(fn)
	if fnVal.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%q is not a function (got %s)", fn, fnVal.Type())
	}

	stackTop := s.L.GetTop()
	err := s.run(func() error {
		s.L.Push(fnVal)
		for _, arg := range args {
			s.L.Push(arg)
		}
		return s.L.PCall(len(args), lua.MultRet, nil)
	})
	if err != nil {
		s.L.SetTop(stackTop)
		return nil, err
	}

	nRet := s.L.GetTop() - stackTop
	if nRet <= 0 {
		return []lua.LValue{}, nil
	}
	results := make([]lua.LValue, nRet)
	for i := 0; i < nRet; i++ {
		results[i] = s.L.Get(stackTop + i + 1)
	}
	s.L.Pop(nRet)
	return results, nil
}

// run executes fn under the run budgets with panic recovery.
// The caller holds s.mu.
func (s *State) run(fn func() error) (err error) {
	s.instructions = 0

	if s.executionTimeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), s.executionTimeout)
		defer cancel()
		s.L.SetContext(ctx)
		defer s.L.RemoveContext()
		defer func() {
			if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err = fmt.Errorf("%w: %v", ErrExecutionTimeout, err)
			}
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	err = fn()
	if err != nil && strings.Contains(err.Error(), ErrInstructionLimit.Error()) {
		err = fmt.Errorf("%w: %v", ErrInstructionLimit, err)
	}
	return err
}

// charge counts one imstr operation against the run budget.
func (s *State) charge(L *lua.LState) {
	if s.instructionLimit <= 0 {
		return
	}
	s.instructions++
	if s.instructions > s.instructionLimit {
		L.RaiseError("%s", ErrInstructionLimit.Error())
	}
}

// SetString binds a clone of v to the global name. The clone is released
// when the script releases it or the State closes.
func (s *State) SetString(name string, v *imstr.Local) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.L.SetGlobal(name, s.newUserData(s.L, v.Clone()))
}

// GetString returns a clone of the imstr value held by the global name.
func (s *State) GetString(name string) (*imstr.Local, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, false
	}
	h, ok := toHandle(s.L.GetGlobal(name))
	if !ok || h.s == nil {
		return nil, false
	}
	return h.s.Clone(), true
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// Live returns the number of strings created by scripts and not yet released.
func (s *State) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Close releases every string still held by scripts and the Lua state.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	for h := range s.live {
		h.release()
	}
	s.live = nil
	s.L.Close()
	s.closed = true
	return nil
}

// log(msg) or log(level, msg)
func (s *State) luaLog(L *lua.LState) int {
	level, msg := logging.LevelInfo, L.CheckString(1)
	if L.GetTop() >= 2 {
		parsed, ok := logging.ParseLevel(msg)
		if !ok {
			L.ArgError(1, "unknown log level")
			return 0
		}
		level, msg = parsed, L.CheckString(2)
	}

	switch level {
	case logging.LevelDebug:
		s.logger.Debug("%s", msg)
	case logging.LevelWarn:
		s.logger.Warn("%s", msg)
	case logging.LevelError:
		s.logger.Error("%s", msg)
	default:
		s.logger.Info("%s", msg)
	}
	return 0
}
