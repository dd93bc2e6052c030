package luabind

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/imstr/internal/imstr"
	"github.com/dshills/imstr/internal/storage"
)

const typeName = "imstr"

// handle is the userdata payload. A nil s means the script released it.
type handle struct {
	s *imstr.Local
}

func (h *handle) release() {
	if h.s != nil {
		h.s.Release()
		h.s = nil
	}
}

func toHandle(v lua.LValue) (*handle, bool) {
	ud, ok := v.(*lua.LUserData)
	if !ok {
		return nil, false
	}
	h, ok := ud.Value.(*handle)
	return h, ok
}

// registerModule installs the imstr table and the userdata metatable.
func (s *State) registerModule() {
	L := s.L

	mt := L.NewTypeMetatable(typeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"len":      s.strLen,
		"text":     s.text,
		"slice":    s.slice,
		"find":     s.find,
		"push":     s.push,
		"insert":   s.insert,
		"truncate": s.truncate,
		"clone":    s.clone,
		"release":  s.release,
		"split":    s.split,
		"refcount": s.refcount,
	}))
	L.SetField(mt, "__tostring", L.NewFunction(s.text))
	L.SetField(mt, "__len", L.NewFunction(s.strLen))
	L.SetField(mt, "__eq", L.NewFunction(s.eq))
	L.SetField(mt, "__concat", L.NewFunction(s.concat))

	mod := L.NewTable()
	L.SetField(mod, "new", L.NewFunction(s.newString))
	L.SetGlobal("imstr", mod)
}

// newUserData wraps v, which the State now owns.
func (s *State) newUserData(L *lua.LState, v *imstr.Local) *lua.LUserData {
	h := &handle{s: v}
	s.live[h] = struct{}{}
	ud := L.NewUserData()
	ud.Value = h
	L.SetMetatable(ud, L.GetTypeMetatable(typeName))
	return ud
}

// check returns the live string at stack index n.
func (s *State) check(L *lua.LState, n int) *imstr.Local {
	h, ok := toHandle(L.Get(n))
	if !ok {
		L.ArgError(n, "imstr expected")
		return nil
	}
	if h.s == nil {
		L.ArgError(n, "imstr already released")
		return nil
	}
	s.charge(L)
	return h.s
}

// textArg accepts a Lua string or an imstr value.
func (s *State) textArg(L *lua.LState, n int) string {
	if _, ok := toHandle(L.Get(n)); ok {
		return s.check(L, n).AsText()
	}
	return L.CheckString(n)
}

// imstr.new(text) -> imstr
func (s *State) newString(L *lua.LState) int {
	s.charge(L)
	v, err := imstr.TryFromString[storage.Local](L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	L.Push(s.newUserData(L, v))
	return 1
}

// s:len() -> number
func (s *State) strLen(L *lua.LState) int {
	L.Push(lua.LNumber(s.check(L, 1).Len()))
	return 1
}

// s:text() -> string
func (s *State) text(L *lua.LState) int {
	L.Push(lua.LString(s.check(L, 1).String()))
	return 1
}

// luaRange converts string.sub style indices to a byte range.
func luaRange(i, j, n int) (from, to int) {
	switch {
	case i < 0:
		i = max(n+i+1, 1)
	case i == 0:
		i = 1
	}
	switch {
	case j < 0:
		j = n + j + 1
	case j > n:
		j = n
	}
	if i > j {
		return 0, 0
	}
	return i - 1, j
}

// s:slice([i [, j]]) -> imstr
// Indices follow string.sub: 1-based, inclusive, negative from the end.
func (s *State) slice(L *lua.LState) int {
	v := s.check(L, 1)
	from, to := luaRange(L.OptInt(2, 1), L.OptInt(3, -1), v.Len())
	sub, err := v.TrySlice(from, to)
	if err != nil {
		L.RaiseError("slice: %v", err)
		return 0
	}
	L.Push(s.newUserData(L, sub))
	return 1
}

// s:find(sub) -> number or nil
func (s *State) find(L *lua.LState) int {
	v := s.check(L, 1)
	i := v.Index(L.CheckString(2))
	if i < 0 {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(i + 1))
	return 1
}

// s:push(text) -> s
func (s *State) push(L *lua.LState) int {
	v := s.check(L, 1)
	if err := v.TryPushStr(s.textArg(L, 2)); err != nil {
		L.RaiseError("push: %v", err)
		return 0
	}
	L.Push(L.Get(1))
	return 1
}

// s:insert(pos, text) -> s
// pos is 1-based; len+1 appends.
func (s *State) insert(L *lua.LState) int {
	v := s.check(L, 1)
	pos := L.CheckInt(2)
	if err := v.TryInsertStr(pos-1, s.textArg(L, 3)); err != nil {
		L.RaiseError("insert: %v", err)
		return 0
	}
	L.Push(L.Get(1))
	return 1
}

// s:truncate(n) -> s
func (s *State) truncate(L *lua.LState) int {
	v := s.check(L, 1)
	if err := v.TryTruncate(L.CheckInt(2)); err != nil {
		L.RaiseError("truncate: %v", err)
		return 0
	}
	L.Push(L.Get(1))
	return 1
}

// s:clone() -> imstr
func (s *State) clone(L *lua.LState) int {
	L.Push(s.newUserData(L, s.check(L, 1).Clone()))
	return 1
}

// s:release()
// Releasing twice is a no-op.
func (s *State) release(L *lua.LState) int {
	h, ok := toHandle(L.Get(1))
	if !ok {
		L.ArgError(1, "imstr expected")
		return 0
	}
	h.release()
	delete(s.live, h)
	return 0
}

// s:split(sep) -> {imstr...}
func (s *State) split(L *lua.LState) int {
	v := s.check(L, 1)
	parts := v.Split(L.CheckString(2))
	tbl := L.CreateTable(len(parts), 0)
	for _, p := range parts {
		tbl.Append(s.newUserData(L, p))
	}
	L.Push(tbl)
	return 1
}

// s:refcount() -> number
func (s *State) refcount(L *lua.LState) int {
	L.Push(lua.LNumber(s.check(L, 1).RefCount()))
	return 1
}

// a == b
func (s *State) eq(L *lua.LState) int {
	a, aok := toHandle(L.Get(1))
	b, bok := toHandle(L.Get(2))
	if !aok || !bok || a.s == nil || b.s == nil {
		L.Push(lua.LBool(false))
		return 1
	}
	L.Push(lua.LBool(a.s.Equal(b.s)))
	return 1
}

// a .. b, where either side may be a Lua string.
func (s *State) concat(L *lua.LState) int {
	right := s.textArg(L, 2)

	var out *imstr.Local
	if _, ok := toHandle(L.Get(1)); ok {
		out = s.check(L, 1).Clone()
	} else {
		v, err := imstr.TryFromString[storage.Local](L.CheckString(1))
		if err != nil {
			L.RaiseError("concat: %v", err)
			return 0
		}
		out = v
	}
	if err := out.TryPushStr(right); err != nil {
		out.Release()
		L.RaiseError("concat: %v", err)
		return 0
	}
	L.Push(s.newUserData(L, out))
	return 1
}
