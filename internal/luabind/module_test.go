package luabind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func TestLuaRange(t *testing.T) {
	tests := []struct {
		i, j, n  int
		from, to int
	}{
		{1, -1, 5, 0, 5},
		{2, 3, 5, 1, 3},
		{-3, -1, 5, 2, 5},
		{0, 2, 5, 0, 2},
		{1, 99, 5, 0, 5},
		{-99, 2, 5, 0, 2},
		{4, 2, 5, 0, 0},
		{1, -1, 0, 0, 0},
	}

	for _, tt := range tests {
		from, to := luaRange(tt.i, tt.j, tt.n)
		assert.Equal(t, [2]int{tt.from, tt.to}, [2]int{from, to}, "luaRange(%d, %d, %d)", tt.i, tt.j, tt.n)
	}
}

func TestModule(t *testing.T) {
	s := newTestState(t)

	tests := []struct {
		name string
		code string
		want lua.LValue
	}{
		{"len", `return imstr.new("日本"):len()`, lua.LNumber(6)},
		{"len operator", `return #imstr.new("abc")`, lua.LNumber(3)},
		{"text", `return imstr.new("abc"):text()`, lua.LString("abc")},
		{"tostring", `return tostring(imstr.new("abc"))`, lua.LString("abc")},
		{"slice", `return imstr.new("hello"):slice(2, 4):text()`, lua.LString("ell")},
		{"slice tail", `return imstr.new("hello"):slice(-2):text()`, lua.LString("lo")},
		{"find", `return imstr.new("hello"):find("ll")`, lua.LNumber(3)},
		{"find missing", `return imstr.new("hello"):find("z")`, lua.LNil},
		{"push chain", `return imstr.new("a"):push("b"):push(imstr.new("c")):text()`, lua.LString("abc")},
		{"insert", `return imstr.new("ac"):insert(2, "b"):text()`, lua.LString("abc")},
		{"append via insert", `return imstr.new("ab"):insert(3, "c"):text()`, lua.LString("abc")},
		{"truncate", `return imstr.new("abc"):truncate(1):text()`, lua.LString("a")},
		{"split", `local p = imstr.new("a,b,c"):split(","); return #p .. p[3]:text()`, lua.LString("3c")},
		{"eq", `return imstr.new("x") == imstr.new("x")`, lua.LTrue},
		{"neq", `return imstr.new("x") == imstr.new("y")`, lua.LFalse},
		{"concat", `return tostring(imstr.new("a") .. "b" .. imstr.new("c"))`, lua.LString("abc")},
		{"concat left string", `return ("x" .. imstr.new("y")):text()`, lua.LString("xy")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, s.DoString(`function f() `+tt.code+` end`))
			got, err := s.Call("f")
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestModule_SharingVisibleToScripts(t *testing.T) {
	s := newTestState(t)

	require.NoError(t, s.DoString(`
		local a = imstr.new("shared text")
		local b = a:clone()
		local head = a:slice(1, 6)
		before = a:refcount()
		b:push("!")
		after = a:refcount()
		original = a:text()
		edited = b:text()
		head_text = head:text()
	`))
	assert.Equal(t, lua.LNumber(3), s.GetGlobal("before"))
	assert.Equal(t, lua.LNumber(2), s.GetGlobal("after"))
	assert.Equal(t, lua.LString("shared text"), s.GetGlobal("original"))
	assert.Equal(t, lua.LString("shared text!"), s.GetGlobal("edited"))
	assert.Equal(t, lua.LString("shared"), s.GetGlobal("head_text"))
}

func TestModule_TextIsCopied(t *testing.T) {
	s := newTestState(t)

	require.NoError(t, s.DoString(`
		local v = imstr.new("abc")
		snapshot = v:text()
		v:truncate(0):push("xyz")
	`))
	assert.Equal(t, lua.LString("abc"), s.GetGlobal("snapshot"))
}
