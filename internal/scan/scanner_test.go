package scan

import (
	"errors"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/imstr/internal/imstr"
)

func TestScanner_Basics(t *testing.T) {
	src := imstr.NewShared("let x = 42;\nnext")
	defer src.Release()
	sc := New(src)

	require.True(t, sc.Tag("let"))
	assert.False(t, sc.Tag("let"))
	assert.Equal(t, 1, sc.SkipSpace())

	ident := sc.TakeWhile(unicode.IsLetter)
	defer ident.Release()
	assert.Equal(t, "x", ident.AsText())
	assert.True(t, ident.SharesStorage(src), "token should slice the source")

	sc.SkipSpace()
	r, ok := sc.Next()
	require.True(t, ok)
	assert.Equal(t, '=', r)
	sc.SkipSpace()

	num := sc.TakeWhile(unicode.IsDigit)
	defer num.Release()
	assert.Equal(t, "42", num.AsText())

	r, ok = sc.Peek()
	require.True(t, ok)
	assert.Equal(t, ';', r)
	assert.Equal(t, 10, sc.Pos())

	line, ok := sc.TakeUntil("\n")
	require.True(t, ok)
	defer line.Release()
	assert.Equal(t, ";", line.AsText())
	sc.SkipSpace()
	assert.Equal(t, imstr.Point{Line: 1, Column: 0}, sc.Point())

	rest := sc.Rest()
	defer rest.Release()
	assert.Equal(t, "next", rest.AsText())
	assert.True(t, sc.EOF())

	_, ok = sc.Next()
	assert.False(t, ok)
}

func TestScanner_Take(t *testing.T) {
	src := imstr.NewLocal("日本語")
	defer src.Release()
	sc := New(src)

	tok, err := sc.Take(2)
	require.NoError(t, err)
	defer tok.Release()
	assert.Equal(t, "日本", tok.AsText())

	_, err = sc.Take(2)
	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
	assert.Equal(t, 6, syn.Offset)
	assert.Equal(t, 6, sc.Pos(), "failed Take must not consume")
	assert.Equal(t, "line 1, column 7: expected 2 characters, found 1", syn.Error())
}

func TestScanner_TakeUntilMissing(t *testing.T) {
	src := imstr.NewShared("abc")
	defer src.Release()
	sc := New(src)

	tok, ok := sc.TakeUntil(";")
	assert.False(t, ok)
	assert.Nil(t, tok)
	assert.Equal(t, 0, sc.Pos())
}

func TestScanner_Reset(t *testing.T) {
	src := imstr.NewShared("\u00e9!")
	defer src.Release()
	sc := New(src)

	mark := sc.Pos()
	sc.Next()
	require.NoError(t, sc.Reset(mark))
	assert.Equal(t, 0, sc.Pos())

	err := sc.Reset(1)
	assert.True(t, errors.Is(err, imstr.ErrNotCharBoundary))
	err = sc.Reset(9)
	assert.True(t, errors.Is(err, imstr.ErrOutOfBounds))
}

func TestScanner_ErrorPosition(t *testing.T) {
	src := imstr.NewShared("a\nbc")
	defer src.Release()
	sc := New(src)
	sc.Tag("a\nb")

	err := sc.Errorf("unexpected %q", "c")
	assert.Equal(t, imstr.Point{Line: 1, Column: 1}, err.Point)
	assert.Equal(t, `line 2, column 2: unexpected "c"`, err.Error())
}
