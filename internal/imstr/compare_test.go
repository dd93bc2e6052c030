package imstr

import (
	"testing"

	"github.com/dshills/imstr/internal/storage"
)

func TestEqual(t *testing.T) {
	a := NewShared("hello world")
	defer a.Release()
	b := NewShared("hello world")
	defer b.Release()
	c := a.Clone()
	defer c.Release()
	hello := a.Slice(0, 5)
	defer hello.Release()

	if !a.Equal(b) {
		t.Error("equal content in separate buffers should be equal")
	}
	if !a.Equal(c) {
		t.Error("clone should equal original")
	}
	if a.Equal(hello) {
		t.Error("prefix should not equal whole")
	}
	if !hello.EqualString("hello") {
		t.Error("EqualString(hello) = false")
	}
	if !hello.EqualFold("HeLLo") {
		t.Error("EqualFold(HeLLo) = false")
	}

	var zero1, zero2 Shared
	if !zero1.Equal(&zero2) {
		t.Error("zero values should be equal")
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"a", "b", -1},
		{"b", "a", 1},
		{"ab", "a", 1},
		{"\u00e9", "z", 1},
	}

	for _, tt := range tests {
		a, b := NewLocal(tt.a), NewLocal(tt.b)
		if got := a.Compare(b); got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, expected %d", tt.a, tt.b, got, tt.want)
		}
		a.Release()
		b.Release()
	}
}

func TestHash_IndependentOfStorage(t *testing.T) {
	shared := NewShared("xxabcxx")
	defer shared.Release()
	mid := shared.Slice(2, 5)
	defer mid.Release()
	local := NewLocal("abc")
	defer local.Release()
	owned := NewOwned("abc")
	defer owned.Release()

	if mid.Hash() != local.Hash() || local.Hash() != owned.Hash() {
		t.Errorf("hashes differ: %x %x %x", mid.Hash(), local.Hash(), owned.Hash())
	}
	if !EqualAcross(mid, owned) {
		t.Error("EqualAcross(mid, owned) = false")
	}
	other := NewShared("abd")
	defer other.Release()
	if other.Hash() == mid.Hash() {
		t.Error("different content hashed equally")
	}
}

func TestJoin(t *testing.T) {
	src := NewShared("a,b,c")
	defer src.Release()
	parts := src.Split(",")
	defer releaseAll(parts)

	tests := []struct {
		parts []*Shared
		sep   string
		want  string
	}{
		{nil, ", ", ""},
		{parts[:1], ", ", "a"},
		{parts, " | ", "a | b | c"},
		{parts, "", "abc"},
	}

	for _, tt := range tests {
		got := Join(tt.parts, tt.sep)
		if got.AsText() != tt.want {
			t.Errorf("Join(%d parts, %q) = %q, expected %q", len(tt.parts), tt.sep, got.AsText(), tt.want)
		}
		got.Release()
	}

	expectPanic(t, ErrInvalidEncoding, func() {
		Join(parts, "\xff")
	})
}

func TestJoin_Owned(t *testing.T) {
	parts := []*Owned{NewOwned("x"), NewOwned("y")}
	defer releaseAll(parts)

	got := Join[storage.Cloned](parts, "-")
	defer got.Release()
	if got.AsText() != "x-y" || got.RefCount() != 1 {
		t.Errorf("Join = %q refs %d", got.AsText(), got.RefCount())
	}
}
