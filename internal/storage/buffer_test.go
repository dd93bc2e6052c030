package storage

import (
	"errors"
	"testing"
)

func expectPanic(t *testing.T, want error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic %v, got none", want)
		}
		if want == nil {
			return
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, want) {
			t.Fatalf("expected panic %v, got %v", want, r)
		}
	}()
	fn()
}

func TestAlloc(t *testing.T) {
	tests := []struct {
		name     string
		length   int
		capacity int
	}{
		{"empty", 0, 0},
		{"small", 5, 10},
		{"capacity below length", 20, 4},
		{"tier boundary", Size4K, Size4K},
		{"above largest tier", 0, Size8M + 1},
	}

	for _, pooled := range []bool{true, false} {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				prev := PoolingEnabled()
				SetPooling(pooled)
				defer SetPooling(prev)

				b := Alloc(tt.length, tt.capacity)
				if b.Len() != tt.length {
					t.Errorf("Len() = %d, expected %d", b.Len(), tt.length)
				}
				if b.Cap() < max(tt.length, tt.capacity) {
					t.Errorf("Cap() = %d, expected at least %d", b.Cap(), max(tt.length, tt.capacity))
				}
				if b.ReadOnly() {
					t.Error("fresh allocation should be writable")
				}
				b.free()
			})
		}
	}
}

func TestAlloc_Negative(t *testing.T) {
	expectPanic(t, ErrAllocationFailure, func() { Alloc(-1, 0) })
	expectPanic(t, ErrAllocationFailure, func() { Alloc(0, -1) })
}

func TestBuffer_AppendGrows(t *testing.T) {
	b := Alloc(0, 4)
	defer b.free()

	b.AppendString("abcd")
	b.Append([]byte("efghijklmnopqrstuvwxyz0123456789!"))

	expected := "abcdefghijklmnopqrstuvwxyz0123456789!"
	if got := string(b.Bytes()); got != expected {
		t.Fatalf("contents = %q, expected %q", got, expected)
	}
	if b.Cap() < len(expected) {
		t.Errorf("Cap() = %d, expected at least %d", b.Cap(), len(expected))
	}
}

func TestBuffer_GrowDoubles(t *testing.T) {
	prev := PoolingEnabled()
	SetPooling(false)
	defer SetPooling(prev)

	b := Alloc(0, 100)
	defer b.free()
	b.Append(make([]byte, 100))
	b.Grow(1)
	if b.Cap() != 200 {
		t.Errorf("Cap() = %d, expected 200", b.Cap())
	}
	b.Grow(500)
	if b.Cap() != 600 {
		t.Errorf("Cap() = %d, expected 600", b.Cap())
	}
}

func TestBuffer_GrowNoop(t *testing.T) {
	b := Alloc(0, 64)
	defer b.free()

	before := ReadMetrics()
	b.Grow(10)
	if d := ReadMetrics().Sub(before); d.Grows != 0 {
		t.Errorf("Grows = %d, expected 0 with spare capacity", d.Grows)
	}
}

func TestBuffer_Truncate(t *testing.T) {
	b := NewBuffer([]byte("hello world"))
	defer b.free()

	capBefore := b.Cap()
	b.Truncate(5)
	if got := string(b.Bytes()); got != "hello" {
		t.Errorf("contents = %q, expected %q", got, "hello")
	}
	if b.Cap() != capBefore {
		t.Errorf("Cap() = %d, expected capacity to be kept at %d", b.Cap(), capBefore)
	}

	expectPanic(t, nil, func() { b.Truncate(6) })
	expectPanic(t, nil, func() { b.Truncate(-1) })
}

func TestBuffer_Splice(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		s        string
		expected string
	}{
		{"insert at start", 0, 0, ">>", ">>hello world"},
		{"insert in middle", 5, 5, ",", "hello, world"},
		{"insert at end", 11, 11, "!", "hello world!"},
		{"replace same length", 0, 5, "HELLO", "HELLO world"},
		{"replace longer", 6, 11, "there, friend", "hello there, friend"},
		{"replace shorter", 0, 5, "yo", "yo world"},
		{"delete", 5, 11, "", "hello"},
		{"delete all", 0, 11, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Alloc(0, 11)
			defer b.free()
			b.AppendString("hello world")

			b.Splice(tt.from, tt.to, tt.s)
			if got := string(b.Bytes()); got != tt.expected {
				t.Errorf("Splice(%d, %d, %q) = %q, expected %q", tt.from, tt.to, tt.s, got, tt.expected)
			}
		})
	}
}

func TestBuffer_SpliceOutOfRange(t *testing.T) {
	b := NewBuffer([]byte("abc"))
	defer b.free()

	expectPanic(t, nil, func() { b.Splice(2, 1, "") })
	expectPanic(t, nil, func() { b.Splice(0, 4, "") })
	expectPanic(t, nil, func() { b.Splice(-1, 0, "") })
}

func TestBuffer_ReadOnly(t *testing.T) {
	released := 0
	b := NewReadOnlyBuffer([]byte("mapped"), func([]byte) { released++ })

	if !b.ReadOnly() {
		t.Fatal("expected read-only buffer")
	}
	expectPanic(t, ErrReadOnly, func() { b.AppendString("x") })
	expectPanic(t, ErrReadOnly, func() { b.Truncate(0) })
	expectPanic(t, ErrReadOnly, func() { b.Splice(0, 1, "M") })

	b.free()
	if released != 1 {
		t.Errorf("release called %d times, expected 1", released)
	}
}

func TestBuffer_ReleaseExactlyOnce(t *testing.T) {
	var got []byte
	calls := 0
	b := NewBufferWithRelease([]byte("payload"), func(p []byte) {
		calls++
		got = p
	})

	b.free()
	if calls != 1 {
		t.Fatalf("release called %d times, expected 1", calls)
	}
	if string(got) != "payload" {
		t.Errorf("release received %q, expected %q", got, "payload")
	}
	if b.Bytes() != nil {
		t.Error("released buffer should not expose its bytes")
	}

	expectPanic(t, ErrDoubleRelease, b.free)
	expectPanic(t, ErrDoubleRelease, func() { b.AppendString("late") })
}

func TestBuffer_GrowHandsOldBytesToRelease(t *testing.T) {
	var released []byte
	b := NewBufferWithRelease(make([]byte, 2, 2), func(p []byte) { released = p })

	b.AppendString("grow")
	if released == nil || len(released) != 2 {
		t.Fatalf("expected original bytes released on growth, got %v", released)
	}

	released = nil
	b.free()
	if released != nil {
		t.Error("release should only run once, at growth")
	}
}

func TestMetrics_Lifecycle(t *testing.T) {
	before := ReadMetrics()

	b := Alloc(0, Size32)
	b.Append(make([]byte, b.Cap()))
	b.AppendString("x")
	mid := ReadMetrics().Sub(before)
	if mid.Allocs != 1 || mid.Grows != 1 || mid.LiveBuffers != 1 {
		t.Errorf("after alloc+grow: %+v", mid)
	}

	b.free()
	d := ReadMetrics().Sub(before)
	if d.Releases != 1 || d.LiveBuffers != 0 || d.LiveBytes != 0 {
		t.Errorf("after free: %+v", d)
	}
}

func TestMetrics_PoolHitRate(t *testing.T) {
	if r := (Metrics{}).PoolHitRate(); r != 0 {
		t.Errorf("PoolHitRate() of empty metrics = %v, expected 0", r)
	}
	m := Metrics{PoolGets: 4, PoolMisses: 1}
	if r := m.PoolHitRate(); r != 0.75 {
		t.Errorf("PoolHitRate() = %v, expected 0.75", r)
	}
}
