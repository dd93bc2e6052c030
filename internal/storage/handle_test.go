package storage

import (
	"sync"
	"testing"
)

// handleContract runs the checks every strategy must satisfy.
func handleContract[H Handle[H]](t *testing.T, sharing bool) {
	t.Helper()

	var zero H
	if zero.Valid() || zero.Count() != 0 || zero.View() != nil {
		t.Fatal("zero handle should be empty")
	}
	zero.Drop()
	if c := zero.Clone(); c.Valid() {
		t.Fatal("clone of zero handle should be empty")
	}
	if _, ok := zero.TryUniqueMut(); ok {
		t.Fatal("zero handle should not grant mutation")
	}

	released := 0
	h := zero.Adopt(NewBufferWithRelease([]byte("hello"), func([]byte) { released++ }))
	if !h.Valid() || h.Count() != 1 {
		t.Fatalf("adopted handle: Valid=%v Count=%d", h.Valid(), h.Count())
	}
	if got := string(h.View()); got != "hello" {
		t.Fatalf("View() = %q, expected %q", got, "hello")
	}
	if !h.Same(h) {
		t.Error("handle should be Same as itself")
	}

	c := h.Clone()
	if got := string(c.View()); got != "hello" {
		t.Fatalf("clone View() = %q, expected %q", got, "hello")
	}
	if sharing {
		if h.Count() != 2 || !h.Same(c) {
			t.Errorf("after Clone: Count=%d Same=%v", h.Count(), h.Same(c))
		}
		if _, ok := h.TryUniqueMut(); ok {
			t.Error("shared handle should not grant mutation")
		}
	} else {
		if h.Same(c) {
			t.Error("deep clone should not share storage")
		}
		if _, ok := h.TryUniqueMut(); !ok {
			t.Error("unshared handle should grant mutation")
		}
	}

	c.Drop()
	if released != 0 {
		t.Errorf("original buffer released with a live handle")
	}

	buf, ok := h.TryUniqueMut()
	if !ok {
		t.Fatal("sole handle should grant mutation")
	}
	buf.AppendString(" world")
	if got := string(h.View()); got != "hello world" {
		t.Errorf("View() after mutation = %q, expected %q", got, "hello world")
	}

	h.Drop()
	if released != 1 {
		t.Errorf("release ran %d times, expected 1", released)
	}
}

func TestAtomic_Contract(t *testing.T) { handleContract[Atomic](t, true) }
func TestLocal_Contract(t *testing.T)  { handleContract[Local](t, true) }
func TestCloned_Contract(t *testing.T) { handleContract[Cloned](t, false) }

func TestAtomic_DoubleDrop(t *testing.T) {
	h := Atomic{}.Adopt(NewBuffer([]byte("x")))
	h.Drop()
	expectPanic(t, ErrDoubleRelease, h.Drop)
}

func TestLocal_DoubleDrop(t *testing.T) {
	h := Local{}.Adopt(NewBuffer([]byte("x")))
	h.Drop()
	expectPanic(t, ErrDoubleRelease, h.Drop)
}

func TestCloned_DoubleDrop(t *testing.T) {
	h := Cloned{}.Adopt(NewBuffer([]byte("x")))
	h.Drop()
	if h.Count() != 0 {
		t.Errorf("Count() after Drop = %d, expected 0", h.Count())
	}
	expectPanic(t, ErrDoubleRelease, h.Drop)
}

func TestTryUniqueMut_ReadOnly(t *testing.T) {
	data := []byte("mapped")
	a := Atomic{}.Adopt(NewReadOnlyBuffer(data, nil))
	l := Local{}.Adopt(NewReadOnlyBuffer(data, nil))
	c := Cloned{}.Adopt(NewReadOnlyBuffer(data, nil))
	defer a.Drop()
	defer l.Drop()
	defer c.Drop()

	if _, ok := a.TryUniqueMut(); ok {
		t.Error("Atomic: read-only buffer granted mutation")
	}
	if _, ok := l.TryUniqueMut(); ok {
		t.Error("Local: read-only buffer granted mutation")
	}
	if _, ok := c.TryUniqueMut(); ok {
		t.Error("Cloned: read-only buffer granted mutation")
	}

	// A deep clone of a read-only buffer is an ordinary writable buffer.
	dup := c.Clone()
	defer dup.Drop()
	if _, ok := dup.TryUniqueMut(); !ok {
		t.Error("clone of read-only buffer should be writable")
	}
}

func TestAtomic_ConcurrentCloneDrop(t *testing.T) {
	released := 0
	h := Atomic{}.Adopt(NewBufferWithRelease([]byte("shared"), func([]byte) { released++ }))

	const goroutines = 16
	const iterations = 1000

	var wg sync.WaitGroup
	for range goroutines {
		c := h.Clone()
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer c.Drop()
			for range iterations {
				cc := c.Clone()
				if string(cc.View()) != "shared" {
					t.Error("unexpected contents")
				}
				cc.Drop()
			}
		}()
	}
	wg.Wait()

	if h.Count() != 1 {
		t.Fatalf("Count() = %d, expected 1", h.Count())
	}
	if released != 0 {
		t.Fatal("buffer released with a live handle")
	}
	h.Drop()
	if released != 1 {
		t.Errorf("release ran %d times, expected 1", released)
	}
}

func TestAtomic_ConcurrentLastDrop(t *testing.T) {
	var mu sync.Mutex
	released := 0
	h := Atomic{}.Adopt(NewBufferWithRelease([]byte("x"), func([]byte) {
		mu.Lock()
		released++
		mu.Unlock()
	}))

	const n = 64
	handles := make([]Atomic, n)
	handles[0] = h
	for i := 1; i < n; i++ {
		handles[i] = h.Clone()
	}

	var wg sync.WaitGroup
	for _, c := range handles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Drop()
		}()
	}
	wg.Wait()

	if released != 1 {
		t.Errorf("release ran %d times, expected exactly 1", released)
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"", StrategyAtomic, false},
		{"atomic", StrategyAtomic, false},
		{"local", StrategyLocal, false},
		{"cloned", StrategyCloned, false},
		{"arc", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStrategy(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStrategy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseStrategy(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
