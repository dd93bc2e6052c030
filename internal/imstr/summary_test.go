package imstr

import (
	"errors"
	"testing"
)

func TestComputeSummary(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Summary
	}{
		{"empty", "", Summary{Flags: FlagASCII}},
		{
			"ascii lines",
			"ab\ncde\n\tf",
			Summary{
				Bytes: 9, Runes: 9, UTF16Units: 9, Lines: 2,
				LongestLine: 3, FirstLineLen: 2, LastLineLen: 2,
				Flags: FlagASCII | FlagHasNewlines | FlagHasTabs,
			},
		},
		{
			"wide",
			"\u65e5\U0001f44b",
			Summary{
				Bytes: 7, Runes: 2, UTF16Units: 3,
				LongestLine: 7, FirstLineLen: 7, LastLineLen: 7,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeSummary(tt.text); got != tt.want {
				t.Errorf("ComputeSummary(%q) = %+v, expected %+v", tt.text, got, tt.want)
			}
		})
	}

	s := NewShared("x\ny")
	defer s.Release()
	if s.Summary().Lines != 1 {
		t.Errorf("Summary().Lines = %d", s.Summary().Lines)
	}
}

func TestOffsetPointConversion(t *testing.T) {
	s := NewShared("ab\n\u00e7d\n")
	defer s.Release()

	tests := []struct {
		off   int
		point Point
	}{
		{0, Point{0, 0}},
		{2, Point{0, 2}},
		{3, Point{1, 0}},
		{5, Point{1, 2}},
		{7, Point{2, 0}},
	}

	for _, tt := range tests {
		p, err := s.OffsetToPoint(tt.off)
		if err != nil || p != tt.point {
			t.Errorf("OffsetToPoint(%d) = %+v, %v; expected %+v", tt.off, p, err, tt.point)
		}
		off, err := s.PointToOffset(tt.point)
		if err != nil || off != tt.off {
			t.Errorf("PointToOffset(%+v) = %d, %v; expected %d", tt.point, off, err, tt.off)
		}
	}
}

func TestOffsetPointConversion_Errors(t *testing.T) {
	s := NewShared("ab\n\u00e7d")
	defer s.Release()

	if _, err := s.OffsetToPoint(4); !errors.Is(err, ErrNotCharBoundary) {
		t.Errorf("OffsetToPoint(4): %v", err)
	}
	if _, err := s.OffsetToPoint(99); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("OffsetToPoint(99): %v", err)
	}

	tests := []struct {
		p      Point
		target error
	}{
		{Point{0, 3}, ErrOutOfBounds},
		{Point{2, 0}, ErrOutOfBounds},
		{Point{-1, 0}, ErrOutOfBounds},
		{Point{1, 1}, ErrNotCharBoundary},
	}
	for _, tt := range tests {
		if _, err := s.PointToOffset(tt.p); !errors.Is(err, tt.target) {
			t.Errorf("PointToOffset(%+v) error = %v, expected %v", tt.p, err, tt.target)
		}
	}
}
