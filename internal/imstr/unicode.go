package imstr

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RuneCount returns the number of characters in s.
func (s *String[H]) RuneCount() int {
	return utf8.RuneCount(s.bytes())
}

// GraphemeCount returns the number of user-perceived characters in s.
func (s *String[H]) GraphemeCount() int {
	return uniseg.GraphemeClusterCount(s.AsText())
}

// Width returns the monospace display width of s.
func (s *String[H]) Width() int {
	return uniseg.StringWidth(s.AsText())
}

// IsNormalized reports whether s is already in the given normal form.
func (s *String[H]) IsNormalized(form norm.Form) bool {
	return form.IsNormal(s.bytes())
}

// Normalize converts s to the given normal form. A string that is already
// normalized is left untouched and keeps sharing its buffer.
func (s *String[H]) Normalize(form norm.Form) {
	s.copyCheck()
	if form.IsNormal(s.bytes()) {
		return
	}
	s.setText(form.String(s.AsText()))
}

// Transform replaces s with the output of t. On error, or if t produces
// invalid UTF-8, s is unchanged.
func (s *String[H]) Transform(t transform.Transformer) error {
	s.copyCheck()
	out, _, err := transform.String(t, s.AsText())
	if err != nil {
		return err
	}
	if err := validateString("Transform", out); err != nil {
		return err
	}
	if out == s.AsText() {
		return nil
	}
	s.setText(out)
	return nil
}

// ToUpper maps s to upper case using language-neutral rules.
func (s *String[H]) ToUpper() {
	s.CaseMap(cases.Upper(language.Und))
}

// ToLower maps s to lower case using language-neutral rules.
func (s *String[H]) ToLower() {
	s.CaseMap(cases.Lower(language.Und))
}

// CaseMap applies c to s. Use it for language-specific mappings such as
// cases.Upper(language.Turkish).
func (s *String[H]) CaseMap(c cases.Caser) {
	// Casers only fail on invalid input, which s never is.
	_ = s.Transform(c)
}

// TruncateGraphemes shortens s to its first n grapheme clusters.
func (s *String[H]) TruncateGraphemes(n int) {
	s.copyCheck()
	if n < 0 {
		n = 0
	}
	text := s.AsText()
	rest := text
	state := -1
	for i := 0; i < n && len(rest) > 0; i++ {
		_, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
	}
	s.truncate(len(text) - len(rest))
}
