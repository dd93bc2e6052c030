// Package jsonview queries and edits JSON documents held in imstr strings.
//
// Query results are slices of the document's buffer whenever the matched
// text appears verbatim in the document. Edits rewrite only the bytes that
// changed, so a uniquely held document is updated in place.
package jsonview

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/imstr/internal/imstr"
	"github.com/dshills/imstr/internal/storage"
)

// ErrInvalidJSON indicates a document that failed validation.
var ErrInvalidJSON = errors.New("invalid JSON")

// Valid reports whether doc is well-formed JSON.
func Valid[H storage.Handle[H]](doc *imstr.String[H]) bool {
	return gjson.Valid(doc.AsText())
}

// Get returns the raw JSON text of the value at path.
// The caller owns the result.
func Get[H storage.Handle[H]](doc *imstr.String[H], path string) (*imstr.String[H], bool) {
	r := gjson.Get(doc.AsText(), path)
	if !r.Exists() {
		return nil, false
	}
	return view(doc, r.Index, r.Raw), true
}

// GetString returns the decoded value of the JSON string at path.
// Strings without escape sequences are returned without copying.
func GetString[H storage.Handle[H]](doc *imstr.String[H], path string) (*imstr.String[H], bool) {
	r := gjson.Get(doc.AsText(), path)
	if r.Type != gjson.String {
		return nil, false
	}
	return stringValue(doc, r), true
}

// ForEach calls fn for each element of the array or object at path, or of
// the document itself when path is empty. For arrays key is nil.
// Iteration stops when fn returns false. fn owns key and value.
func ForEach[H storage.Handle[H]](doc *imstr.String[H], path string, fn func(key, value *imstr.String[H]) bool) {
	var r gjson.Result
	if path == "" {
		r = gjson.Parse(doc.AsText())
	} else {
		r = gjson.Get(doc.AsText(), path)
	}
	r.ForEach(func(k, v gjson.Result) bool {
		var key *imstr.String[H]
		if k.Type == gjson.String {
			key = stringValue(doc, k)
		}
		return fn(key, view(doc, v.Index, v.Raw))
	})
}

// Set replaces the value at path with value, encoded as JSON.
// doc is left unchanged on error.
func Set[H storage.Handle[H]](doc *imstr.String[H], path string, value any) error {
	out, err := sjson.Set(doc.AsText(), path, value)
	if err != nil {
		return fmt.Errorf("jsonview: set %s: %w", path, err)
	}
	return rewrite(doc, out)
}

// SetRaw replaces the value at path with raw, which must be valid JSON.
func SetRaw[H storage.Handle[H]](doc *imstr.String[H], path, raw string) error {
	if !gjson.Valid(raw) {
		return fmt.Errorf("jsonview: set %s: %w", path, ErrInvalidJSON)
	}
	out, err := sjson.SetRaw(doc.AsText(), path, raw)
	if err != nil {
		return fmt.Errorf("jsonview: set %s: %w", path, err)
	}
	return rewrite(doc, out)
}

// Delete removes the value at path. Deleting a missing path is a no-op.
func Delete[H storage.Handle[H]](doc *imstr.String[H], path string) error {
	out, err := sjson.Delete(doc.AsText(), path)
	if err != nil {
		return fmt.Errorf("jsonview: delete %s: %w", path, err)
	}
	return rewrite(doc, out)
}

// view slices raw out of doc if it occurs verbatim at index, and copies it
// otherwise. gjson reports index 0 when the position is unknown.
func view[H storage.Handle[H]](doc *imstr.String[H], index int, raw string) *imstr.String[H] {
	text := doc.AsText()
	if index >= 0 && index+len(raw) <= len(text) && text[index:index+len(raw)] == raw {
		if v, err := doc.TrySlice(index, index+len(raw)); err == nil {
			return v
		}
	}
	return imstr.FromString[H](raw)
}

func stringValue[H storage.Handle[H]](doc *imstr.String[H], r gjson.Result) *imstr.String[H] {
	raw := r.Raw
	if len(raw) >= 2 && raw[1:len(raw)-1] == r.Str {
		return view(doc, r.Index+1, r.Str)
	}
	return imstr.FromString[H](r.Str)
}

// rewrite replaces doc with out, touching only the differing middle span.
func rewrite[H storage.Handle[H]](doc *imstr.String[H], out string) error {
	old := doc.AsText()
	if old == out {
		return nil
	}

	p := commonPrefix(old, out)
	for p > 0 && p < len(old) && !utf8.RuneStart(old[p]) {
		p--
	}
	s := commonSuffix(old[p:], out[p:])
	for s > 0 && !utf8.RuneStart(old[len(old)-s]) {
		s--
	}
	return doc.TryReplaceRange(p, len(old)-s, out[p:len(out)-s])
}

func commonPrefix(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func commonSuffix(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	return i
}
