package scan

import (
	"unicode"

	"github.com/dshills/imstr/internal/imstr"
	"github.com/dshills/imstr/internal/storage"
)

// Field is one key=value pair of a record. Key and Value share the record's
// buffer.
type Field[H storage.Handle[H]] struct {
	Key   *imstr.String[H]
	Value *imstr.String[H]
}

// Release releases the key and value.
func (f Field[H]) Release() {
	f.Key.Release()
	f.Value.Release()
}

// ReleaseFields releases every field in fields.
func ReleaseFields[H storage.Handle[H]](fields []Field[H]) {
	for _, f := range fields {
		f.Release()
	}
}

// FieldOptions control how records are split.
type FieldOptions struct {
	// Delimiter separates pairs. Empty means any run of white space.
	Delimiter string
	// TrimSpace trims white space around keys and values.
	TrimSpace bool
}

// ParseFields parses a record of key=value pairs. A value may be enclosed in
// double quotes, in which case it may contain the delimiter. Quoted values
// have no escape sequences.
func ParseFields[H storage.Handle[H]](record *imstr.String[H], opts FieldOptions) ([]Field[H], error) {
	p := fieldParser[H]{sc: New(record), opts: opts}
	fields, err := p.parse()
	if err != nil {
		ReleaseFields(fields)
		return nil, err
	}
	return fields, nil
}

type fieldParser[H storage.Handle[H]] struct {
	sc   *Scanner[H]
	opts FieldOptions
}

func (p *fieldParser[H]) atDelim() bool {
	if p.opts.Delimiter == "" {
		r, ok := p.sc.Peek()
		return ok && unicode.IsSpace(r)
	}
	return p.sc.HasPrefix(p.opts.Delimiter)
}

func (p *fieldParser[H]) parse() ([]Field[H], error) {
	sc := p.sc
	var fields []Field[H]
	for {
		if p.opts.Delimiter == "" {
			sc.SkipSpace()
		}
		if sc.EOF() {
			return fields, nil
		}

		f, err := p.field()
		if err != nil {
			return fields, err
		}
		fields = append(fields, f)

		if sc.EOF() {
			return fields, nil
		}
		if p.opts.Delimiter == "" {
			if sc.SkipSpace() == 0 {
				return fields, sc.Errorf("expected white space after value")
			}
		} else if !sc.Tag(p.opts.Delimiter) {
			return fields, sc.Errorf("expected %q after value", p.opts.Delimiter)
		}
	}
}

func (p *fieldParser[H]) field() (Field[H], error) {
	sc := p.sc
	start := sc.Pos()
	for !sc.EOF() && !p.atDelim() && !sc.HasPrefix("=") {
		sc.Next()
	}
	key := p.trim(sc.Since(start))
	if key.IsEmpty() {
		key.Release()
		return Field[H]{}, sc.Errorf("expected key")
	}
	if !sc.Tag("=") {
		key.Release()
		return Field[H]{}, sc.Errorf("expected '=' after key")
	}

	if p.opts.TrimSpace {
		for !p.atDelim() {
			r, ok := sc.Peek()
			if !ok || !unicode.IsSpace(r) {
				break
			}
			sc.Next()
		}
	}

	if sc.Tag(`"`) {
		value, ok := sc.TakeUntil(`"`)
		if !ok {
			key.Release()
			return Field[H]{}, sc.Errorf("unterminated quoted value")
		}
		sc.Tag(`"`)
		if p.opts.TrimSpace {
			sc.TakeWhile(func(r rune) bool { return unicode.IsSpace(r) && !p.atDelim() }).Release()
		}
		return Field[H]{Key: key, Value: value}, nil
	}

	start = sc.Pos()
	for !sc.EOF() && !p.atDelim() {
		sc.Next()
	}
	return Field[H]{Key: key, Value: p.trim(sc.Since(start))}, nil
}

func (p *fieldParser[H]) trim(s *imstr.String[H]) *imstr.String[H] {
	if !p.opts.TrimSpace {
		return s
	}
	t := s.TrimSpace()
	s.Release()
	return t
}
