package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/imstr/internal/imstr"
	"github.com/dshills/imstr/internal/storage"
)

func pairs[H storage.Handle[H]](fields []Field[H]) [][2]string {
	out := make([][2]string, len(fields))
	for i, f := range fields {
		out[i] = [2]string{f.Key.AsText(), f.Value.AsText()}
	}
	return out
}

func TestParseFields(t *testing.T) {
	tests := []struct {
		name   string
		record string
		opts   FieldOptions
		want   [][2]string
	}{
		{"empty", "", FieldOptions{}, [][2]string{}},
		{"blank", "   ", FieldOptions{}, [][2]string{}},
		{"whitespace", "level=info  msg=started", FieldOptions{}, [][2]string{{"level", "info"}, {"msg", "started"}}},
		{"quoted", `msg="hello world" n=1`, FieldOptions{}, [][2]string{{"msg", "hello world"}, {"n", "1"}}},
		{"empty value", "a= b=2", FieldOptions{}, [][2]string{{"a", ""}, {"b", "2"}}},
		{"comma", "a=1,b=two words,c=", FieldOptions{Delimiter: ","}, [][2]string{{"a", "1"}, {"b", "two words"}, {"c", ""}}},
		{"comma quoted", `a="x,y",b=2`, FieldOptions{Delimiter: ","}, [][2]string{{"a", "x,y"}, {"b", "2"}}},
		{"trim", " a = 1 ; b =  \"q\" ", FieldOptions{Delimiter: ";", TrimSpace: true}, [][2]string{{"a", "1"}, {"b", "q"}}},
		{"trailing delimiter", "a=1;", FieldOptions{Delimiter: ";"}, [][2]string{{"a", "1"}}},
		{"unicode", "名前=値", FieldOptions{}, [][2]string{{"名前", "値"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := imstr.NewShared(tt.record)
			defer rec.Release()

			fields, err := ParseFields(rec, tt.opts)
			require.NoError(t, err)
			defer ReleaseFields(fields)
			assert.Equal(t, tt.want, pairs(fields))
			for _, f := range fields {
				assert.True(t, f.Key.SharesStorage(rec))
			}
		})
	}
}

func TestParseFields_Errors(t *testing.T) {
	tests := []struct {
		name   string
		record string
		opts   FieldOptions
		msg    string
		offset int
	}{
		{"no equals", "key", FieldOptions{}, "expected '=' after key", 3},
		{"no key", "=v", FieldOptions{}, "expected key", 0},
		{"unterminated", `a="open`, FieldOptions{}, "unterminated quoted value", 3},
		{"junk after quote", `a="x"y`, FieldOptions{}, "expected white space after value", 5},
		{"missing delimiter", `a="x" b=1`, FieldOptions{Delimiter: ","}, `expected "," after value`, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := imstr.NewShared(tt.record)
			defer rec.Release()

			fields, err := ParseFields(rec, tt.opts)
			assert.Nil(t, fields)
			var syn *SyntaxError
			require.ErrorAs(t, err, &syn)
			assert.Equal(t, tt.msg, syn.Msg)
			assert.Equal(t, tt.offset, syn.Offset)
			assert.Equal(t, 1, rec.RefCount(), "failed parse must release its tokens")
		})
	}
}
