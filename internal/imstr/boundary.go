package imstr

import "unicode/utf8"

// isUTF8Start reports whether b begins a UTF-8 sequence.
// Continuation bytes have the form 10xxxxxx.
func isUTF8Start(b byte) bool {
	return b&0xC0 != 0x80
}

// isCharBoundary reports whether off is a scalar-value boundary of buf:
// 0, len(buf), or the index of a byte that is not a continuation byte.
func isCharBoundary(buf []byte, off int) bool {
	if off == 0 || off == len(buf) {
		return true
	}
	if off < 0 || off > len(buf) {
		return false
	}
	return isUTF8Start(buf[off])
}

// checkRange validates a view-relative range [from, to) for a view of
// length n whose bytes are view. Boundaries are checked against whole,
// the full underlying buffer, at absolute offsets base+from and base+to.
func checkRange(op string, whole []byte, base, n, from, to int) error {
	if from < 0 || to < from || to > n {
		return rangeErr(op, from, to, n, ErrOutOfBounds)
	}
	if !isCharBoundary(whole, base+from) || !isCharBoundary(whole, base+to) {
		return rangeErr(op, from, to, n, ErrNotCharBoundary)
	}
	return nil
}

// checkOffset validates a single view-relative offset.
func checkOffset(op string, whole []byte, base, n, off int) error {
	return checkRange(op, whole, base, n, off, off)
}

// validate reports an *EncodingError for the first invalid byte of p.
func validate(op string, p []byte) error {
	if utf8.Valid(p) {
		return nil
	}
	return &EncodingError{Op: op, Offset: firstInvalid(p), Err: ErrInvalidEncoding}
}

func validateString(op string, s string) error {
	if utf8.ValidString(s) {
		return nil
	}
	return &EncodingError{Op: op, Offset: firstInvalid([]byte(s)), Err: ErrInvalidEncoding}
}

// firstInvalid returns the offset of the first byte that does not start a
// valid encoding, or -1 if p is valid.
func firstInvalid(p []byte) int {
	for i := 0; i < len(p); {
		if p[i] < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRune(p[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

