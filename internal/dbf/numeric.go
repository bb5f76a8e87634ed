package dbf

import "bytes"

// CleanNumeric repairs the malformed numeric values found in older years of
// the archive: zero padding, embedded NUL and '*' fill, and values that are
// nothing but a decimal point.
//
// Surrounding whitespace is trimmed first, then runs of NUL and '*' at both
// ends, then leading zeros. Trailing zeros are only stripped after a decimal
// point so that integers keep their magnitude: "100" stays 100, not 1. A
// value reduced to nothing or to a bare point by zero stripping becomes "0". A value that was blank to
// begin with stays blank and decodes as NULL.
func CleanNumeric(data []byte) []byte {
	v := bytes.Trim(bytes.TrimSpace(data), "*\x00")
	if len(v) == 0 {
		return v
	}

	point := bytes.IndexByte(v, '.') >= 0
	v = bytes.TrimLeft(v, "0")
	if point {
		v = bytes.TrimRight(v, "0")
	}
	if len(v) == 0 || bytes.Equal(v, []byte(".")) {
		return []byte("0")
	}
	return v
}
