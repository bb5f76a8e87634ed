// Package dbc recovers table and field names from the FoxPro database
// container (.DBC) shipped with each year of the FERC Form 1 archive.
//
// The container format is undocumented. Names are recovered by scanning the
// file for printable runs, much like the Unix strings(1) tool, and then
// pairing the catalog's field list for each table with the truncated field
// names found in that table's data file.
package dbc

import (
	"fmt"
	"iter"
	"os"
	"unicode/utf8"
)

// DefaultMinLength is the shortest run Strings reports unless told otherwise.
const DefaultMinLength = 4

// Strings returns the maximal runs of printable ASCII in buf that are at
// least minLen characters long, in scan order. A run still open at the end
// of buf is reported too.
//
// Printable means letters, digits, punctuation, space and the whitespace
// controls \t \n \v \f \r. Bytes that do not decode as UTF-8 are dropped
// without ending the current run; decodable runes outside that set end it.
//
// The sequence is lazy: scanning stops as soon as the consumer does.
func Strings(buf []byte, minLen int) iter.Seq[string] {
	return func(yield func(string) bool) {
		run := make([]byte, 0, 64)
		for i := 0; i < len(buf); {
			b := buf[i]
			if b < utf8.RuneSelf {
				i++
				if isPrintable(b) {
					run = append(run, b)
					continue
				}
			} else {
				r, size := utf8.DecodeRune(buf[i:])
				i += size
				if r == utf8.RuneError && size == 1 {
					continue
				}
			}
			if len(run) >= minLen && !yield(string(run)) {
				return
			}
			run = run[:0]
		}
		if len(run) >= minLen {
			yield(string(run))
		}
	}
}

// ReadFile loads the catalog at path and returns its printable runs.
func ReadFile(path string, minLen int) (iter.Seq[string], error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Strings(buf, minLen), nil
}

func isPrintable(b byte) bool {
	switch {
	case b >= 0x20 && b <= 0x7e:
		return true
	case b >= '\t' && b <= '\r':
		return true
	}
	return false
}
