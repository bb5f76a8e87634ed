// Package dbftest builds small FoxPro tables and catalogs for tests.
package dbftest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Field describes one column of a test table.
type Field struct {
	Name     string
	Type     byte
	Length   int
	Decimals int
}

// C returns a character field.
func C(name string, length int) Field { return Field{Name: name, Type: 'C', Length: length} }

// N returns a numeric field.
func N(name string, length, decimals int) Field {
	return Field{Name: name, Type: 'N', Length: length, Decimals: decimals}
}

// Table is a test table. Values are written as text: numeric values are
// right-aligned and everything else is left-aligned within the field.
type Table struct {
	Fields  []Field
	Rows    [][]string
	Deleted map[int]bool
}

// Bytes encodes t in Visual FoxPro layout.
func (t Table) Bytes() []byte {
	recLen := 1
	for _, f := range t.Fields {
		recLen += f.Length
	}
	hdrLen := 32 + 32*len(t.Fields) + 1

	var b bytes.Buffer
	hdr := make([]byte, 32)
	hdr[0] = 0x30
	hdr[1], hdr[2], hdr[3] = 117, 6, 30
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(t.Rows)))
	binary.LittleEndian.PutUint16(hdr[8:10], uint16(hdrLen))
	binary.LittleEndian.PutUint16(hdr[10:12], uint16(recLen))
	b.Write(hdr)

	for _, f := range t.Fields {
		d := make([]byte, 32)
		copy(d[:11], f.Name)
		d[11] = f.Type
		d[16] = byte(f.Length)
		d[17] = byte(f.Decimals)
		b.Write(d)
	}
	b.WriteByte(0x0D)

	for i, row := range t.Rows {
		if t.Deleted[i] {
			b.WriteByte('*')
		} else {
			b.WriteByte(' ')
		}
		for j, f := range t.Fields {
			var v string
			if j < len(row) {
				v = row[j]
			}
			b.WriteString(pad(f, v))
		}
	}
	b.WriteByte(0x1A)
	return b.Bytes()
}

func pad(f Field, v string) string {
	if len(v) >= f.Length {
		return v[:f.Length]
	}
	fill := strings.Repeat(" ", f.Length-len(v))
	if f.Type == 'N' || f.Type == 'F' {
		return fill + v
	}
	return v + fill
}

// CatalogTable lists the full field names of one table in a catalog.
type CatalogTable struct {
	Name   string
	Fields []string
}

// Catalog encodes tables as a byte stream resembling a database container:
// the "Table" and "Field" strings separated by binary noise.
func Catalog(tables ...CatalogTable) []byte {
	var b bytes.Buffer
	b.Write([]byte{0x03, 0x00, 0x00, 0x7f})
	for _, t := range tables {
		b.WriteString("Table " + t.Name)
		b.Write([]byte{0x00, 0x01, 0xff})
		for _, f := range t.Fields {
			b.WriteString("Field " + f)
			b.Write([]byte{0x00, 0x02})
		}
	}
	return b.Bytes()
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(tb testing.TB, path string, data []byte) {
	tb.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
}
