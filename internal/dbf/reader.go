package dbf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
)

// Record is one decoded row, aligned with Reader.Fields.
type Record []any

// Reader streams the live records of a table.
type Reader struct {
	Header
	Fields []Field

	r      *bufio.Reader
	closer io.Closer
	parser *Parser
	used   bool
}

// NewReader reads the header from r. Records are read lazily from the
// remaining bytes.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	h, fields, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	return &Reader{
		Header: h,
		Fields: fields,
		r:      br,
		parser: NewParser(opts...),
	}, nil
}

// Open opens the table at path. The caller must Close it.
func Open(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rd, err := NewReader(f, opts...)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rd.closer = f
	return rd, nil
}

// ReadFields returns the field descriptors of the table at path without
// reading any records.
func ReadFields(path string) ([]Field, error) {
	rd, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rd.Close()
	return rd.Fields, nil
}

// Close releases the underlying file, if any.
func (rd *Reader) Close() error {
	if rd.closer == nil {
		return nil
	}
	return rd.closer.Close()
}

// FieldNames returns the physical field names in record order.
func (rd *Reader) FieldNames() []string {
	names := make([]string, len(rd.Fields))
	for i, f := range rd.Fields {
		names[i] = f.Name
	}
	return names
}

// Records yields every record not flagged as deleted. Iteration ends after
// NumRecords records, at the end-of-file marker, or at the first error.
// A Reader can be iterated once.
func (rd *Reader) Records() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		if rd.used {
			yield(nil, errors.New("dbf: records already read"))
			return
		}
		rd.used = true

		buf := make([]byte, rd.RecordLen)
		for n := 0; n < rd.NumRecords; n++ {
			if _, err := io.ReadFull(rd.r, buf[:1]); err != nil {
				if err == io.EOF {
					return
				}
				yield(nil, fmt.Errorf("record %d: %w", n, err))
				return
			}
			if buf[0] == fileEnd {
				return
			}
			if _, err := io.ReadFull(rd.r, buf[1:]); err != nil {
				yield(nil, fmt.Errorf("record %d: %w", n, err))
				return
			}
			if buf[0] == deletedFlag {
				continue
			}

			rec := make(Record, len(rd.Fields))
			for i, f := range rd.Fields {
				v, err := rd.parser.Parse(f, buf[f.Offset:f.Offset+f.Length])
				if err != nil {
					yield(nil, fmt.Errorf("record %d: %w", n, err))
					return
				}
				rec[i] = v
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}
