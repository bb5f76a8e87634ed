// Package dbf reads the fixed-record Visual FoxPro tables (.DBF) that hold
// one table's rows for one year of the FERC Form 1 archive.
//
// Only the structures observed in that archive are handled: a 32-byte
// header, 32-byte field descriptors terminated by 0x0D, and fixed-length
// records each prefixed by a deletion flag. Memo contents are not read.
package dbf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

const (
	headerSize      = 32
	descriptorSize  = 32
	descriptorEnd   = 0x0D
	fileEnd         = 0x1A
	deletedFlag     = '*'
	maxFieldNameLen = 11
)

var (
	ErrCorruptHeader   = errors.New("corrupt dbf header")
	ErrUnsupportedType = errors.New("unsupported dbf field type")
	ErrRecordLength    = errors.New("record length does not match fields")
)

// Header is the fixed 32-byte table prefix.
type Header struct {
	Version    byte
	Updated    time.Time
	NumRecords int
	HeaderLen  int
	RecordLen  int
}

// Field is one column descriptor. Offset is the byte position of the value
// inside a record, counting the leading deletion flag.
type Field struct {
	Name     string
	Type     byte
	Length   int
	Decimals int
	Offset   int
}

func (f Field) String() string {
	return fmt.Sprintf("%s %c(%d,%d)", f.Name, f.Type, f.Length, f.Decimals)
}

// readHeader consumes exactly HeaderLen bytes from r and returns the
// header with its field descriptors.
func readHeader(r io.Reader) (Header, []Field, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, nil, fmt.Errorf("%w: %v", ErrCorruptHeader, err)
	}

	h := Header{
		Version:    buf[0],
		NumRecords: int(binary.LittleEndian.Uint32(buf[4:8])),
		HeaderLen:  int(binary.LittleEndian.Uint16(buf[8:10])),
		RecordLen:  int(binary.LittleEndian.Uint16(buf[10:12])),
	}
	if buf[2] >= 1 && buf[2] <= 12 && buf[3] >= 1 && buf[3] <= 31 {
		h.Updated = time.Date(1900+int(buf[1]), time.Month(buf[2]), int(buf[3]), 0, 0, 0, 0, time.UTC)
	}
	if h.HeaderLen <= headerSize || h.RecordLen < 1 {
		return Header{}, nil, fmt.Errorf("%w: header length %d, record length %d",
			ErrCorruptHeader, h.HeaderLen, h.RecordLen)
	}

	rest := make([]byte, h.HeaderLen-headerSize)
	if _, err := io.ReadFull(r, rest); err != nil {
		return Header{}, nil, fmt.Errorf("%w: descriptors: %v", ErrCorruptHeader, err)
	}

	var fields []Field
	offset := 1
	for pos := 0; pos < len(rest) && rest[pos] != descriptorEnd; pos += descriptorSize {
		if pos+descriptorSize > len(rest) {
			return Header{}, nil, fmt.Errorf("%w: truncated field descriptor", ErrCorruptHeader)
		}
		d := rest[pos : pos+descriptorSize]
		f := Field{
			Name:     fieldName(d[:maxFieldNameLen]),
			Type:     d[11],
			Length:   int(d[16]),
			Decimals: int(d[17]),
			Offset:   offset,
		}
		offset += f.Length
		fields = append(fields, f)
	}

	if offset > h.RecordLen {
		return Header{}, nil, fmt.Errorf("%w: fields cover %d bytes, header says %d",
			ErrRecordLength, offset, h.RecordLen)
	}
	return h, fields, nil
}

func fieldName(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
