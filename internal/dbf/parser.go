package dbf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// Hook rewrites the raw bytes of a field before the generic decoder sees
// them. Hooks are registered per field type.
type Hook func([]byte) []byte

// Parser turns raw field bytes into Go values:
//
//	C         string (trailing blanks and NULs removed)
//	D         time.Time (UTC midnight)
//	N, F      int64 when the field has no decimals and the text has no
//	          decimal point, float64 otherwise
//	I         int64
//	B, Y      float64
//	L         bool
//	T         time.Time
//	M, G, P   nil (memo files are not read)
//	0         []byte
//
// Blank values decode to nil.
type Parser struct {
	dec   *encoding.Decoder
	hooks map[byte]Hook
}

// Option configures a Parser.
type Option func(*Parser)

// WithEncoding sets the text encoding of character fields. The default is
// ISO-8859-1.
func WithEncoding(enc encoding.Encoding) Option {
	return func(p *Parser) { p.dec = enc.NewDecoder() }
}

// LookupEncoding resolves an IANA character set name such as
// "windows-1252". An empty name is ISO-8859-1.
func LookupEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		return charmap.ISO8859_1, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("text encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("text encoding %q is not supported", name)
	}
	return enc, nil
}

// WithHook installs h for fields of type typ, replacing any earlier hook.
func WithHook(typ byte, h Hook) Option {
	return func(p *Parser) { p.hooks[typ] = h }
}

// WithNumericHook installs h for both numeric field types, N and F.
func WithNumericHook(h Hook) Option {
	return func(p *Parser) {
		p.hooks['N'] = h
		p.hooks['F'] = h
	}
}

// NewParser returns a parser with the given options applied.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		dec:   charmap.ISO8859_1.NewDecoder(),
		hooks: make(map[byte]Hook),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FieldError describes a value the parser could not decode.
type FieldError struct {
	Field Field
	Value []byte
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: cannot decode %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Parse decodes one field value.
func (p *Parser) Parse(f Field, data []byte) (any, error) {
	raw := data
	if h, ok := p.hooks[f.Type]; ok {
		data = h(data)
	}

	var (
		v   any
		err error
	)
	switch f.Type {
	case 'C':
		v, err = p.parseText(data)
	case 'D':
		v, err = parseDate(data)
	case 'N', 'F':
		v, err = parseNumber(f, raw, data)
	case 'I':
		v, err = parseInt32(data)
	case 'B':
		v, err = parseDouble(data)
	case 'Y':
		v, err = parseCurrency(data)
	case 'L':
		v, err = parseLogical(data)
	case 'T':
		v, err = parseDateTime(data)
	case 'M', 'G', 'P':
		v = nil
	case '0':
		v = bytes.Clone(data)
	default:
		err = ErrUnsupportedType
	}
	if err != nil {
		return nil, &FieldError{Field: f, Value: bytes.Clone(raw), Err: err}
	}
	return v, nil
}

func (p *Parser) parseText(data []byte) (any, error) {
	data = bytes.TrimRight(data, "\x00 ")
	out, err := p.dec.Bytes(data)
	if err != nil {
		return nil, err
	}
	return string(out), nil
}

func parseDate(data []byte) (any, error) {
	s := string(bytes.TrimSpace(data))
	if len(bytes.Trim(data, " 0\x00")) == 0 {
		return nil, nil
	}
	t, err := time.Parse("20060102", s)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func parseNumber(f Field, raw, data []byte) (any, error) {
	data = bytes.Trim(bytes.TrimSpace(data), "*\x00")
	if len(data) == 0 {
		return nil, nil
	}
	s := string(data)
	if f.Decimals == 0 && !bytes.ContainsAny(raw, ".,") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
	}
	v, err := strconv.ParseFloat(string(bytes.Replace(data, []byte(","), []byte("."), 1)), 64)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func parseInt32(data []byte) (any, error) {
	if len(data) != 4 {
		return nil, fmt.Errorf("integer field has %d bytes", len(data))
	}
	return int64(int32(binary.LittleEndian.Uint32(data))), nil
}

func parseDouble(data []byte) (any, error) {
	if len(data) != 8 {
		return nil, fmt.Errorf("double field has %d bytes", len(data))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(data)), nil
}

func parseCurrency(data []byte) (any, error) {
	if len(data) != 8 {
		return nil, fmt.Errorf("currency field has %d bytes", len(data))
	}
	return float64(int64(binary.LittleEndian.Uint64(data))) / 10000, nil
}

func parseLogical(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	switch data[0] {
	case 'T', 't', 'Y', 'y':
		return true, nil
	case 'F', 'f', 'N', 'n':
		return false, nil
	case '?', ' ', 0:
		return nil, nil
	}
	return nil, fmt.Errorf("invalid logical %q", data[0])
}

// julianUnixEpoch is the Julian day number of 1970-01-01.
const julianUnixEpoch = 2440588

func parseDateTime(data []byte) (any, error) {
	if len(data) != 8 {
		return nil, fmt.Errorf("datetime field has %d bytes", len(data))
	}
	day := int64(int32(binary.LittleEndian.Uint32(data[:4])))
	ms := int64(int32(binary.LittleEndian.Uint32(data[4:])))
	if day == 0 && ms == 0 {
		return nil, nil
	}
	sec := (day-julianUnixEpoch)*86400 + ms/1000
	return time.Unix(sec, (ms%1000)*int64(time.Millisecond)).UTC(), nil
}
