package dbf_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/JonMunkholm/ferc1/internal/dbf"
	"github.com/JonMunkholm/ferc1/internal/dbf/dbftest"
)

func fuelTable() dbftest.Table {
	return dbftest.Table{
		Fields: []dbftest.Field{
			dbftest.N("RESPONDENT", 5, 0),
			dbftest.C("PLANT_NAME", 12),
			dbftest.N("FUEL_QUANT", 8, 2),
		},
		Rows: [][]string{
			{"1", "Plant A", "5.00"},
			{"2", "Gone", "1"},
			{"3", "Caf\xe9", "00.0"},
		},
		Deleted: map[int]bool{1: true},
	}
}

func TestReader_Records(t *testing.T) {
	rd, err := dbf.NewReader(bytes.NewReader(fuelTable().Bytes()),
		dbf.WithNumericHook(dbf.CleanNumeric))
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}

	if rd.NumRecords != 3 {
		t.Errorf("NumRecords = %d, want 3", rd.NumRecords)
	}
	if got := rd.FieldNames(); !reflect.DeepEqual(got, []string{"RESPONDENT", "PLANT_NAME", "FUEL_QUANT"}) {
		t.Errorf("FieldNames() = %v", got)
	}

	var got []dbf.Record
	for rec, err := range rd.Records() {
		if err != nil {
			t.Fatalf("Records() error = %v", err)
		}
		got = append(got, rec)
	}

	want := []dbf.Record{
		{int64(1), "Plant A", 5.0},
		{int64(3), "Café", 0.0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("records = %#v, want %#v", got, want)
	}
}

func TestReader_RecordsOnce(t *testing.T) {
	rd, err := dbf.NewReader(bytes.NewReader(fuelTable().Bytes()))
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	for range rd.Records() {
	}
	for _, err := range rd.Records() {
		if err == nil {
			t.Error("second iteration should fail")
		}
	}
}

func TestReader_StopEarly(t *testing.T) {
	rd, err := dbf.NewReader(bytes.NewReader(fuelTable().Bytes()))
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	n := 0
	for range rd.Records() {
		n++
		break
	}
	if n != 1 {
		t.Errorf("read %d records, want 1", n)
	}
}

func TestReader_DecodeErrorSurfaces(t *testing.T) {
	tbl := dbftest.Table{
		Fields: []dbftest.Field{dbftest.N("QTY", 4, 0)},
		Rows:   [][]string{{"ab"}},
	}
	rd, err := dbf.NewReader(bytes.NewReader(tbl.Bytes()), dbf.WithNumericHook(dbf.CleanNumeric))
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	for _, err := range rd.Records() {
		var fe *dbf.FieldError
		if !errors.As(err, &fe) {
			t.Fatalf("error = %v, want *FieldError", err)
		}
		if fe.Field.Name != "QTY" {
			t.Errorf("FieldError.Field = %v", fe.Field)
		}
	}
}

func TestNewReader_CorruptHeader(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short header", make([]byte, 10)},
		{"zero lengths", make([]byte, 40)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dbf.NewReader(bytes.NewReader(tt.data))
			if !errors.Is(err, dbf.ErrCorruptHeader) {
				t.Errorf("error = %v, want ErrCorruptHeader", err)
			}
		})
	}
}

func TestOpenAndReadFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "F1_31.DBF")
	dbftest.WriteFile(t, path, fuelTable().Bytes())

	fields, err := dbf.ReadFields(path)
	if err != nil {
		t.Fatalf("ReadFields() error = %v", err)
	}
	if len(fields) != 3 {
		t.Fatalf("got %d fields, want 3", len(fields))
	}
	want := dbf.Field{Name: "FUEL_QUANT", Type: 'N', Length: 8, Decimals: 2, Offset: 18}
	if fields[2] != want {
		t.Errorf("fields[2] = %+v, want %+v", fields[2], want)
	}

	if _, err := dbf.Open(filepath.Join(t.TempDir(), "missing.DBF")); err == nil {
		t.Error("Open() on missing file should fail")
	}
}

func TestParse_OtherTypes(t *testing.T) {
	p := dbf.NewParser()

	le32 := func(v int32) []byte {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(v))
		return b
	}
	le64 := func(v uint64) []byte {
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, v)
		return b
	}
	datetime := append(le32(2440588+1), le32(1500)...)

	tests := []struct {
		name string
		typ  byte
		in   []byte
		want any
	}{
		{"text trims padding", 'C', []byte("abc  \x00"), "abc"},
		{"date", 'D', []byte("20170315"), time.Date(2017, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"blank date", 'D', []byte("        "), nil},
		{"integer", 'I', le32(-42), int64(-42)},
		{"double", 'B', le64(math.Float64bits(2.5)), 2.5},
		{"currency", 'Y', le64(123450), 12.345},
		{"logical true", 'L', []byte("T"), true},
		{"logical false", 'L', []byte("n"), false},
		{"logical unknown", 'L', []byte("?"), nil},
		{"datetime", 'T', datetime, time.Date(1970, 1, 2, 0, 0, 1, 500*int(time.Millisecond), time.UTC)},
		{"empty datetime", 'T', make([]byte, 8), nil},
		{"memo", 'M', []byte("0000000001"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(dbf.Field{Name: "F", Type: tt.typ, Length: len(tt.in)}, tt.in)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParse_UnsupportedType(t *testing.T) {
	_, err := dbf.NewParser().Parse(dbf.Field{Name: "F", Type: 'Q', Length: 1}, []byte("x"))
	if !errors.Is(err, dbf.ErrUnsupportedType) {
		t.Errorf("error = %v, want ErrUnsupportedType", err)
	}
}

func TestParse_CustomHook(t *testing.T) {
	upper := func(b []byte) []byte { return bytes.ToUpper(b) }
	p := dbf.NewParser(dbf.WithHook('C', upper))

	got, err := p.Parse(dbf.Field{Name: "F", Type: 'C', Length: 3}, []byte("abc"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got != "ABC" {
		t.Errorf("Parse() = %v, want ABC", got)
	}
}

func TestLookupEncoding(t *testing.T) {
	tests := []struct {
		name    string
		want    any
		wantErr bool
	}{
		{"", charmap.ISO8859_1, false},
		{"ISO-8859-1", charmap.ISO8859_1, false},
		{"windows-1252", charmap.Windows1252, false},
		{"klingon-1", nil, true},
	}

	for _, tt := range tests {
		got, err := dbf.LookupEncoding(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("LookupEncoding(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("LookupEncoding(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParse_WithEncoding(t *testing.T) {
	field := dbf.Field{Name: "F", Type: 'C', Length: 6}
	raw := []byte("Cost \x80")

	tests := []struct {
		name string
		opts []dbf.Option
		want string
	}{
		{"latin1 default", nil, "Cost \u0080"},
		{"windows-1252", []dbf.Option{dbf.WithEncoding(charmap.Windows1252)}, "Cost \u20ac"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dbf.NewParser(tt.opts...).Parse(field, raw)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Parse() = %q, want %q", got, tt.want)
			}
		})
	}
}
