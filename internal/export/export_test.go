package export

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/KaramelBytes/synthtab-cli/internal/dataset"
)

func sampleTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl := dataset.New(3)
	if err := tbl.Append(
		dataset.NewTextColumn("name", []string{"Ada Lovelace", "Alan Turing", "Grace Hopper"}),
		dataset.NewTextColumn("address", []string{"1 Main St\nSpringfield, IL 62701", "2 Oak Ave\nDover, DE 19901", "3 Pine Rd\nSalem, OR 97301"}),
		dataset.NewNumericColumn("numeric_1", []float64{1.5, -0.25, 1e-7}),
		dataset.NewTextColumn("category_1", []string{"A", "F", "C"}),
	); err != nil {
		t.Fatalf("append: %v", err)
	}
	tbl.Columns[0].SetNull(1)
	tbl.Columns[2].SetNull(2)
	return tbl
}

func assertSameCells(t *testing.T, want, got *dataset.Table) {
	t.Helper()
	if got.Rows != want.Rows || len(got.Columns) != len(want.Columns) {
		t.Fatalf("shape = %dx%d, want %dx%d", got.Rows, len(got.Columns), want.Rows, len(want.Columns))
	}
	for j := range want.Columns {
		w, g := want.Columns[j], got.Columns[j]
		if w.Name != g.Name || w.Kind != g.Kind {
			t.Fatalf("column %d = %s/%s, want %s/%s", j, g.Name, g.Kind, w.Name, w.Kind)
		}
		for i := 0; i < want.Rows; i++ {
			if w.IsNull(i) != g.IsNull(i) || w.Format(i) != g.Format(i) {
				t.Fatalf("%s row %d = %q (null=%v), want %q (null=%v)", w.Name, i, g.Format(i), g.IsNull(i), w.Format(i), w.IsNull(i))
			}
		}
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"CSV": CSV, "excel": XLSX, "stata": DTA, "dta": DTA, "sql": SQL} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("parquet"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if f, err := FormatFromPath("out/Data.XLSX"); err != nil || f != XLSX {
		t.Fatalf("FormatFromPath = %v, %v", f, err)
	}
	if _, err := FormatFromPath("data.json"); err == nil {
		t.Fatalf("expected error for .json")
	}
	if got := DTA.DefaultFileName(); got != "synthetic_data.dta" {
		t.Fatalf("DefaultFileName = %q", got)
	}
	if _, err := For(SQL); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("sql has no file writer, got %v", err)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	tbl := sampleTable(t)
	b, err := Encode(CSV, tbl)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := string(b)
	if !strings.HasPrefix(out, "name,address,numeric_1,category_1\n") {
		t.Fatalf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "\"1 Main St\nSpringfield, IL 62701\"") {
		t.Fatalf("multi-line value not quoted: %q", out)
	}
	if !strings.Contains(out, "\n,\"2 Oak Ave") {
		t.Fatalf("null name should be an empty field: %q", out)
	}
	back, err := ReadCSV(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	assertSameCells(t, tbl, back)
}

func TestReadCSVInference(t *testing.T) {
	in := "a,b,c\n1,x,\n2.5,,\n,3,\n"
	tbl, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	a, _ := tbl.Column("a")
	b, _ := tbl.Column("b")
	c, _ := tbl.Column("c")
	if a.Kind != dataset.KindNumeric || b.Kind != dataset.KindText || c.Kind != dataset.KindText {
		t.Fatalf("kinds = %s %s %s", a.Kind, b.Kind, c.Kind)
	}
	if a.MissingCount() != 1 || b.MissingCount() != 1 || c.MissingCount() != 3 {
		t.Fatalf("missing = %d %d %d", a.MissingCount(), b.MissingCount(), c.MissingCount())
	}
	empty, err := ReadCSV(strings.NewReader(""))
	if err != nil || empty.Rows != 0 {
		t.Fatalf("empty input = %v, %v", empty, err)
	}
}

func TestXLSXRoundTrip(t *testing.T) {
	tbl := sampleTable(t)
	dir := t.TempDir()
	p := filepath.Join(dir, XLSX.DefaultFileName())
	if err := WriteFile(p, XLSX, tbl); err != nil {
		t.Fatalf("write: %v", err)
	}
	back, err := ReadXLSXFile(p, SheetName)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	assertSameCells(t, tbl, back)

	first, err := ReadXLSXFile(p, "")
	if err != nil || first.Rows != 3 {
		t.Fatalf("default sheet = %v, %v", first, err)
	}
	if _, err := ReadXLSXFile(p, "Other"); !errors.Is(err, ErrSheetNotFound) {
		t.Fatalf("expected ErrSheetNotFound, got %v", err)
	}
}

func TestColumnLetters(t *testing.T) {
	for col, want := range map[int]string{0: "A", 25: "Z", 26: "AA", 27: "AB", 701: "ZZ", 702: "AAA"} {
		if got := columnLetters(col); got != want {
			t.Fatalf("columnLetters(%d) = %q, want %q", col, got, want)
		}
		if got := columnIndex(want + "12"); got != col {
			t.Fatalf("columnIndex(%q) = %d, want %d", want+"12", got, col)
		}
	}
}

func TestDTALayout(t *testing.T) {
	tbl := sampleTable(t)
	var buf bytes.Buffer
	w := dtaWriter{now: func() time.Time { return time.Date(2024, 3, 5, 9, 7, 0, 0, time.UTC) }}
	if err := w.Write(&buf, tbl); err != nil {
		t.Fatalf("write: %v", err)
	}
	b := buf.Bytes()
	le := binary.LittleEndian
	if b[0] != 114 || b[1] != 2 || b[2] != 1 {
		t.Fatalf("header bytes = %v", b[:4])
	}
	nvar := int(le.Uint16(b[4:6]))
	nobs := int(le.Uint32(b[6:10]))
	if nvar != 4 || nobs != 3 {
		t.Fatalf("nvar=%d nobs=%d", nvar, nobs)
	}
	if stamp := cString(b[91:109]); stamp != "05 Mar 2024 09:07" {
		t.Fatalf("timestamp = %q", stamp)
	}
	off := 109
	typ := b[off : off+nvar]
	off += nvar
	wantWidths := []byte{12, 31, 255, 1}
	if !bytes.Equal(typ, wantWidths) {
		t.Fatalf("typlist = %v, want %v", typ, wantWidths)
	}
	var names []string
	for j := 0; j < nvar; j++ {
		names = append(names, cString(b[off:off+33]))
		off += 33
	}
	if strings.Join(names, ",") != "name,address,numeric_1,category_1" {
		t.Fatalf("varlist = %v", names)
	}
	off += 2 * (nvar + 1)
	if f := cString(b[off+2*49 : off+3*49]); f != "%9.0g" {
		t.Fatalf("numeric format = %q", f)
	}
	if f := cString(b[off : off+49]); f != "%12s" {
		t.Fatalf("string format = %q", f)
	}
	off += 49*nvar + 33*nvar + 81*nvar + 5

	rowLen := 12 + 31 + 8 + 1
	if len(b)-off != rowLen*nobs {
		t.Fatalf("data section = %d bytes, want %d", len(b)-off, rowLen*nobs)
	}
	row := func(i int) []byte { return b[off+i*rowLen : off+(i+1)*rowLen] }
	if got := cString(row(0)[:12]); got != "Ada Lovelace" {
		t.Fatalf("row 0 name = %q", got)
	}
	if got := cString(row(1)[:12]); got != "" {
		t.Fatalf("null string should be empty, got %q", got)
	}
	if got := math.Float64frombits(le.Uint64(row(1)[43:51])); got != -0.25 {
		t.Fatalf("row 1 numeric = %v", got)
	}
	if got := le.Uint64(row(2)[43:51]); got != dtaMissing {
		t.Fatalf("missing numeric bits = %#x", got)
	}
}

func TestStataNames(t *testing.T) {
	used := map[string]bool{}
	if got := uniqueName(stataName("2nd value", 0), used); got != "_2nd_value" {
		t.Fatalf("got %q", got)
	}
	if got := uniqueName(stataName("2nd-value", 1), used); got != "_2nd_value_2" {
		t.Fatalf("got %q", got)
	}
	if got := stataName(strings.Repeat("x", 40), 0); len(got) != 32 {
		t.Fatalf("len = %d", len(got))
	}
	if got := stataName("", 4); got != "var5" {
		t.Fatalf("got %q", got)
	}
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func TestExportSQLite(t *testing.T) {
	tbl := sampleTable(t)
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "out.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()
	opt := SQLOptions{Dialect: SQLite, Table: "synthetic_data", BatchSize: 2}
	n, err := ExportSQL(ctx, db, opt, tbl)
	if err != nil || n != 3 {
		t.Fatalf("export = %d, %v", n, err)
	}
	var count, nullNames, nullNums int
	if err := db.QueryRow(`SELECT COUNT(*), SUM(name IS NULL), SUM(numeric_1 IS NULL) FROM synthetic_data`).Scan(&count, &nullNames, &nullNums); err != nil {
		t.Fatal(err)
	}
	if count != 3 || nullNames != 1 || nullNums != 1 {
		t.Fatalf("count=%d nullNames=%d nullNums=%d", count, nullNames, nullNums)
	}
	var v float64
	if err := db.QueryRow(`SELECT numeric_1 FROM synthetic_data WHERE category_1 = 'F'`).Scan(&v); err != nil || v != -0.25 {
		t.Fatalf("numeric_1 = %v, %v", v, err)
	}

	if _, err := ExportSQL(ctx, db, opt, tbl); err == nil {
		t.Fatalf("expected error when table exists without Replace")
	}
	opt.Replace = true
	if _, err := ExportSQL(ctx, db, opt, tbl); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM synthetic_data`).Scan(&count); err != nil || count != 3 {
		t.Fatalf("count after replace = %d, %v", count, err)
	}
}

func TestExportSQLValidation(t *testing.T) {
	tbl := sampleTable(t)
	if _, err := ExportSQL(context.Background(), nil, SQLOptions{Dialect: SQLite}, tbl); err == nil {
		t.Fatalf("expected error for empty table name")
	}
	if _, err := ExportSQL(context.Background(), nil, SQLOptions{Dialect: "oracle", Table: "x"}, tbl); !errors.Is(err, ErrUnknownDialect) {
		t.Fatalf("expected ErrUnknownDialect, got %v", err)
	}
	if got := CreateTableSQL(SQLOptions{Dialect: MySQL, Table: "t"}, tbl); !strings.Contains(got, "`numeric_1` DOUBLE") {
		t.Fatalf("mysql ddl = %s", got)
	}
	if got := CreateTableSQL(SQLOptions{Dialect: Postgres, Table: "t"}, tbl); !strings.Contains(got, `"numeric_1" DOUBLE PRECISION`) {
		t.Fatalf("postgres ddl = %s", got)
	}
}

func TestWriteFileCreatesDirectories(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "out", CSV.DefaultFileName())
	if err := WriteFile(p, CSV, sampleTable(t)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("stat: %v", err)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestReadDelimitedHeaders(t *testing.T) {
	in := "x; ;x\n1;a;2\n"
	tbl, err := ReadDelimited(strings.NewReader(in), ';')
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(tbl.Names(), ","); got != "x,column_2,x_2" {
		t.Fatalf("names = %s", got)
	}
}

func TestReadCSVSuffixDoesNotCollideWithHeader(t *testing.T) {
	for in, want := range map[string]string{
		"a,a,a_2\n1,2,3\n": "a,a_2,a_2_2",
		"a_2,a,a\n1,2,3\n": "a_2,a,a_3",
	} {
		tbl, err := ReadCSV(strings.NewReader(in))
		if err != nil {
			t.Fatalf("ReadCSV(%q): %v", in, err)
		}
		if got := strings.Join(tbl.Names(), ","); got != want {
			t.Fatalf("ReadCSV(%q) names = %s, want %s", in, got, want)
		}
	}
}
