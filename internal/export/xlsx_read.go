package export

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/KaramelBytes/synthtab-cli/internal/dataset"
)

// ErrSheetNotFound is returned when a named sheet is absent from a workbook.
var ErrSheetNotFound = errors.New("sheet not found")

type xlsxWorkbook struct {
	Sheets []struct {
		Name string `xml:"name,attr"`
		RID  string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sheets>sheet"`
}

type xlsxRels struct {
	Rels []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// ReadXLSXFile opens path and reads one sheet; see ReadXLSX.
func ReadXLSXFile(p, sheet string) (*dataset.Table, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat xlsx: %w", err)
	}
	return ReadXLSX(f, st.Size(), sheet)
}

// ReadXLSX reads the named sheet, or the first sheet when sheet is empty. The
// first row is the header; column kinds are inferred as in ReadCSV.
func ReadXLSX(r io.ReaderAt, size int64, sheet string) (*dataset.Table, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	var wb xlsxWorkbook
	if err := unmarshalPart(zr, "xl/workbook.xml", &wb); err != nil {
		return nil, err
	}
	var rels xlsxRels
	if err := unmarshalPart(zr, "xl/_rels/workbook.xml.rels", &rels); err != nil {
		return nil, err
	}
	if len(wb.Sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrSheetNotFound)
	}
	rid := ""
	names := make([]string, 0, len(wb.Sheets))
	for _, s := range wb.Sheets {
		names = append(names, s.Name)
		if sheet == "" || strings.EqualFold(s.Name, sheet) {
			rid = s.RID
			break
		}
	}
	if rid == "" {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrSheetNotFound, sheet, strings.Join(names, ", "))
	}
	target := ""
	for _, rel := range rels.Rels {
		if rel.ID == rid {
			target = rel.Target
		}
	}
	if target == "" {
		return nil, fmt.Errorf("%w: no relationship %s", ErrSheetNotFound, rid)
	}
	target = strings.TrimPrefix(target, "/")
	if !strings.HasPrefix(target, "xl/") {
		target = path.Join("xl", target)
	}

	var shared []string
	if zf := findPart(zr, "xl/sharedStrings.xml"); zf != nil {
		if shared, err = readSharedStrings(zf); err != nil {
			return nil, err
		}
	}
	zf := findPart(zr, target)
	if zf == nil {
		return nil, fmt.Errorf("%w: missing part %s", ErrSheetNotFound, target)
	}
	rows, err := readSheetRows(zf, shared)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return dataset.New(0), nil
	}
	return fromRecords(rows[0], rows[1:])
}

func findPart(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func unmarshalPart(zr *zip.Reader, name string, v any) error {
	zf := findPart(zr, name)
	if zf == nil {
		return fmt.Errorf("xlsx: missing part %s", name)
	}
	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()
	if err := xml.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func readSharedStrings(zf *zip.File) ([]string, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, fmt.Errorf("open shared strings: %w", err)
	}
	defer rc.Close()
	var sst struct {
		Items []struct {
			T    string `xml:"t"`
			Runs []struct {
				T string `xml:"t"`
			} `xml:"r"`
		} `xml:"si"`
	}
	if err := xml.NewDecoder(rc).Decode(&sst); err != nil {
		return nil, fmt.Errorf("decode shared strings: %w", err)
	}
	out := make([]string, len(sst.Items))
	for i, it := range sst.Items {
		if len(it.Runs) == 0 {
			out[i] = it.T
			continue
		}
		var b strings.Builder
		for _, r := range it.Runs {
			b.WriteString(r.T)
		}
		out[i] = b.String()
	}
	return out, nil
}

type xlsxCell struct {
	Ref    string `xml:"r,attr"`
	Type   string `xml:"t,attr"`
	Value  string `xml:"v"`
	Inline struct {
		T string `xml:"t"`
	} `xml:"is"`
}

// readSheetRows streams <row> elements and returns them as padded records.
func readSheetRows(zf *zip.File, shared []string) ([][]string, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, fmt.Errorf("open sheet: %w", err)
	}
	defer rc.Close()
	dec := xml.NewDecoder(rc)
	var rows [][]string
	width := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode sheet: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "row" {
			continue
		}
		var row struct {
			Cells []xlsxCell `xml:"c"`
		}
		if err := dec.DecodeElement(&row, &se); err != nil {
			return nil, fmt.Errorf("decode row %d: %w", len(rows)+1, err)
		}
		var rec []string
		for k, c := range row.Cells {
			idx := k
			if c.Ref != "" {
				idx = columnIndex(c.Ref)
			}
			if idx < 0 {
				continue
			}
			for len(rec) <= idx {
				rec = append(rec, "")
			}
			rec[idx] = cellText(c, shared)
		}
		if len(rec) > width {
			width = len(rec)
		}
		rows = append(rows, rec)
	}
	for i := range rows {
		for len(rows[i]) < width {
			rows[i] = append(rows[i], "")
		}
	}
	return rows, nil
}

func cellText(c xlsxCell, shared []string) string {
	switch c.Type {
	case "inlineStr":
		return c.Inline.T
	case "s":
		i, err := strconv.Atoi(strings.TrimSpace(c.Value))
		if err != nil || i < 0 || i >= len(shared) {
			return ""
		}
		return shared[i]
	}
	return c.Value
}
