package export

import (
	"archive/zip"
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/synthtab-cli/internal/dataset"
)

// SheetName is the title of the single worksheet written to XLSX files.
const SheetName = "Synthetic Data"

type xlsxWriter struct{}

func (xlsxWriter) Format() Format { return XLSX }

const (
	xlsxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>` +
		`<Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>` +
		`</Types>`
	xlsxRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/>` +
		`</Relationships>`
	xlsxWorkbookRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>` +
		`</Relationships>`
	xlsxWorkbookFmt = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
		`<sheets><sheet name="%s" sheetId="1" r:id="rId1"/></sheets></workbook>`
)

// Write produces a minimal workbook with one sheet. Text uses inline strings,
// numbers are numeric cells and missing cells are omitted.
func (xlsxWriter) Write(w io.Writer, t *dataset.Table) error {
	zw := zip.NewWriter(w)
	parts := []struct{ name, body string }{
		{"[Content_Types].xml", xlsxContentTypes},
		{"_rels/.rels", xlsxRootRels},
		{"xl/workbook.xml", fmt.Sprintf(xlsxWorkbookFmt, xmlEscape(SheetName))},
		{"xl/_rels/workbook.xml.rels", xlsxWorkbookRels},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", p.name, err)
		}
		if _, err := io.WriteString(f, p.body); err != nil {
			return fmt.Errorf("write %s: %w", p.name, err)
		}
	}
	f, err := zw.Create("xl/worksheets/sheet1.xml")
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := writeSheet(f, t); err != nil {
		return fmt.Errorf("write sheet: %w", err)
	}
	return zw.Close()
}

func writeSheet(w io.Writer, t *dataset.Table) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	bw.WriteString(`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>`)

	bw.WriteString(`<row r="1">`)
	for j, c := range t.Columns {
		writeInlineString(bw, cellRef(j, 1), c.Name)
	}
	bw.WriteString(`</row>`)

	for i := 0; i < t.Rows; i++ {
		r := i + 2
		fmt.Fprintf(bw, `<row r="%d">`, r)
		for j := range t.Columns {
			c := &t.Columns[j]
			if c.IsNull(i) {
				continue
			}
			if c.Kind == dataset.KindNumeric {
				v := c.Numbers[i]
				if math.IsNaN(v) || math.IsInf(v, 0) {
					continue
				}
				fmt.Fprintf(bw, `<c r="%s"><v>%s</v></c>`, cellRef(j, r), strconv.FormatFloat(v, 'g', -1, 64))
				continue
			}
			writeInlineString(bw, cellRef(j, r), c.Text[i])
		}
		bw.WriteString(`</row>`)
	}
	bw.WriteString(`</sheetData></worksheet>`)
	return bw.Flush()
}

func writeInlineString(bw *bufio.Writer, ref, s string) {
	fmt.Fprintf(bw, `<c r="%s" t="inlineStr"><is><t xml:space="preserve">%s</t></is></c>`, ref, xmlEscape(s))
}

func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// cellRef returns the A1-style reference for a 0-based column and 1-based row.
func cellRef(col, row int) string {
	return columnLetters(col) + strconv.Itoa(row)
}

func columnLetters(col int) string {
	var buf [8]byte
	i := len(buf)
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		i--
		buf[i] = byte('A' + (n-1)%26)
	}
	return string(buf[i:])
}

// columnIndex converts a reference like "C12" to its 0-based column index.
func columnIndex(ref string) int {
	idx := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			idx = idx*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			idx = idx*26 + int(c-'a'+1)
		default:
			return idx - 1
		}
	}
	return idx - 1
}
