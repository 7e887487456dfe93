package export

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/KaramelBytes/synthtab-cli/internal/dataset"
)

// Stata release 10 (format 114) layout constants.
const (
	dtaFormat114   = 114
	dtaLoHi        = 2
	dtaTypeDouble  = 255
	dtaMaxStr      = 244
	dtaNameLen     = 33
	dtaFmtLen      = 49
	dtaLabelLen    = 81
	dtaStampLen    = 18
	dtaMaxNameChar = 32
	dtaMaxVars     = math.MaxInt16
)

// dtaMissing is the bit pattern of Stata's system missing value "." for doubles.
const dtaMissing uint64 = 0x7fe0000000000000

type dtaWriter struct {
	now func() time.Time
}

func (dtaWriter) Format() Format { return DTA }

type dtaVar struct {
	name  string
	typ   byte
	width int
	col   *dataset.Column
}

// Write emits a little-endian format 114 file. Numeric columns become doubles
// with "." for missing cells; text columns become strN sized to the longest
// value, capped at 244 bytes, with longer values truncated.
func (d dtaWriter) Write(w io.Writer, t *dataset.Table) error {
	if len(t.Columns) > dtaMaxVars {
		return fmt.Errorf("dta: %d columns exceed the format limit of %d", len(t.Columns), dtaMaxVars)
	}
	if int64(t.Rows) > math.MaxInt32 {
		return fmt.Errorf("dta: %d rows exceed the format limit", t.Rows)
	}
	vars := dtaVars(t)
	now := time.Now
	if d.now != nil {
		now = d.now
	}

	bw := bufio.NewWriter(w)
	le := binary.LittleEndian

	// Header.
	bw.Write([]byte{dtaFormat114, dtaLoHi, 1, 0})
	binary.Write(bw, le, int16(len(vars)))
	binary.Write(bw, le, int32(t.Rows))
	bw.Write(cstr(SheetName, dtaLabelLen))
	bw.Write(cstr(now().Format("02 Jan 2006 15:04"), dtaStampLen))

	// Descriptors.
	for _, v := range vars {
		bw.WriteByte(v.typ)
	}
	for _, v := range vars {
		bw.Write(cstr(v.name, dtaNameLen))
	}
	bw.Write(make([]byte, 2*(len(vars)+1)))
	for _, v := range vars {
		f := "%9.0g"
		if v.typ != dtaTypeDouble {
			f = "%" + strconv.Itoa(v.width) + "s"
		}
		bw.Write(cstr(f, dtaFmtLen))
	}
	for range vars {
		bw.Write(make([]byte, dtaNameLen))
	}

	// Variable labels carry the original column names.
	for _, v := range vars {
		bw.Write(cstr(v.col.Name, dtaLabelLen))
	}

	// No expansion fields.
	bw.Write(make([]byte, 5))

	var num [8]byte
	for i := 0; i < t.Rows; i++ {
		for _, v := range vars {
			if v.typ == dtaTypeDouble {
				bits := dtaMissing
				if !v.col.IsNull(i) {
					if x := v.col.Numbers[i]; !math.IsNaN(x) && !math.IsInf(x, 0) {
						bits = math.Float64bits(x)
					}
				}
				le.PutUint64(num[:], bits)
				bw.Write(num[:])
				continue
			}
			s := ""
			if !v.col.IsNull(i) {
				s = v.col.Text[i]
			}
			bw.Write(fixed(s, v.width))
		}
	}
	return bw.Flush()
}

func dtaVars(t *dataset.Table) []dtaVar {
	vars := make([]dtaVar, len(t.Columns))
	used := map[string]bool{}
	for j := range t.Columns {
		c := &t.Columns[j]
		v := dtaVar{name: uniqueName(stataName(c.Name, j), used), typ: dtaTypeDouble, col: c}
		if c.Kind == dataset.KindText {
			width := 1
			for i, s := range c.Text {
				if !c.IsNull(i) && len(s) > width {
					width = len(s)
				}
			}
			if width > dtaMaxStr {
				width = dtaMaxStr
			}
			v.typ = byte(width)
			v.width = width
		}
		vars[j] = v
	}
	return vars
}

// stataName maps a column name onto Stata's identifier rules: ASCII letters,
// digits and underscores, not starting with a digit, at most 32 characters.
func stataName(name string, idx int) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	if s == "" {
		s = "var" + strconv.Itoa(idx+1)
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}
	if len(s) > dtaMaxNameChar {
		s = s[:dtaMaxNameChar]
	}
	return s
}

func uniqueName(s string, used map[string]bool) string {
	name := s
	for k := 2; used[name]; k++ {
		suffix := "_" + strconv.Itoa(k)
		base := s
		if len(base)+len(suffix) > dtaMaxNameChar {
			base = base[:dtaMaxNameChar-len(suffix)]
		}
		name = base + suffix
	}
	used[name] = true
	return name
}

// fixed returns s as an n-byte null-padded field, truncated on a rune boundary.
func fixed(s string, n int) []byte {
	out := make([]byte, n)
	if len(s) > n {
		s = s[:n]
		for len(s) > 0 && !utf8.ValidString(s) {
			s = s[:len(s)-1]
		}
	}
	copy(out, s)
	return out
}

// cstr is fixed with room kept for a terminating null byte.
func cstr(s string, n int) []byte {
	return append(fixed(s, n-1), 0)
}
