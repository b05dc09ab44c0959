package gedcom

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

const maxLineSize = 1 << 20

var (
	fullDateRe  = regexp.MustCompile(`^(\d{1,2})\s+([A-Z]{3})\s+(\d{4})$`)
	monthYearRe = regexp.MustCompile(`^([A-Z]{3})\s+(\d{4})$`)
	surnameRe   = regexp.MustCompile(`/([^/]*)/`)
)

var months = map[string]string{
	"JAN": "01", "FEB": "02", "MAR": "03", "APR": "04", "MAY": "05", "JUN": "06",
	"JUL": "07", "AUG": "08", "SEP": "09", "OCT": "10", "NOV": "11", "DEC": "12",
}

// line is one tokenized GEDCOM line.
type line struct {
	level int
	xref  string
	tag   string
	value string
}

// cursor is the accumulator folded through the line sequence.
type cursor struct {
	indi   *Individual
	fam    *Family
	subTag string
}

// Parse parses GEDCOM text. It never fails: lines it cannot interpret are
// skipped.
func Parse(text string) *Data {
	data, _ := ParseReader(strings.NewReader(text))
	return data
}

// ParseReader parses GEDCOM from r. The only error returned is one reported
// by r itself; the records read up to that point are still returned. Lines
// longer than maxLineSize are dropped.
func ParseReader(r io.Reader) (*Data, error) {
	data := newData()
	var cur cursor

	var split lineSplitter
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	sc.Split(split.scan)
	for sc.Scan() {
		ln, ok := tokenize(sc.Text())
		if !ok {
			continue
		}
		cur = step(data, cur, ln)
	}
	return data, sc.Err()
}

// tokenize splits a raw line into LEVEL [@XREF@] TAG [VALUE].
func tokenize(raw string) (line, bool) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return line{}, false
	}
	level, err := strconv.Atoi(fields[0])
	if err != nil {
		return line{}, false
	}

	ln := line{level: level}
	rest := fields[1:]
	if len(rest) > 0 && isXref(rest[0]) {
		ln.xref = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 {
		ln.tag = rest[0]
		ln.value = strings.Join(rest[1:], " ")
	}
	return ln, true
}

func isXref(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, "@") && strings.HasSuffix(s, "@")
}

func step(data *Data, cur cursor, ln line) cursor {
	switch ln.level {
	case 0:
		return startRecord(data, ln)
	case 1:
		cur.subTag = ln.tag
		switch {
		case cur.indi != nil:
			applyIndividual(cur.indi, ln)
		case cur.fam != nil:
			applyFamily(cur.fam, ln)
		}
	case 2:
		if cur.indi != nil {
			refineIndividual(cur.indi, cur.subTag, ln)
		}
	}
	return cur
}

func startRecord(data *Data, ln line) cursor {
	if ln.xref == "" {
		return cursor{}
	}
	switch ln.tag {
	case "INDI":
		p := &Individual{ID: ln.xref, Sex: SexUnknown, FamiliesAsSpouse: []string{}}
		if _, seen := data.Individuals[p.ID]; !seen {
			data.order = append(data.order, p.ID)
		}
		data.Individuals[p.ID] = p
		return cursor{indi: p}
	case "FAM":
		f := &Family{ID: ln.xref, Children: []string{}}
		data.Families[f.ID] = f
		return cursor{fam: f}
	}
	return cursor{}
}

func applyIndividual(p *Individual, ln line) {
	switch ln.tag {
	case "NAME":
		applyName(p, ln.value)
	case "SEX":
		p.Sex = parseSex(ln.value)
	case "DEAT":
		p.IsDeceased = true
	case "FAMS":
		if ln.value != "" {
			p.FamiliesAsSpouse = append(p.FamiliesAsSpouse, ln.value)
		}
	case "FAMC":
		if ln.value != "" {
			p.FamilyAsChild = ln.value
		}
	}
}

func applyName(p *Individual, raw string) {
	p.Name = strings.TrimSpace(strings.ReplaceAll(raw, "/", ""))
	if m := surnameRe.FindStringSubmatch(raw); m != nil {
		p.Surname = strings.TrimSpace(m[1])
		p.GivenName = strings.TrimSpace(raw[:strings.Index(raw, "/")])
	}
	if strings.EqualFold(p.Name, "PRIVATE") {
		p.IsPrivate = true
	}
}

func applyFamily(f *Family, ln line) {
	switch ln.tag {
	case "HUSB":
		f.Husband = ln.value
	case "WIFE":
		f.Wife = ln.value
	case "CHIL":
		if ln.value != "" {
			f.Children = append(f.Children, ln.value)
		}
	}
}

func refineIndividual(p *Individual, subTag string, ln line) {
	switch subTag {
	case "NAME":
		switch ln.tag {
		case "GIVN":
			p.GivenName = ln.value
		case "SURN":
			p.Surname = ln.value
		}
	case "BIRT":
		if ln.tag == "DATE" {
			p.Birth = FormatDate(ln.value)
		}
	case "DEAT":
		if ln.tag == "DATE" {
			p.Death = FormatDate(ln.value)
		}
	}
}

// FormatDate normalizes a GEDCOM date value: "D MON YYYY" becomes
// DD/MM/YYYY, "MON YYYY" becomes MM/YYYY, anything else is returned trimmed.
// An unrecognized month code is kept verbatim.
func FormatDate(raw string) Date {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if m := fullDateRe.FindStringSubmatch(s); m != nil {
		day := m[1]
		if len(day) == 1 {
			day = "0" + day
		}
		return Date(day + "/" + monthNumber(m[2]) + "/" + m[3])
	}
	if m := monthYearRe.FindStringSubmatch(s); m != nil {
		return Date(monthNumber(m[1]) + "/" + m[2])
	}
	return Date(s)
}

func monthNumber(code string) string {
	if n, ok := months[code]; ok {
		return n
	}
	return code
}

// lineSplitter splits on \r\n, \r or \n. A line that fills the scanner
// buffer without a terminator is discarded up to its terminator instead of
// failing the scan.
type lineSplitter struct {
	skipping bool
}

func (l *lineSplitter) scan(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	end, next := lineEnd(data, atEOF)
	if next == 0 {
		if len(data) >= maxLineSize {
			l.skipping = true
			return len(data), nil, nil
		}
		return 0, nil, nil
	}
	if l.skipping {
		l.skipping = false
		return next, nil, nil
	}
	return next, data[:end], nil
}

// lineEnd finds the first line in data. It returns the end of the line
// content and the offset past its terminator, or next == 0 when more input
// is needed.
func lineEnd(data []byte, atEOF bool) (end, next int) {
	for i, b := range data {
		switch b {
		case '\n':
			return i, i + 1
		case '\r':
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i, i + 2
				}
				return i, i + 1
			}
			if atEOF {
				return i, i + 1
			}
			// need one more byte to tell \r from \r\n
			return 0, 0
		}
	}
	if atEOF {
		return len(data), len(data)
	}
	return 0, 0
}
