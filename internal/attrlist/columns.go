package attrlist

import (
	"strconv"
	"strings"
)

// MaxColumns bounds the column count of a cols attribute and the repeat
// count of a cell specifier.
const MaxColumns = 1000

// Column is one entry of a table `cols` specification.
type Column struct {
	HAlign   string // left, center, right
	VAlign   string // top, middle, bottom
	Weight   int
	Explicit bool // Weight was given in the cols attribute
	Auto     bool // "~": width left to the browser
	Style    byte // a d e h l m s v, 0 when unset
}

// Cell is a table cell specifier such as `2+^.>a` found before a `|`.
type Cell struct {
	Colspan int
	Rowspan int
	Repeat  int
	HAlign  string
	VAlign  string
	Style   byte
}

// ParseColumns parses a cols attribute. A bare integer n yields n equal
// columns; n <= 0 yields none. The result never exceeds MaxColumns.
func ParseColumns(spec string) []Column {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil
	}
	if n, err := strconv.Atoi(spec); err == nil {
		if n <= 0 {
			return nil
		}
		n = min(n, MaxColumns)
		cols := make([]Column, 0, n)
		for range n {
			cols = append(cols, defaultColumn())
		}
		return cols
	}
	var cols []Column
	for _, part := range strings.FieldsFunc(spec, func(r rune) bool { return r == ',' || r == ';' }) {
		part = strings.TrimSpace(part)
		repeat := 1
		if i := strings.IndexByte(part, '*'); i > 0 {
			if n, err := strconv.Atoi(part[:i]); err == nil && n > 0 {
				repeat = n
				part = part[i+1:]
			}
		}
		c := parseColumn(part)
		for range min(repeat, MaxColumns-len(cols)) {
			cols = append(cols, c)
		}
		if len(cols) == MaxColumns {
			break
		}
	}
	return cols
}

func defaultColumn() Column {
	return Column{HAlign: "left", VAlign: "top", Weight: 1}
}

func parseColumn(s string) Column {
	c := defaultColumn()
	i := 0
	i, c.HAlign = readHAlign(s, i, c.HAlign)
	i, c.VAlign = readVAlign(s, i, c.VAlign)
	j := i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j > i {
		if w, err := strconv.Atoi(s[i:j]); err == nil {
			c.Weight = w
		}
		c.Explicit = true
		i = j
		if i < len(s) && s[i] == '%' {
			i++
		}
	} else if i < len(s) && s[i] == '~' {
		c.Auto = true
		i++
	}
	if i < len(s) && isStyle(s[i]) {
		c.Style = s[i]
	}
	if c.Explicit && c.Weight <= 0 {
		c.Weight = 1
	}
	return c
}

// ParseCell parses a cell specifier (the text immediately before a `|`).
// ok is false when s is not a valid specifier.
func ParseCell(s string) (Cell, bool) {
	c := Cell{Colspan: 1, Rowspan: 1, Repeat: 1}
	if s == "" {
		return c, true
	}
	i := 0
	j := i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j > i && j < len(s) {
		n, _ := strconv.Atoi(s[i:j])
		switch s[j] {
		case '*':
			c.Repeat = min(n, MaxColumns)
			i = j + 1
		case '+':
			c.Colspan = n
			i = j + 1
		case '.':
			k := j + 1
			for k < len(s) && s[k] >= '0' && s[k] <= '9' {
				k++
			}
			if k > j+1 && k < len(s) && s[k] == '+' {
				c.Colspan = n
				c.Rowspan, _ = strconv.Atoi(s[j+1 : k])
				i = k + 1
			}
		}
	}
	i, c.HAlign = readHAlign(s, i, "")
	i, c.VAlign = readVAlign(s, i, "")
	if i < len(s) && isStyle(s[i]) {
		c.Style = s[i]
		i++
	}
	if i != len(s) || c.Colspan < 1 || c.Rowspan < 1 || c.Repeat < 1 {
		return Cell{Colspan: 1, Rowspan: 1, Repeat: 1}, false
	}
	return c, true
}

func readHAlign(s string, i int, def string) (int, string) {
	if i < len(s) {
		switch s[i] {
		case '<':
			return i + 1, "left"
		case '^':
			return i + 1, "center"
		case '>':
			return i + 1, "right"
		}
	}
	return i, def
}

func readVAlign(s string, i int, def string) (int, string) {
	if i+1 < len(s) && s[i] == '.' {
		switch s[i+1] {
		case '<':
			return i + 2, "top"
		case '^':
			return i + 2, "middle"
		case '>':
			return i + 2, "bottom"
		}
	}
	return i, def
}

func isStyle(b byte) bool {
	return strings.IndexByte("adehlmsv", b) >= 0
}
