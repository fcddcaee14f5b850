package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/adocgest/internal/attrlist"
	"github.com/dgallion1/adocgest/internal/doctree"
	"github.com/dgallion1/adocgest/internal/render"
)

var blankLineRe = regexp.MustCompile(`\n[ \t]*\n`)

type tableCell struct {
	spec attrlist.Cell
	text string
}

func (s *state) table(delim byte, lines []string) error {
	props := s.b.Properties()
	format := props.Get("format")
	switch delim {
	case ',':
		format = "csv"
	case ':':
		format = "dsv"
	}
	cols := attrlist.ParseColumns(props.Get("cols"))

	table, err := s.open(doctree.KindTableBlock, "Table")
	if err != nil {
		return err
	}

	var cells []tableCell
	firstRow := 0
	switch format {
	case "csv", "tsv", "dsv":
		comma := ','
		if format == "tsv" {
			comma = '\t'
		} else if format == "dsv" {
			comma = ':'
		}
		records, err := delimitedRecords(lines, comma)
		if err != nil {
			return err
		}
		for _, rec := range records {
			for _, f := range rec {
				cells = append(cells, tableCell{spec: attrlist.Cell{Colspan: 1, Rowspan: 1, Repeat: 1}, text: f})
			}
		}
		if len(records) > 0 {
			firstRow = len(records[0])
		}
	default:
		cells, firstRow = splitCells(lines)
	}

	tp := s.t.Props(table)
	tp.Set(render.FirstRowCellCount, strconv.Itoa(firstRow))
	if first := firstContentLine(lines); first >= 0 && first+1 < len(lines) && strings.TrimSpace(lines[first+1]) == "" && firstRow > 0 {
		tp.Set(render.HeaderCellCount, strconv.Itoa(firstRow))
	}

	slot := 0
	for _, c := range cells {
		style := c.spec.Style
		if style == 0 && len(cols) > 0 {
			style = cols[slot%len(cols)].Style
		}
		for range c.spec.Repeat {
			if err := s.cell(c, style); err != nil {
				return err
			}
			slot += max(c.spec.Colspan, 1)
		}
	}
	s.endBlock()
	return nil
}

func firstContentLine(lines []string) int {
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			return i
		}
	}
	return -1
}

// splitCells splits a psv table body on unescaped "|". A cell specifier is
// the token directly before the delimiter, at the start of a line or after
// whitespace. It also returns how many cells start on the first line.
func splitCells(lines []string) ([]tableCell, int) {
	var (
		cells    []tableCell
		cur      *tableCell
		buf      strings.Builder
		firstRow int
	)
	first := firstContentLine(lines)
	for li, line := range lines {
		for i := 0; i < len(line); i++ {
			ch := line[i]
			if ch == '\\' && i+1 < len(line) && line[i+1] == '|' {
				buf.WriteByte('|')
				i++
				continue
			}
			if ch != '|' {
				buf.WriteByte(ch)
				continue
			}
			spec, body := splitSpec(buf.String(), cur == nil)
			buf.Reset()
			if cur != nil {
				cur.text = body
				cells = append(cells, *cur)
			}
			cur = &tableCell{spec: spec}
			if li == first {
				firstRow++
			}
		}
		buf.WriteByte('\n')
	}
	if cur != nil {
		cur.text = buf.String()
		cells = append(cells, *cur)
	}
	return cells, firstRow
}

func splitSpec(text string, leading bool) (attrlist.Cell, string) {
	if leading {
		spec, _ := attrlist.ParseCell(strings.TrimSpace(text))
		return spec, ""
	}
	if idx := strings.LastIndexAny(text, " \t\n"); idx >= 0 && idx < len(text)-1 {
		if spec, ok := attrlist.ParseCell(text[idx+1:]); ok {
			return spec, text[:idx]
		}
	}
	spec, _ := attrlist.ParseCell("")
	return spec, text
}

func (s *state) cell(c tableCell, style byte) error {
	s.b.OpenElement(doctree.KindTableCell)
	if c.spec.HAlign != "" {
		s.b.SetAttr(render.CellHAlign, c.spec.HAlign)
	}
	if c.spec.VAlign != "" {
		s.b.SetAttr(render.CellVAlign, c.spec.VAlign)
	}
	if c.spec.Style != 0 {
		s.b.SetAttr(render.CellStyle, string(c.spec.Style))
	}
	if c.spec.Colspan > 1 {
		s.b.SetAttr(render.CellColspan, strconv.Itoa(c.spec.Colspan))
	}
	if c.spec.Rowspan > 1 {
		s.b.SetAttr(render.CellRowspan, strconv.Itoa(c.spec.Rowspan))
	}

	text := strings.TrimSpace(c.text)
	switch {
	case text == "":
	case style == 'l':
		s.b.OpenElement(doctree.KindParagraph)
		s.b.AppendText(text)
		s.b.CloseElement(doctree.KindParagraph)
	case style == 'a' && s.p.opts.Nested != nil:
		sub, err := s.p.opts.Nested(text)
		if err != nil {
			return fmt.Errorf("table cell: %w", err)
		}
		s.b.AppendDocument(sub)
	default:
		for _, para := range blankLineRe.Split(text, -1) {
			s.b.OpenElement(doctree.KindParagraph)
			if err := s.inl.run(s.hardBreaks(strings.TrimSpace(para))); err != nil {
				return err
			}
			s.b.CloseElement(doctree.KindParagraph)
		}
	}
	s.b.CloseElement(doctree.KindTableCell)
	return nil
}
