package render

import (
	"math"
	"strconv"

	"github.com/dgallion1/adocgest/internal/attrlist"
	"github.com/dgallion1/adocgest/internal/doctree"
)

// Cell attributes recorded by the parser from a cell specifier.
const (
	CellHAlign  = "halign"
	CellVAlign  = "valign"
	CellStyle   = "style"
	CellColspan = "colspan"
	CellRowspan = "rowspan"
)

// Table properties recorded by the parser while scanning rows.
const (
	FirstRowCellCount = "firstRowCellCount"
	HeaderCellCount   = "headerCellCount"
)

// Cells are consumed by the table rule.
func renderTableCell(_ *Renderer, _ *ruleCtx) {}

type tableCell struct {
	id      doctree.NodeID
	halign  string
	valign  string
	style   byte
	colspan int
	rowspan int
}

func renderTable(_ *Renderer, c *ruleCtx) {
	t, id, props := c.t, c.id, c.props
	cells := t.ChildrenOfKind(id, doctree.KindTableCell)
	cols := tableColumns(props, len(cells))
	title := t.ChildOfKind(id, doctree.KindTitle)

	t.SetTag(id, "table")
	classes := []string{
		"tableblock",
		"frame-" + firstNonEmpty(props.Get("frame"), "all"),
		"grid-" + firstNonEmpty(props.Get("grid"), "all"),
	}
	switch {
	case props.HasOption("autowidth"):
		classes = append(classes, "fit-content")
	case props.Get("width") != "":
		t.SetAttr(id, "style", "width: "+props.Get("width")+";")
	default:
		classes = append(classes, "stretch")
	}
	if s := props.Get("stripes"); s != "" {
		classes = append(classes, "stripes-"+s)
	}
	t.LeadClasses(id, classes...)

	colgroup := newTag(t, "colgroup")
	for _, w := range columnWidths(cols, props.HasOption("autowidth")) {
		col := t.NewTag("col")
		if w != "" {
			t.SetAttr(col, "style", "width: "+w+"%;")
		}
		t.AppendChild(colgroup, col)
	}

	header := props.HasOption("header") ||
		(props.Has(HeaderCellCount) && atoi(props.Get(HeaderCellCount), -1) == len(cols))
	if props.HasOption("noheader") {
		header = false
	}
	rows, complete := layoutRows(t, cells, cols)
	foot := -1
	if props.HasOption("footer") {
		foot = len(rows) - 1
		if !complete {
			foot--
		}
	}

	var thead, tfoot doctree.NodeID = doctree.None, doctree.None
	tbody := newTag(t, "tbody")
	for i, row := range rows {
		isHead := header && i == 0
		isFoot := i == foot && !isHead
		tr := newTag(t, "tr")
		col := 0
		for _, cell := range row {
			var colSpec attrlist.Column
			if col < len(cols) {
				colSpec = cols[col]
			}
			t.AppendChild(tr, renderCell(t, cell, colSpec, isHead))
			col += max(cell.colspan, 1)
		}
		switch {
		case isHead:
			thead = newTag(t, "thead")
			t.AppendChild(thead, tr)
		case isFoot:
			tfoot = newTag(t, "tfoot")
			t.AppendChild(tfoot, tr)
		default:
			t.AppendChild(tbody, tr)
		}
	}

	t.RemoveChildren(id)
	if title != doctree.None {
		t.AppendChild(id, title)
	}
	t.AppendChild(id, colgroup)
	if thead != doctree.None {
		t.AppendChild(id, thead)
	}
	t.AppendChild(id, tbody)
	if tfoot != doctree.None {
		t.AppendChild(id, tfoot)
	}
}

func tableColumns(props *attrlist.Properties, cellCount int) []attrlist.Column {
	if cols := attrlist.ParseColumns(props.Get("cols")); len(cols) > 0 {
		return cols
	}
	n := atoi(props.Get(FirstRowCellCount), 0)
	if n <= 0 {
		n = max(cellCount, 1)
	}
	return attrlist.ParseColumns(strconv.Itoa(n))
}

// columnWidths returns the colgroup percentages. Every column but the last is
// rounded to four decimals and the last takes the remainder so the total is
// exactly 100. Auto-width columns get no width. In an autowidth table only
// explicitly weighted columns get a width, taken literally.
func columnWidths(cols []attrlist.Column, autowidth bool) []string {
	out := make([]string, len(cols))
	if autowidth {
		for i, c := range cols {
			if c.Explicit && !c.Auto {
				out[i] = strconv.Itoa(c.Weight)
			}
		}
		return out
	}
	total := 0
	for _, c := range cols {
		if !c.Auto {
			total += max(c.Weight, 0)
		}
	}
	if total == 0 {
		return out
	}
	sum := 0.0
	last := -1
	for i, c := range cols {
		if !c.Auto {
			last = i
		}
	}
	for i, c := range cols {
		if c.Auto {
			continue
		}
		if i == last {
			out[i] = formatWidth(100 - sum)
			break
		}
		w := math.Round(1e6*float64(c.Weight)/float64(total)) / 1e4
		sum += w
		out[i] = formatWidth(w)
	}
	return out
}

func formatWidth(w float64) string {
	return strconv.FormatFloat(math.Round(w*1e4)/1e4, 'f', -1, 64)
}

// layoutRows groups cells into rows of len(cols) slots. Colspan consumes
// extra slots; rowspan does not shift later rows. complete reports whether
// the last row fills every slot.
func layoutRows(t *doctree.Tree, ids []doctree.NodeID, cols []attrlist.Column) (rows [][]tableCell, complete bool) {
	width := max(len(cols), 1)
	var row []tableCell
	used := 0
	for _, id := range ids {
		cell := tableCell{
			id:      id,
			halign:  t.Attr(id, CellHAlign),
			valign:  t.Attr(id, CellVAlign),
			colspan: atoi(t.Attr(id, CellColspan), 1),
			rowspan: atoi(t.Attr(id, CellRowspan), 1),
		}
		if s := t.Attr(id, CellStyle); s != "" {
			cell.style = s[0]
		}
		row = append(row, cell)
		used += max(cell.colspan, 1)
		if used >= width {
			rows = append(rows, row)
			row, used = nil, 0
		}
	}
	if len(row) > 0 {
		return append(rows, row), false
	}
	return rows, true
}

func renderCell(t *doctree.Tree, cell tableCell, col attrlist.Column, head bool) doctree.NodeID {
	style := cell.style
	if style == 0 {
		style = col.Style
	}
	tag := "td"
	if head || style == 'h' {
		tag = "th"
	}
	halign := firstNonEmpty(cell.halign, col.HAlign, "left")
	valign := firstNonEmpty(cell.valign, col.VAlign, "top")
	tc := newTag(t, tag, "tableblock", "halign-"+halign, "valign-"+valign)
	if cell.colspan > 1 {
		t.SetAttr(tc, "colspan", strconv.Itoa(cell.colspan))
	}
	if cell.rowspan > 1 {
		t.SetAttr(tc, "rowspan", strconv.Itoa(cell.rowspan))
	}

	switch {
	case style == 'a' && !head:
		content := newTag(t, "div", "content")
		t.MoveChildren(cell.id, content)
		t.AppendChild(tc, content)
	case head:
		for _, p := range cellParagraphs(t, cell.id) {
			t.MoveChildren(p, tc)
		}
	case style == 'v':
		verse := newTag(t, "div", "verse")
		for _, p := range cellParagraphs(t, cell.id) {
			t.MoveChildren(p, verse)
		}
		t.AppendChild(tc, verse)
	case style == 'l':
		lit := newTag(t, "div", "literal")
		pre := newTag(t, "pre")
		for i, p := range cellParagraphs(t, cell.id) {
			if i > 0 {
				appendText(t, pre, "\n\n")
			}
			t.MoveChildren(p, pre)
		}
		t.AppendChild(lit, pre)
		t.AppendChild(tc, lit)
	default:
		for _, p := range cellParagraphs(t, cell.id) {
			target := newTag(t, "p", "tableblock")
			inner := styleWrap(t, target, style)
			t.MoveChildren(p, inner)
			t.AppendChild(tc, target)
		}
	}
	return tc
}

// cellParagraphs returns the inline containers of a cell: the p inside each
// rendered paragraph, or the paragraph itself when it has no p.
func cellParagraphs(t *doctree.Tree, cell doctree.NodeID) []doctree.NodeID {
	var out []doctree.NodeID
	for _, para := range t.ChildrenOfKind(cell, doctree.KindParagraph) {
		inner := para
		for _, ch := range t.ElementChildren(para) {
			if t.Tag(ch) == "p" {
				inner = ch
				break
			}
		}
		out = append(out, inner)
	}
	return out
}

// styleWrap nests the column text styles inside target and returns the
// innermost element.
func styleWrap(t *doctree.Tree, target doctree.NodeID, style byte) doctree.NodeID {
	tag := ""
	switch style {
	case 's':
		tag = "strong"
	case 'e':
		tag = "em"
	case 'm':
		tag = "code"
	default:
		return target
	}
	inner := t.NewTag(tag)
	t.AppendChild(target, inner)
	return inner
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
