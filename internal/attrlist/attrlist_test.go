package attrlist

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		id      string
		classes []string
		options []string
		args    []string
		named   map[string]string
	}{
		{in: "%hardbreaks", options: []string{"hardbreaks"}},
		{in: ".lead", classes: []string{"lead"}},
		{in: "#primitives-nulls", id: "primitives-nulls"},
		{in: "qanda", args: []string{"qanda"}},
		{in: `cols="2", options="header"`, options: []string{"header"}, named: map[string]string{"cols": "2"}},
		{in: "Asciidoctor @ *GitHub*", args: []string{"Asciidoctor @ *GitHub*"}},
		{in: "Subscribe, Subscribe me, I want to join!", args: []string{"Subscribe", "Subscribe me", "I want to join!"}},
		{
			in:      `Discuss Asciidoctor, role="external", window="_blank"`,
			classes: []string{"external"},
			args:    []string{"Discuss Asciidoctor"},
			named:   map[string]string{"window": "_blank"},
		},
		{in: `Discuss Asciidoctor^, role="external"`, classes: []string{"external"}, args: []string{"Discuss Asciidoctor^"}},
		{
			in:    `caption="Figure 1: ",link=https://www.flickr.com/photos/javh/5448336655`,
			named: map[string]string{"caption": "Figure 1: ", "link": "https://www.flickr.com/photos/javh/5448336655"},
		},
		{in: `Play, title="Play"`, args: []string{"Play"}, named: map[string]string{"title": "Play"}},
		{in: `Sunset,150,150,role="right"`, classes: []string{"right"}, args: []string{"Sunset", "150", "150"}},
		{
			in:      "width=640, start=60, end=140, options=autoplay",
			options: []string{"autoplay"},
			named:   map[string]string{"width": "640", "start": "60", "end": "140"},
		},
		{in: "source,ruby", args: []string{"source", "ruby"}},
		{in: "source, ruby", args: []string{"source", "ruby"}},
		{
			in:   "quote, Charles Lutwidge Dodgson, 'Mathematician and author, also known as https://en.wikipedia.org/wiki/Lewis_Carroll[Lewis Carroll]'",
			args: []string{"quote", "Charles Lutwidge Dodgson", "Mathematician and author, also known as https://en.wikipedia.org/wiki/Lewis_Carroll[Lewis Carroll]"},
		},
		{in: ", James Baldwin", args: []string{"", "James Baldwin"}},
		{in: `source,xml,subs="verbatim,attributes"`, args: []string{"source", "xml"}, named: map[string]string{"subs": "verbatim,attributes"}},
		{in: `role="incremental"`, classes: []string{"incremental"}},
		{in: "#goals.incremental", id: "goals", classes: []string{"incremental"}},
		{in: "#free_the_world.big.goal", id: "free_the_world", classes: []string{"big", "goal"}},
		{in: "big goal", args: []string{"big goal"}},
		{in: "role='lead'", classes: []string{"lead"}},
		{in: "id='wrapup'", id: "wrapup"},
		{in: "source%nowrap,java", options: []string{"nowrap"}, args: []string{"source", "java"}},
		{in: "quote, Captain James T. Kirk, Star Trek IV: The Voyage Home", args: []string{"quote", "Captain James T. Kirk", "Star Trek IV: The Voyage Home"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.id, p.ID)
			assert.Equal(t, tt.classes, p.Classes)
			assert.Equal(t, tt.options, p.Options)
			assert.Equal(t, tt.args, p.Arguments)
			for k, v := range tt.named {
				assert.Equal(t, v, p.Get(k), "named %s", k)
			}
			assert.Len(t, p.Names(), len(tt.named))
		})
	}
}

func TestParse_UnterminatedQuote(t *testing.T) {
	_, err := Parse(`title="never closed`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSyntax))
}

func TestParseMacro_KeepsFirstPositional(t *testing.T) {
	p, err := ParseMacro("logo.png,200")
	require.NoError(t, err)
	assert.Equal(t, []string{"logo.png", "200"}, p.Arguments)
	assert.Empty(t, p.Classes)
}

func TestPropertiesHelpers(t *testing.T) {
	p := MustParse("qanda, role=x")
	p.PromoteArgumentsToClasses()
	assert.Equal(t, []string{"x", "qanda"}, p.Classes)
	assert.True(t, p.HasArgument("qanda"))

	p.Set("a", "1")
	p.Set("b", "2")
	p.Set("a", "3")
	assert.Equal(t, []string{"a", "b"}, p.Names())
	p.Delete("a")
	assert.False(t, p.Has("a"))

	c := p.Clone()
	c.AddClass("y")
	assert.False(t, p.HasClass("y"))

	var nilProps *Properties
	assert.Equal(t, "", nilProps.Argument(0))
	assert.False(t, nilProps.HasOption("header"))
}

func TestParseColumns(t *testing.T) {
	cols := ParseColumns("3")
	require.Len(t, cols, 3)
	assert.Equal(t, 1, cols[2].Weight)

	cols = ParseColumns("2*1,3a")
	require.Len(t, cols, 3)
	assert.Equal(t, 1, cols[0].Weight)
	assert.Equal(t, 1, cols[1].Weight)
	assert.Equal(t, 3, cols[2].Weight)
	assert.Equal(t, byte('a'), cols[2].Style)

	cols = ParseColumns("^.>2e,~,<40%")
	require.Len(t, cols, 3)
	assert.Equal(t, "center", cols[0].HAlign)
	assert.Equal(t, "bottom", cols[0].VAlign)
	assert.Equal(t, 2, cols[0].Weight)
	assert.Equal(t, byte('e'), cols[0].Style)
	assert.True(t, cols[1].Auto)
	assert.Equal(t, 40, cols[2].Weight)
	assert.Equal(t, "left", cols[2].HAlign)
	assert.True(t, cols[0].Explicit)
	assert.False(t, cols[1].Explicit)
	assert.True(t, cols[2].Explicit)
	assert.False(t, ParseColumns("2")[0].Explicit)
}

func TestParseColumns_Bounds(t *testing.T) {
	tests := []struct {
		spec string
		want int
	}{
		{"0", 0},
		{"-1", 0},
		{"-5000", 0},
		{"1000000000", MaxColumns},
		{"1000000000*", MaxColumns},
		{"999*,5*", MaxColumns},
		{"2*,1000000000*1", MaxColumns},
		{"99999999999999999999*", 1},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			assert.Len(t, ParseColumns(tt.spec), tt.want)
		})
	}
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		in   string
		want Cell
		ok   bool
	}{
		{"", Cell{Colspan: 1, Rowspan: 1, Repeat: 1}, true},
		{"a", Cell{Colspan: 1, Rowspan: 1, Repeat: 1, Style: 'a'}, true},
		{"2+", Cell{Colspan: 2, Rowspan: 1, Repeat: 1}, true},
		{"2.3+^", Cell{Colspan: 2, Rowspan: 3, Repeat: 1, HAlign: "center"}, true},
		{"3*.^s", Cell{Colspan: 1, Rowspan: 1, Repeat: 3, VAlign: "middle", Style: 's'}, true},
		{"foo", Cell{Colspan: 1, Rowspan: 1, Repeat: 1}, false},
		{"999999999*", Cell{Colspan: 1, Rowspan: 1, Repeat: MaxColumns}, true},
		{"0*", Cell{Colspan: 1, Rowspan: 1, Repeat: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCell(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
