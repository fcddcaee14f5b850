package render

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/dgallion1/adocgest/internal/doctree"
)

// highlight replaces the text of code with chroma token spans. Content that
// already holds elements (callout markers) is left alone.
func highlight(t *doctree.Tree, code doctree.NodeID, lang string) bool {
	if len(t.ElementChildren(code)) > 0 {
		return false
	}
	lexer := lexers.Get(lang)
	if lexer == nil {
		return false
	}
	src := t.TextContent(code)
	it, err := chroma.Coalesce(lexer).Tokenise(nil, src)
	if err != nil {
		return false
	}
	t.RemoveChildren(code)
	for _, tok := range it.Tokens() {
		cls := tokenClass(tok.Type)
		if cls == "" {
			appendText(t, code, tok.Value)
			continue
		}
		span := newTag(t, "span", cls)
		appendText(t, span, tok.Value)
		t.AppendChild(code, span)
	}
	return true
}

func tokenClass(tt chroma.TokenType) string {
	if cls := chroma.StandardTypes[tt]; cls != "" {
		return cls
	}
	if cls := chroma.StandardTypes[tt.SubCategory()]; cls != "" {
		return cls
	}
	return chroma.StandardTypes[tt.Category()]
}
