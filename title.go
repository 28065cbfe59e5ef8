package notebookmd

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var titleParser = goldmark.New().Parser()

// notebookTitle returns the text of the first level-one heading found in the
// notebook's Markdown cells, or "" when there is none.
func notebookTitle(nb *Notebook) string {
	for _, cell := range nb.Cells {
		mc, ok := cell.(*MarkdownCell)
		if !ok {
			continue
		}
		if title := firstHeading([]byte(mc.Source.String())); title != "" {
			return title
		}
	}
	return ""
}

func firstHeading(src []byte) string {
	doc := titleParser.Parse(text.NewReader(src))

	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok || h.Level != 1 {
			return ast.WalkContinue, nil
		}
		title = strings.TrimSpace(inlineText(h, src))
		return ast.WalkStop, nil
	})
	return title
}

func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
