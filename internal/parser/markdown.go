package parser

import (
	"bytes"
	"io"

	"github.com/dgallion1/timegrid/internal/timeline"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown outlines using goldmark. Level-1 headings
// become group headings, deeper headings unit headings, and every other
// block a record carrying the block text.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) ([]timeline.Element, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var elements []timeline.Element
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := string(node.Text(src))
			if title == "" {
				continue
			}
			typ := timeline.UnitHeading
			if node.Level == 1 {
				typ = timeline.GroupHeading
			}
			elements = append(elements, timeline.Element{
				Type:    typ,
				Payload: map[string]string{"title": title},
			})
		default:
			body := extractText(n, src)
			if body == "" {
				continue
			}
			elements = append(elements, timeline.Element{
				Type:    timeline.Record,
				Payload: map[string]string{"body": body},
			})
		}
	}

	return elements, nil
}

// extractText gets the text content of a goldmark AST node. Blocks with raw
// source lines (paragraphs, code blocks) use those directly; container
// blocks collect from their children.
func extractText(n ast.Node, src []byte) string {
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		var buf bytes.Buffer
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		return string(bytes.TrimSpace(buf.Bytes()))
	}

	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		if s := extractText(c, src); s != "" {
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(s)
		}
	}
	return string(bytes.TrimSpace(buf.Bytes()))
}
