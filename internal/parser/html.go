package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/timegrid/internal/timeline"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML exports. h1 becomes a group heading, h2-h6 unit
// headings, and text-bearing content blocks records.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) ([]timeline.Element, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var elements []timeline.Element

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				title := textContent(n)
				if title != "" {
					typ := timeline.UnitHeading
					if level == 1 {
						typ = timeline.GroupHeading
					}
					elements = append(elements, timeline.Element{
						Type:    typ,
						Payload: map[string]string{"title": title},
					})
				}
				return // heading text already extracted
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "p", "li", "td", "blockquote":
				if body := textContent(n); body != "" {
					elements = append(elements, timeline.Element{
						Type:    timeline.Record,
						Payload: map[string]string{"body": body},
					})
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	return elements, nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
