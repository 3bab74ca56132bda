package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/timegrid/internal/timeline"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx exports. Heading1-styled paragraphs become group
// headings, deeper heading styles unit headings, plain paragraphs records.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) ([]timeline.Element, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "timegrid-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, int64(size))
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var elements []timeline.Element
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}

		text := docxParagraphText(para)
		if text == "" {
			continue
		}

		switch level := docxHeadingLevel(para); {
		case level == 1:
			elements = append(elements, timeline.Element{
				Type:    timeline.GroupHeading,
				Payload: map[string]string{"title": text},
			})
		case level > 1:
			elements = append(elements, timeline.Element{
				Type:    timeline.UnitHeading,
				Payload: map[string]string{"title": text},
			})
		default:
			elements = append(elements, timeline.Element{
				Type:    timeline.Record,
				Payload: map[string]string{"body": text},
			})
		}
	}

	return elements, nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := para.Properties.Style.Val
	for level, names := range [][2]string{
		{"Heading1", "heading 1"},
		{"Heading2", "heading 2"},
		{"Heading3", "heading 3"},
		{"Heading4", "heading 4"},
		{"Heading5", "heading 5"},
		{"Heading6", "heading 6"},
	} {
		if strings.EqualFold(style, names[0]) || strings.EqualFold(style, names[1]) {
			return level + 1
		}
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
