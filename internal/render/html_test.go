package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgallion1/timegrid/internal/timeline"
)

func buildTree(t *testing.T, elements []timeline.Element) *timeline.Tree {
	t.Helper()
	tree, err := timeline.Build(elements)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return tree
}

func sampleElements() []timeline.Element {
	return []timeline.Element{
		{Type: timeline.GroupHeading, Payload: map[string]string{"title": "1910s"}},
		{Type: timeline.UnitHeading, Payload: map[string]string{"title": "1912"}},
		{Type: timeline.Record, Payload: map[string]string{"title": "Maiden voyage", "date": "1912-04-10", "body": "Left Southampton."}},
		{Type: timeline.Record, Payload: map[string]string{"body": "Struck iceberg.", "media": "iceberg.jpg"}},
		{Type: timeline.GroupHeading, Payload: map[string]string{"title": "1920s"}},
		{Type: timeline.Record, Payload: map[string]string{"body": "Inquiry concluded."}},
	}
}

func TestHTMLRenderer_Document(t *testing.T) {
	tree := buildTree(t, sampleElements())
	r := NewHTMLRenderer(DefaultTheme())

	var buf bytes.Buffer
	if err := r.Render(&buf, "Ocean Liners", tree); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<title>Ocean Liners</title>",
		`<h2 class="group-heading">1910s</h2>`,
		`<h3 class="unit-heading">1912</h3>`,
		`id="1910s"`,
		"<time>1912-04-10</time>",
		"<strong>Maiden voyage</strong>",
		"<p>Left Southampton.</p>",
		`<img src="iceberg.jpg"`,
		"<p>Inquiry concluded.</p>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}

	// Second group's record sits in an anonymous unit: two unit sections total.
	if got := strings.Count(out, `<section class="unit"`); got != 2 {
		t.Errorf("expected 2 unit sections, got %d", got)
	}
	if got := strings.Count(out, `<section class="group"`); got != 2 {
		t.Errorf("expected 2 group sections, got %d", got)
	}
}

func TestHTMLRenderer_EscapesPayload(t *testing.T) {
	tree := buildTree(t, []timeline.Element{
		{Type: timeline.GroupHeading, Payload: map[string]string{"title": `<script>alert("x")</script>`}},
		{Type: timeline.Record, Payload: map[string]string{"body": "a < b"}},
	})
	r := NewHTMLRenderer(DefaultTheme())

	var buf bytes.Buffer
	if err := r.Render(&buf, "t", tree); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<script>alert") {
		t.Error("heading payload was not escaped")
	}
	if !strings.Contains(out, "a &lt; b") {
		t.Error("record body was not escaped")
	}
}

func TestHTMLRenderer_EmptyTree(t *testing.T) {
	tree := buildTree(t, nil)
	r := NewHTMLRenderer(DefaultTheme())

	var buf bytes.Buffer
	if err := r.Render(&buf, "Empty", tree); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(buf.String(), `<section`) {
		t.Error("expected no sections for empty tree")
	}
}

func TestHTMLRenderer_UnitEmphasisTheme(t *testing.T) {
	theme := DefaultTheme()
	theme.Emphasis = "unit"
	theme.Headings.GroupTag = "h4"
	tree := buildTree(t, sampleElements())

	var buf bytes.Buffer
	if err := NewHTMLRenderer(theme).Render(&buf, "t", tree); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `<h4 class="group-heading">`) {
		t.Error("expected theme-configured group heading tag")
	}
	if !strings.Contains(out, ".unit { box-shadow: 0 1px 3px") {
		t.Error("expected unit emphasis styling")
	}
}
