package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/timegrid/internal/timeline"
)

func TestJSONParser_ElementArray(t *testing.T) {
	input := `[
		{"type": "group-heading", "payload": {"title": "1910s"}},
		{"type": "unit-flag", "payload": {"title": "1912"}},
		{"type": "record", "payload": {"title": "Launch", "date": "1912-04-10"}},
		{"type": "record"}
	]`
	p := &JSONParser{}
	elements, err := p.Parse(strings.NewReader(input), "timeline.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 4 {
		t.Fatalf("expected 4 elements, got %d", len(elements))
	}
	if elements[1].Type != timeline.UnitHeading {
		t.Errorf("expected legacy unit-flag to normalize, got %q", elements[1].Type)
	}
	if got := elements[2].Field("date"); got != "1912-04-10" {
		t.Errorf("expected date %q, got %q", "1912-04-10", got)
	}
	if elements[3].Payload == nil {
		t.Error("expected non-nil payload for element without payload object")
	}
}

func TestJSONParser_InvalidJSON(t *testing.T) {
	p := &JSONParser{}
	if _, err := p.Parse(strings.NewReader("{not json"), "bad.json"); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestForFile_Dispatch(t *testing.T) {
	tests := []struct {
		filename string
		ok       bool
	}{
		{"events.csv", true},
		{"events.tsv", true},
		{"events.json", true},
		{"events.md", true},
		{"events.html", true},
		{"events.docx", true},
		{"events.pdf", true},
		{"events.xlsx", false},
		{"events", false},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.filename)
		if tt.ok && (err != nil || p == nil) {
			t.Errorf("ForFile(%q): unexpected error: %v", tt.filename, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("ForFile(%q): expected error", tt.filename)
		}
		if got := IsSupportedExtension(tt.filename); got != tt.ok {
			t.Errorf("IsSupportedExtension(%q) = %v, want %v", tt.filename, got, tt.ok)
		}
	}
}
