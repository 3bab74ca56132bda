package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/timegrid/internal/timeline"
)

// SVGRenderer renders a timeline tree as a self-contained vertical graphic:
// a band per group section, an indented band per unit section, and a text
// row per record.
type SVGRenderer struct {
	Theme Theme
	Width int // canvas width in pixels, defaults to 800
}

const (
	svgRowHeight  = 24
	svgHeadingPad = 8
	svgSectionPad = 10
	svgMargin     = 20
	svgUnitIndent = 24
)

func NewSVGRenderer(theme Theme) *SVGRenderer {
	return &SVGRenderer{Theme: theme, Width: 800}
}

// Render writes the SVG document for tree to w.
func (r *SVGRenderer) Render(w io.Writer, title string, tree *timeline.Tree) error {
	width := r.Width
	if width <= 0 {
		width = 800
	}
	height := r.measure(tree)

	var buf strings.Builder
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" font-family=%q font-size="%d">`+"\n",
		width, height, r.Theme.Font.Family, r.Theme.Font.Size)
	fmt.Fprintf(&buf, `<rect width="%d" height="%d" fill=%q/>`+"\n", width, height, r.Theme.Colors.Background)

	y := svgMargin
	fmt.Fprintf(&buf, `<text x="%d" y="%d" font-weight="bold" fill=%q>%s</text>`+"\n",
		svgMargin, y+svgRowHeight/2, r.Theme.Colors.Heading, svgEscape(title))
	y += svgRowHeight + svgSectionPad

	for _, g := range tree.Groups {
		groupTop := y
		groupHeight := r.measureGroup(g)
		fmt.Fprintf(&buf, `<rect x="%d" y="%d" width="%d" height="%d" rx="6" fill=%q/>`+"\n",
			svgMargin, groupTop, width-2*svgMargin, groupHeight, r.Theme.Colors.GroupBand)

		y += svgHeadingPad
		if g.Heading != nil {
			fmt.Fprintf(&buf, `<text x="%d" y="%d" font-weight="bold" fill=%q>%s</text>`+"\n",
				svgMargin+svgHeadingPad, y+svgRowHeight/2+4, r.Theme.Colors.Heading, svgEscape(g.Heading.Field("title")))
			y += svgRowHeight
		}

		for _, u := range g.Units {
			unitTop := y
			unitHeight := r.measureUnit(u)
			fmt.Fprintf(&buf, `<rect x="%d" y="%d" width="%d" height="%d" rx="4" fill=%q/>`+"\n",
				svgMargin+svgUnitIndent, unitTop, width-2*svgMargin-2*svgUnitIndent, unitHeight, r.Theme.Colors.UnitBand)

			y += svgHeadingPad
			if u.Heading != nil {
				fmt.Fprintf(&buf, `<text x="%d" y="%d" font-style="italic" fill=%q>%s</text>`+"\n",
					svgMargin+svgUnitIndent+svgHeadingPad, y+svgRowHeight/2+4, r.Theme.Colors.Heading, svgEscape(u.Heading.Field("title")))
				y += svgRowHeight
			}
			for _, rec := range u.Records {
				fmt.Fprintf(&buf, `<circle cx="%d" cy="%d" r="3" fill=%q/>`+"\n",
					svgMargin+svgUnitIndent+svgHeadingPad+4, y+svgRowHeight/2, r.Theme.Colors.Accent)
				fmt.Fprintf(&buf, `<text x="%d" y="%d" fill=%q>%s</text>`+"\n",
					svgMargin+svgUnitIndent+svgHeadingPad+14, y+svgRowHeight/2+4, r.Theme.Colors.Text, svgEscape(recordLine(rec)))
				y += svgRowHeight
			}
			y += svgHeadingPad + svgSectionPad
		}
		if len(g.Units) == 0 {
			y += svgHeadingPad
		}
		y = groupTop + groupHeight + svgSectionPad
	}

	buf.WriteString("</svg>\n")
	_, err := io.WriteString(w, buf.String())
	return err
}

// recordLine picks a single display line for a record leaf.
func recordLine(rec timeline.Element) string {
	parts := make([]string, 0, 3)
	for _, key := range []string{"date", "title", "body"} {
		if v := rec.Field(key); v != "" {
			parts = append(parts, v)
		}
	}
	line := strings.Join(parts, " · ")
	if len(line) > 90 {
		line = line[:90] + "…"
	}
	return line
}

func (r *SVGRenderer) measure(tree *timeline.Tree) int {
	h := svgMargin + svgRowHeight + svgSectionPad // title row
	for _, g := range tree.Groups {
		h += r.measureGroup(g) + svgSectionPad
	}
	return h + svgMargin
}

func (r *SVGRenderer) measureGroup(g *timeline.GroupSection) int {
	h := svgHeadingPad
	if g.Heading != nil {
		h += svgRowHeight
	}
	for _, u := range g.Units {
		h += r.measureUnit(u) + svgSectionPad
	}
	return h + svgHeadingPad
}

func (r *SVGRenderer) measureUnit(u *timeline.UnitSection) int {
	h := svgHeadingPad
	if u.Heading != nil {
		h += svgRowHeight
	}
	h += len(u.Records) * svgRowHeight
	return h + svgHeadingPad
}

var svgEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func svgEscape(s string) string {
	return svgEscaper.Replace(s)
}
