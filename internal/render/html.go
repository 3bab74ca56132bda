package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/dgallion1/timegrid/internal/timeline"
)

// HTMLRenderer renders a timeline tree as a standalone HTML document:
// group sections as background blocks, unit sections nested inside,
// headings and records as the content within them.
type HTMLRenderer struct {
	Theme Theme
}

func NewHTMLRenderer(theme Theme) *HTMLRenderer {
	return &HTMLRenderer{Theme: theme}
}

type htmlDoc struct {
	Title  string
	Style  template.CSS
	Groups []htmlGroup
}

type htmlGroup struct {
	Anchor  string
	Heading template.HTML
	Units   []htmlUnit
}

type htmlUnit struct {
	Anchor  string
	Heading template.HTML
	Records []htmlRecord
}

type htmlRecord struct {
	Date  string
	Title string
	Body  string
	Media string
}

const htmlDocText = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>{{.Style}}</style>
</head>
<body>
<main class="timeline">
<h1>{{.Title}}</h1>
{{- range .Groups}}
<section class="group"{{with .Anchor}} id="{{.}}"{{end}}>
{{- .Heading}}
{{- range .Units}}
<section class="unit"{{with .Anchor}} id="{{.}}"{{end}}>
{{- .Heading}}
{{- range .Records}}
<article class="record">
{{- with .Date}}<time>{{.}}</time>{{end}}
{{- with .Title}}<strong>{{.}}</strong>{{end}}
{{- with .Body}}<p>{{.}}</p>{{end}}
{{- with .Media}}<img src="{{.}}" alt="">{{end}}
</article>
{{- end}}
</section>
{{- end}}
</section>
{{- end}}
</main>
</body>
</html>
`

var htmlTmpl = template.Must(template.New("timeline").Parse(htmlDocText))

// Render writes the document for tree to w.
func (r *HTMLRenderer) Render(w io.Writer, title string, tree *timeline.Tree) error {
	doc := htmlDoc{
		Title: title,
		Style: r.style(),
	}

	for _, g := range tree.Groups {
		hg := htmlGroup{}
		if g.Heading != nil {
			hg.Anchor = Slugify(g.Heading.Field("title"))
			hg.Heading = headingHTML(r.Theme.Headings.GroupTag, "group-heading", g.Heading.Field("title"))
		}
		for _, u := range g.Units {
			hu := htmlUnit{}
			if u.Heading != nil {
				hu.Anchor = Slugify(u.Heading.Field("title"))
				hu.Heading = headingHTML(r.Theme.Headings.UnitTag, "unit-heading", u.Heading.Field("title"))
			}
			for _, rec := range u.Records {
				hu.Records = append(hu.Records, htmlRecord{
					Date:  rec.Field("date"),
					Title: rec.Field("title"),
					Body:  rec.Field("body"),
					Media: rec.Field("media"),
				})
			}
			hg.Units = append(hg.Units, hu)
		}
		doc.Groups = append(doc.Groups, hg)
	}

	return htmlTmpl.Execute(w, doc)
}

// headingHTML builds a heading element with a theme-configured tag. The tag
// comes from the validated h1..h6 set; only the text needs escaping.
func headingHTML(tag, class, text string) template.HTML {
	if !headingTags[tag] {
		tag = "h2"
	}
	return template.HTML(fmt.Sprintf("<%s class=%q>%s</%s>", tag, class, template.HTMLEscapeString(text), tag))
}

func (r *HTMLRenderer) style() template.CSS {
	th := r.Theme
	emphasized, plain := ".group", ".unit"
	if th.Emphasis == "unit" {
		emphasized, plain = ".unit", ".group"
	}
	css := fmt.Sprintf(`body { background: %s; color: %s; font-family: %s; font-size: %dpx; margin: 0 auto; max-width: 48rem; padding: 1rem; }
.group { background: %s; border-radius: 6px; margin: 1rem 0; padding: 0.5rem 1rem; }
.unit { background: %s; border-radius: 4px; margin: 0.75rem 0; padding: 0.25rem 1rem; }
.group-heading, .unit-heading { color: %s; }
%s { box-shadow: 0 1px 3px rgba(0,0,0,0.15); }
%s { box-shadow: none; }
.record time { color: %s; font-weight: bold; margin-right: 0.5rem; }
.record img { max-width: 100%%; }`,
		th.Colors.Background, th.Colors.Text, th.Font.Family, th.Font.Size,
		th.Colors.GroupBand, th.Colors.UnitBand, th.Colors.Heading,
		emphasized, plain, th.Colors.Accent)
	return template.CSS(css)
}
