package render

import (
	"encoding/json"
	"io"

	"github.com/dgallion1/timegrid/internal/timeline"
)

// Node kinds in the JSON rendering.
const (
	KindRoot         = "root"
	KindGroupSection = "group-section"
	KindUnitSection  = "unit-section"
)

// JSONRenderer renders a timeline tree as nested JSON for programmatic
// consumers. Branch nodes carry a kind and children; leaf nodes carry the
// element type as kind plus the payload.
type JSONRenderer struct {
	Indent bool
}

type jsonNode struct {
	Kind     string            `json:"kind"`
	Payload  map[string]string `json:"payload,omitempty"`
	Children []jsonNode        `json:"children,omitempty"`
}

type jsonDoc struct {
	Title string   `json:"title,omitempty"`
	Root  jsonNode `json:"root"`
}

// Render writes the JSON document for tree to w.
func (r *JSONRenderer) Render(w io.Writer, title string, tree *timeline.Tree) error {
	root := jsonNode{Kind: KindRoot}
	for _, g := range tree.Groups {
		gn := jsonNode{Kind: KindGroupSection}
		if g.Heading != nil {
			gn.Children = append(gn.Children, leafNode(*g.Heading))
		}
		for _, u := range g.Units {
			un := jsonNode{Kind: KindUnitSection}
			if u.Heading != nil {
				un.Children = append(un.Children, leafNode(*u.Heading))
			}
			for _, rec := range u.Records {
				un.Children = append(un.Children, leafNode(rec))
			}
			gn.Children = append(gn.Children, un)
		}
		root.Children = append(root.Children, gn)
	}

	enc := json.NewEncoder(w)
	if r.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(jsonDoc{Title: title, Root: root})
}

func leafNode(el timeline.Element) jsonNode {
	return jsonNode{Kind: string(el.Type), Payload: el.Payload}
}
