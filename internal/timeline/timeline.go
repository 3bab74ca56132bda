package timeline

// ElementType tags one flat input item. The set is closed: anything else is
// rejected by Build.
type ElementType string

const (
	GroupHeading ElementType = "group-heading"
	UnitHeading  ElementType = "unit-heading"
	Record       ElementType = "record"
)

// Valid reports whether t is a member of the closed type set.
func (t ElementType) Valid() bool {
	switch t {
	case GroupHeading, UnitHeading, Record:
		return true
	}
	return false
}

// Element is one flat input item: a type tag plus opaque payload fields
// (title, body, date, media reference, ...). The builder carries Payload
// through untouched and never inspects it.
type Element struct {
	Type    ElementType
	Payload map[string]string
}

// Field returns a payload field, or "" if absent.
func (e Element) Field(key string) string {
	return e.Payload[key]
}

// Tree is the built two-level timeline document: ordered group sections,
// each holding ordered unit sections, each holding record leaves.
// A Tree is immutable once Build returns it.
type Tree struct {
	Groups []*GroupSection
}

// GroupSection is a top-level section. When Heading is set it is the
// section's first leaf; Units follow in input order.
type GroupSection struct {
	Heading *Element // group-heading leaf, nil for anonymous sections
	Units   []*UnitSection
}

// UnitSection is a second-level section. When Heading is set it is the
// section's first leaf; Records follow in input order.
type UnitSection struct {
	Heading *Element // unit-heading leaf, nil for anonymous sections
	Records []Element
}

// Leaves returns the pre-order sequence of leaf elements. For a tree
// produced by Build this reproduces the input sequence exactly.
func (t *Tree) Leaves() []Element {
	var out []Element
	for _, g := range t.Groups {
		if g.Heading != nil {
			out = append(out, *g.Heading)
		}
		for _, u := range g.Units {
			if u.Heading != nil {
				out = append(out, *u.Heading)
			}
			out = append(out, u.Records...)
		}
	}
	return out
}

// Counts returns the number of group sections, unit sections and record
// leaves in the tree.
func (t *Tree) Counts() (groups, units, records int) {
	groups = len(t.Groups)
	for _, g := range t.Groups {
		units += len(g.Units)
		for _, u := range g.Units {
			records += len(u.Records)
		}
	}
	return groups, units, records
}
