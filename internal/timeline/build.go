package timeline

import (
	"errors"
	"fmt"
)

// ErrUnknownElementType reports an input element whose type is outside the
// closed enumeration. The offending index and type value are attached by
// Build via error wrapping.
var ErrUnknownElementType = errors.New("unknown element type")

// Build converts a flat, ordered element sequence into a two-level section
// tree in a single pass. Section boundaries are inferred purely from type
// transitions:
//
//   - group-heading closes both open sections and starts a new group section
//     with the heading as its first leaf.
//   - unit-heading closes the open unit section only, opening an anonymous
//     group section first if none is open, and starts a new unit section with
//     the heading as its first leaf.
//   - record lands in the open unit section, opening anonymous group/unit
//     sections first if needed. A run of records shares one unit section.
//
// Sections are only ever created together with their first child, so no
// empty section is materialized, and a heading leaf is always first in its
// section. The input slice is not mutated; leaves share payload maps with
// the input elements.
//
// Build is total over the closed type set: any sequence of valid elements,
// including the empty one, produces a tree. An element with an unknown type
// fails the whole call with ErrUnknownElementType.
func Build(elements []Element) (*Tree, error) {
	tree := &Tree{}

	// Open path: the at most two branch nodes still eligible to receive
	// children. openUnit, when set, is the last unit of openGroup.
	var (
		openGroup *GroupSection
		openUnit  *UnitSection
	)

	for i := range elements {
		el := elements[i]
		switch el.Type {
		case GroupHeading:
			g := &GroupSection{Heading: &el}
			tree.Groups = append(tree.Groups, g)
			openGroup, openUnit = g, nil

		case UnitHeading:
			if openGroup == nil {
				openGroup = &GroupSection{}
				tree.Groups = append(tree.Groups, openGroup)
			}
			u := &UnitSection{Heading: &el}
			openGroup.Units = append(openGroup.Units, u)
			openUnit = u

		case Record:
			if openUnit == nil {
				if openGroup == nil {
					openGroup = &GroupSection{}
					tree.Groups = append(tree.Groups, openGroup)
				}
				openUnit = &UnitSection{}
				openGroup.Units = append(openGroup.Units, openUnit)
			}
			openUnit.Records = append(openUnit.Records, el)

		default:
			return nil, fmt.Errorf("element %d: %w: %q", i, ErrUnknownElementType, string(el.Type))
		}
	}

	return tree, nil
}
