package timeline

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func el(t ElementType, title string) Element {
	return Element{Type: t, Payload: map[string]string{"title": title}}
}

// shape asserts the group/unit structure of a tree: for each group, whether
// it has a heading and, per unit, whether the unit has a heading and how
// many records it holds.
type unitShape struct {
	headed  bool
	records int
}

type groupShape struct {
	headed bool
	units  []unitShape
}

func assertShape(t *testing.T, tree *Tree, want []groupShape) {
	t.Helper()
	if len(tree.Groups) != len(want) {
		t.Fatalf("expected %d group sections, got %d", len(want), len(tree.Groups))
	}
	for gi, g := range tree.Groups {
		w := want[gi]
		if (g.Heading != nil) != w.headed {
			t.Errorf("group[%d]: headed=%v, want %v", gi, g.Heading != nil, w.headed)
		}
		if len(g.Units) != len(w.units) {
			t.Fatalf("group[%d]: expected %d unit sections, got %d", gi, len(w.units), len(g.Units))
		}
		for ui, u := range g.Units {
			wu := w.units[ui]
			if (u.Heading != nil) != wu.headed {
				t.Errorf("group[%d].unit[%d]: headed=%v, want %v", gi, ui, u.Heading != nil, wu.headed)
			}
			if len(u.Records) != wu.records {
				t.Errorf("group[%d].unit[%d]: expected %d records, got %d", gi, ui, wu.records, len(u.Records))
			}
		}
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	tree, err := Build(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Groups) != 0 {
		t.Errorf("expected 0 group sections for empty input, got %d", len(tree.Groups))
	}
	if got := tree.Leaves(); len(got) != 0 {
		t.Errorf("expected 0 leaves, got %d", len(got))
	}
}

func TestBuild_CanonicalTwoGroups(t *testing.T) {
	// group-heading, unit-heading, record, record, group-heading, unit-heading, record
	tree, err := Build([]Element{
		el(GroupHeading, "1910s"),
		el(UnitHeading, "1912"),
		el(Record, "a"),
		el(Record, "b"),
		el(GroupHeading, "1920s"),
		el(UnitHeading, "1921"),
		el(Record, "c"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertShape(t, tree, []groupShape{
		{headed: true, units: []unitShape{{headed: true, records: 2}}},
		{headed: true, units: []unitShape{{headed: true, records: 1}}},
	})
	if got := tree.Groups[0].Heading.Field("title"); got != "1910s" {
		t.Errorf("expected first group heading %q, got %q", "1910s", got)
	}
	if got := tree.Groups[1].Units[0].Heading.Field("title"); got != "1921" {
		t.Errorf("expected second unit heading %q, got %q", "1921", got)
	}
}

func TestBuild_LeadingUnheadedRecords(t *testing.T) {
	// record, record, group-heading, unit-heading, record
	tree, err := Build([]Element{
		el(Record, "a"),
		el(Record, "b"),
		el(GroupHeading, "Later"),
		el(UnitHeading, "1950"),
		el(Record, "c"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertShape(t, tree, []groupShape{
		{headed: false, units: []unitShape{{headed: false, records: 2}}},
		{headed: true, units: []unitShape{{headed: true, records: 1}}},
	})
}

func TestBuild_UnitHeadingWithoutGroupHeading(t *testing.T) {
	tree, err := Build([]Element{
		el(UnitHeading, "1950"),
		el(Record, "a"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertShape(t, tree, []groupShape{
		{headed: false, units: []unitShape{{headed: true, records: 1}}},
	})
}

func TestBuild_RecordDirectlyUnderGroupHeading(t *testing.T) {
	// The record gets an anonymous unit section inside the headed group.
	tree, err := Build([]Element{
		el(GroupHeading, "1910s"),
		el(Record, "a"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertShape(t, tree, []groupShape{
		{headed: true, units: []unitShape{{headed: false, records: 1}}},
	})
}

func TestBuild_TrailingGroupHeading(t *testing.T) {
	// record, group-heading: the trailing group section holds only its heading.
	tree, err := Build([]Element{
		el(Record, "a"),
		el(GroupHeading, "1910s"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertShape(t, tree, []groupShape{
		{headed: false, units: []unitShape{{headed: false, records: 1}}},
		{headed: true, units: nil},
	})
}

func TestBuild_ConsecutiveGroupHeadingsNeverMerge(t *testing.T) {
	tree, err := Build([]Element{
		el(GroupHeading, "one"),
		el(GroupHeading, "two"),
		el(GroupHeading, "three"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Groups) != 3 {
		t.Fatalf("expected 3 group sections, got %d", len(tree.Groups))
	}
	for i, g := range tree.Groups {
		if g.Heading == nil || len(g.Units) != 0 {
			t.Errorf("group[%d]: expected heading-only section", i)
		}
	}
}

func TestBuild_RecordRunSharesOneUnit(t *testing.T) {
	tree, err := Build([]Element{
		el(UnitHeading, "1950"),
		el(Record, "a"),
		el(Record, "b"),
		el(Record, "c"),
		el(Record, "d"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertShape(t, tree, []groupShape{
		{headed: false, units: []unitShape{{headed: true, records: 4}}},
	})
}

func TestBuild_GroupHeadingClosesOpenUnit(t *testing.T) {
	// After a new group heading, a record must not land in the old unit.
	tree, err := Build([]Element{
		el(UnitHeading, "1950"),
		el(Record, "a"),
		el(GroupHeading, "Later"),
		el(Record, "b"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertShape(t, tree, []groupShape{
		{headed: false, units: []unitShape{{headed: true, records: 1}}},
		{headed: true, units: []unitShape{{headed: false, records: 1}}},
	})
}

func TestBuild_PreservesLeafOrder(t *testing.T) {
	inputs := [][]Element{
		nil,
		{el(Record, "a")},
		{el(GroupHeading, "g")},
		{el(GroupHeading, "g"), el(UnitHeading, "u"), el(Record, "a"), el(Record, "b")},
		{el(Record, "a"), el(UnitHeading, "u"), el(Record, "b"), el(GroupHeading, "g"), el(Record, "c")},
		{el(UnitHeading, "u1"), el(UnitHeading, "u2"), el(GroupHeading, "g"), el(GroupHeading, "h"), el(Record, "x")},
	}
	for i, input := range inputs {
		tree, err := Build(input)
		if err != nil {
			t.Fatalf("input %d: unexpected error: %v", i, err)
		}
		leaves := tree.Leaves()
		if len(leaves) != len(input) {
			t.Fatalf("input %d: expected %d leaves, got %d", i, len(input), len(leaves))
		}
		for j := range input {
			if !reflect.DeepEqual(leaves[j], input[j]) {
				t.Errorf("input %d: leaf[%d] = %+v, want %+v", i, j, leaves[j], input[j])
			}
		}
	}
}

func TestBuild_NoEmptySections(t *testing.T) {
	tree, err := Build([]Element{
		el(GroupHeading, "g"),
		el(GroupHeading, "h"),
		el(UnitHeading, "u"),
		el(Record, "a"),
		el(UnitHeading, "v"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for gi, g := range tree.Groups {
		if g.Heading == nil && len(g.Units) == 0 {
			t.Errorf("group[%d] is empty", gi)
		}
		for ui, u := range g.Units {
			if u.Heading == nil && len(u.Records) == 0 {
				t.Errorf("group[%d].unit[%d] is empty", gi, ui)
			}
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	input := []Element{
		el(Record, "a"),
		el(GroupHeading, "g"),
		el(UnitHeading, "u"),
		el(Record, "b"),
		el(Record, "c"),
		el(UnitHeading, "v"),
	}
	t1, err := Build(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t2, err := Build(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(t1, t2) {
		t.Error("expected structurally identical trees from identical input")
	}
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	input := []Element{
		el(GroupHeading, "g"),
		el(Record, "a"),
	}
	snapshot := make([]Element, len(input))
	copy(snapshot, input)

	if _, err := Build(input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(input, snapshot) {
		t.Error("input slice was mutated")
	}
}

func TestBuild_UnknownElementType(t *testing.T) {
	_, err := Build([]Element{
		el(GroupHeading, "g"),
		el(Record, "a"),
		{Type: "banner", Payload: map[string]string{"title": "x"}},
	})
	if err == nil {
		t.Fatal("expected error for unknown element type")
	}
	if !errors.Is(err, ErrUnknownElementType) {
		t.Errorf("expected ErrUnknownElementType, got %v", err)
	}
	if !strings.Contains(err.Error(), "element 2") {
		t.Errorf("expected offending index in error, got %q", err)
	}
	if !strings.Contains(err.Error(), "banner") {
		t.Errorf("expected offending type in error, got %q", err)
	}
}

func TestBuild_Counts(t *testing.T) {
	tree, err := Build([]Element{
		el(Record, "a"),
		el(GroupHeading, "g"),
		el(UnitHeading, "u"),
		el(Record, "b"),
		el(Record, "c"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	groups, units, records := tree.Counts()
	if groups != 2 || units != 2 || records != 3 {
		t.Errorf("expected counts 2/2/3, got %d/%d/%d", groups, units, records)
	}
}

func TestElementType_Valid(t *testing.T) {
	for _, typ := range []ElementType{GroupHeading, UnitHeading, Record} {
		if !typ.Valid() {
			t.Errorf("expected %q to be valid", typ)
		}
	}
	for _, typ := range []ElementType{"", "banner", "group-flag"} {
		if typ.Valid() {
			t.Errorf("expected %q to be invalid", typ)
		}
	}
}
