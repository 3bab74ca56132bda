package render

import "github.com/dgallion1/timegrid/internal/timeline"

// Page is one presentational slice of a timeline tree.
type Page struct {
	Index int
	Tree  *timeline.Tree
}

// Paginate splits a tree into pages holding at most maxRecords record
// leaves each, for rendering very long timelines. Section boundaries are
// preserved where possible; a section whose records span a page break
// continues on the next page as a headingless section. Headings do not
// count toward the record budget. maxRecords <= 0 yields a single page
// holding the whole tree.
//
// Pages are shallow copies: record elements and heading pointers are shared
// with the source tree, which stays unmodified.
func Paginate(t *timeline.Tree, maxRecords int) []Page {
	if maxRecords <= 0 {
		return []Page{{Index: 0, Tree: t}}
	}

	var pages []Page
	cur := &timeline.Tree{}
	count := 0
	var curGroup *timeline.GroupSection
	var curUnit *timeline.UnitSection

	flush := func() {
		pages = append(pages, Page{Index: len(pages), Tree: cur})
		cur = &timeline.Tree{}
		count = 0
	}

	for _, g := range t.Groups {
		// A fresh group on an exhausted page starts the next page instead,
		// keeping its heading with its content.
		if count >= maxRecords {
			flush()
		}
		curGroup = &timeline.GroupSection{Heading: g.Heading}
		cur.Groups = append(cur.Groups, curGroup)
		for _, u := range g.Units {
			if count >= maxRecords {
				flush()
				// The unit's group heading already appeared on an earlier
				// page; continue it anonymously.
				curGroup = &timeline.GroupSection{}
				cur.Groups = append(cur.Groups, curGroup)
			}
			curUnit = &timeline.UnitSection{Heading: u.Heading}
			curGroup.Units = append(curGroup.Units, curUnit)
			for _, rec := range u.Records {
				if count >= maxRecords {
					flush()
					// Mid-unit break: both continuation sections are headingless.
					curGroup = &timeline.GroupSection{}
					cur.Groups = append(cur.Groups, curGroup)
					curUnit = &timeline.UnitSection{}
					curGroup.Units = append(curGroup.Units, curUnit)
				}
				curUnit.Records = append(curUnit.Records, rec)
				count++
			}
		}
	}

	if len(cur.Groups) > 0 || len(pages) == 0 {
		pages = append(pages, Page{Index: len(pages), Tree: cur})
	}
	return pages
}
