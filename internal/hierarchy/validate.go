package hierarchy

import (
	"fmt"
	"strings"

	"github.com/dgallion1/resumedoc/internal/section"
)

// ConsistencyError lists every invariant a document breaks.
type ConsistencyError struct {
	Problems []string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("document inconsistent: %s", strings.Join(e.Problems, "; "))
}

// Validate checks the document invariants: a single leading header, a
// reserved summary in second position, unique ids, resolvable parents, at
// most one summary, and a hierarchy that matches the flat list. It returns
// nil or a *ConsistencyError.
func Validate(doc *section.Document) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	sections := doc.Sections
	switch n := doc.Count(section.TypeHeader); {
	case n == 0:
		add("no header section")
	case n > 1:
		add("%d header sections", n)
	}
	if len(sections) > 0 && sections[0].Type != section.TypeHeader && doc.Count(section.TypeHeader) > 0 {
		add("header is not first")
	}

	if n := doc.Count(section.TypeSummary); n > 1 {
		add("%d summary sections", n)
	}
	if i := doc.Index(section.SummaryID); i >= 0 {
		if sections[i].Type != section.TypeSummary {
			add("reserved id %q used by %s section", section.SummaryID, sections[i].Type)
		}
		if i != 1 {
			add("summary at position %d, want 1", i)
		}
	} else if doc.Count(section.TypeSummary) > 0 {
		add("summary section without reserved id %q", section.SummaryID)
	}

	seen := make(map[string]bool, len(sections))
	for i, s := range sections {
		if s.ID == "" {
			add("section %d has no id", i)
			continue
		}
		if seen[s.ID] {
			add("duplicate id %q", s.ID)
		}
		seen[s.ID] = true
		if !s.Type.Valid() {
			add("section %q has unknown type %q", s.ID, s.Type)
		}
	}
	for _, s := range sections {
		if s.ParentID != "" && !seen[s.ParentID] {
			add("section %q references missing parent %q", s.ID, s.ParentID)
		}
		if s.ParentID == s.ID && s.ID != "" {
			add("section %q is its own parent", s.ID)
		}
	}

	if !doc.Hierarchy.Equal(section.BuildHierarchy(sections)) {
		add("hierarchy disagrees with flat list")
	}

	if len(problems) == 0 {
		return nil
	}
	return &ConsistencyError{Problems: problems}
}
