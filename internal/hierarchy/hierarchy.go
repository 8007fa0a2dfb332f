// Package hierarchy keeps a section list and its parent -> children index
// consistent under reordering, insertion and deletion.
package hierarchy

import (
	"slices"

	"github.com/dgallion1/resumedoc/internal/section"
)

// Manager owns one document. Every mutation builds the new flat list on a
// copy and commits it together with a rebuilt hierarchy, so a rejected
// operation leaves the document untouched. A Manager is not safe for
// concurrent use.
type Manager struct {
	doc   *section.Document
	newID func(section.Type) string
}

// New wraps a copy of doc. The hierarchy is re-derived from the flat list.
func New(doc *section.Document) *Manager {
	d := doc.Clone()
	d.Hierarchy = section.BuildHierarchy(d.Sections)
	return &Manager{doc: d, newID: section.NewID}
}

// Document returns a copy of the current document.
func (m *Manager) Document() *section.Document {
	return m.doc.Clone()
}

func (m *Manager) commit(sections []section.Section) {
	m.doc = section.NewDocument(sections)
}

// CanMove is false for the header and the reserved summary.
func CanMove(s section.Section) bool {
	return s.Type != section.TypeHeader && s.ID != section.SummaryID
}

// ChildrenOf returns the children of parentID in display order. Ids listed
// in h that are missing from sections are skipped, and children present in
// the flat list but absent from h follow in flat order.
func ChildrenOf(sections []section.Section, h section.Hierarchy, parentID string) []section.Section {
	var out []section.Section
	seen := make(map[string]bool)
	for _, id := range h[parentID] {
		i := section.IndexOf(sections, id)
		if i < 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, sections[i])
	}
	for _, s := range sections {
		if s.ParentID == parentID && !seen[s.ID] {
			seen[s.ID] = true
			out = append(out, s)
		}
	}
	return out
}

// ChildrenOf returns the children of parentID.
func (m *Manager) ChildrenOf(parentID string) []section.Section {
	return ChildrenOf(m.doc.Sections, m.doc.Hierarchy, parentID)
}

// MoveUp moves id one step toward the top. It reports whether anything moved;
// a section already at its boundary is a no-op.
func (m *Manager) MoveUp(id string) (bool, error) {
	return m.move(id, -1)
}

// MoveDown moves id one step toward the bottom.
func (m *Manager) MoveDown(id string) (bool, error) {
	return m.move(id, 1)
}

func (m *Manager) move(id string, delta int) (bool, error) {
	sections := m.doc.Sections
	idx := section.IndexOf(sections, id)
	if idx < 0 {
		return false, &section.NotFoundError{ID: id}
	}
	s := sections[idx]
	if !CanMove(s) {
		return false, &section.InvariantViolation{
			Reason: section.ReasonFixedSection, SectionID: id, Message: "header and summary keep their position",
		}
	}
	if s.ParentID != "" && section.IndexOf(sections, s.ParentID) >= 0 {
		return m.moveSibling(idx, delta), nil
	}
	return m.moveTopLevel(idx, delta), nil
}

// moveSibling swaps a child with its previous or next sibling.
func (m *Manager) moveSibling(idx, delta int) bool {
	sections := m.doc.Sections
	parent := sections[idx].ParentID
	var siblings []int
	pos := -1
	for i, s := range sections {
		if s.ParentID != parent {
			continue
		}
		if i == idx {
			pos = len(siblings)
		}
		siblings = append(siblings, i)
	}
	target := pos + delta
	if target < 0 || target >= len(siblings) {
		return false
	}
	next := slices.Clone(sections)
	a, b := siblings[pos], siblings[target]
	next[a], next[b] = next[b], next[a]
	m.commit(next)
	return true
}

// unit is a top-level section together with all of its descendants.
type unit struct {
	root    section.Section
	members []section.Section
}

// moveTopLevel swaps the section's unit with the nearest movable unit in the
// given direction. Fixed units are never passed over.
func (m *Manager) moveTopLevel(idx, delta int) bool {
	units := topLevelUnits(m.doc.Sections)
	id := m.doc.Sections[idx].ID
	u := slices.IndexFunc(units, func(x unit) bool { return x.root.ID == id })
	if u < 0 {
		return false
	}
	target := u + delta
	if target < 0 || target >= len(units) || !CanMove(units[target].root) {
		return false
	}
	units[u], units[target] = units[target], units[u]

	next := make([]section.Section, 0, len(m.doc.Sections))
	for _, x := range units {
		next = append(next, x.members...)
	}
	m.commit(next)
	return true
}

// topLevelUnits groups the flat list into top-level blocks. A section whose
// parent is missing counts as top-level. Descendants keep their relative
// flat order and follow their root.
func topLevelUnits(sections []section.Section) []unit {
	present := make(map[string]bool, len(sections))
	for _, s := range sections {
		present[s.ID] = true
	}
	rootOf := func(s section.Section) string {
		seen := map[string]bool{}
		for s.ParentID != "" && present[s.ParentID] && !seen[s.ID] {
			seen[s.ID] = true
			s = sections[section.IndexOf(sections, s.ParentID)]
		}
		return s.ID
	}

	var units []unit
	pos := map[string]int{}
	for _, s := range sections {
		if s.ParentID == "" || !present[s.ParentID] {
			pos[s.ID] = len(units)
			units = append(units, unit{root: s})
		}
	}
	for _, s := range sections {
		i, ok := pos[rootOf(s)]
		if !ok {
			// Parent cycle with no top-level root; keep it in place as its own unit.
			pos[s.ID] = len(units)
			units = append(units, unit{root: s})
			i = pos[s.ID]
		}
		units[i].members = append(units[i].members, s)
	}
	return units
}

// Remove deletes id unless doing so would break a document invariant.
func (m *Manager) Remove(id string) error {
	sections := m.doc.Sections
	idx := section.IndexOf(sections, id)
	if idx < 0 {
		return &section.NotFoundError{ID: id}
	}
	s := sections[idx]
	switch {
	case s.Type == section.TypeHeader || s.ID == section.SummaryID:
		return &section.InvariantViolation{
			Reason: section.ReasonFixedSection, SectionID: id, Message: "header and summary cannot be deleted",
		}
	case section.IsAnchorID(s.ID):
		return &section.InvariantViolation{
			Reason: section.ReasonAnchorInUse, SectionID: id, Message: "anchor sections cannot be deleted",
		}
	case s.Type == section.TypeJobRole && m.doc.Count(section.TypeJobRole) == 1:
		return &section.InvariantViolation{
			Reason: section.ReasonLastJobRole, SectionID: id, Message: "a resume needs at least one job role",
		}
	case len(ChildrenOf(sections, m.doc.Hierarchy, id)) > 0:
		return &section.InvariantViolation{
			Reason: section.ReasonAnchorInUse, SectionID: id, Message: "section still has children",
		}
	}
	next := slices.Delete(slices.Clone(sections), idx, idx+1)
	m.commit(next)
	return nil
}

// AddChild inserts s under parentID after the parent's last descendant. A
// missing experience, education or skills anchor is created first. The
// inserted section is returned with its assigned id and parent.
func (m *Manager) AddChild(parentID string, s section.Section) (section.Section, error) {
	next := slices.Clone(m.doc.Sections)
	if section.IndexOf(next, parentID) < 0 {
		anchor, ok := section.NewAnchor(parentID)
		if !ok {
			return section.Section{}, &section.NotFoundError{ID: parentID}
		}
		next = slices.Insert(next, anchorIndex(next, anchor.Type), anchor)
	}
	if err := m.prepare(next, &s); err != nil {
		return section.Section{}, err
	}
	s.ParentID = parentID

	at := lastDescendant(next, parentID) + 1
	next = slices.Insert(next, at, s)
	m.commit(next)
	return s, nil
}

// AddSection appends a top-level section. A header goes first and a summary
// second; each may exist only once. Anchor types take their reserved id when
// it is free.
func (m *Manager) AddSection(s section.Section) (section.Section, error) {
	next := slices.Clone(m.doc.Sections)
	s.ParentID = ""
	switch s.Type {
	case section.TypeHeader:
		if slices.ContainsFunc(next, func(x section.Section) bool { return x.Type == section.TypeHeader }) {
			return section.Section{}, &section.InvariantViolation{
				Reason: section.ReasonFixedSection, SectionID: section.HeaderID, Message: "document already has a header",
			}
		}
		if s.ID == "" {
			s.ID = section.HeaderID
		}
	case section.TypeSummary:
		if slices.ContainsFunc(next, func(x section.Section) bool { return x.Type == section.TypeSummary }) {
			return section.Section{}, &section.InvariantViolation{
				Reason: section.ReasonFixedSection, SectionID: section.SummaryID, Message: "document already has a summary",
			}
		}
		s.ID = section.SummaryID
	default:
		if id, ok := section.AnchorID(s.Type); ok && s.ID == "" && section.IndexOf(next, id) < 0 {
			s.ID = id
		}
	}
	if err := m.prepare(next, &s); err != nil {
		return section.Section{}, err
	}

	switch s.Type {
	case section.TypeHeader:
		next = slices.Insert(next, 0, s)
	case section.TypeSummary:
		at := 0
		if len(next) > 0 && next[0].Type == section.TypeHeader {
			at = 1
		}
		next = slices.Insert(next, at, s)
	default:
		next = append(next, s)
	}
	m.commit(next)
	return s, nil
}

// Update replaces the title and content of id. Type, id and parent are kept.
func (m *Manager) Update(id, title, content string) (section.Section, error) {
	idx := m.doc.Index(id)
	if idx < 0 {
		return section.Section{}, &section.NotFoundError{ID: id}
	}
	next := slices.Clone(m.doc.Sections)
	next[idx].Title = title
	next[idx].Content = content
	m.commit(next)
	return next[idx], nil
}

func (m *Manager) prepare(sections []section.Section, s *section.Section) error {
	if s.Type == "" {
		s.Type = section.TypeOther
	}
	if s.ID == "" {
		s.ID = m.newID(s.Type)
	}
	if section.IndexOf(sections, s.ID) >= 0 {
		return &section.InvariantViolation{
			Reason: section.ReasonDuplicateID, SectionID: s.ID, Message: "section id already in use",
		}
	}
	return nil
}

// anchorIndex places a synthesized experience anchor right after the fixed
// header/summary prefix and other anchors at the end.
func anchorIndex(sections []section.Section, t section.Type) int {
	if t != section.TypeExperience {
		return len(sections)
	}
	i := 0
	for i < len(sections) && !CanMove(sections[i]) {
		i++
	}
	return i
}

func lastDescendant(sections []section.Section, parentID string) int {
	last := section.IndexOf(sections, parentID)
	desc := map[string]bool{parentID: true}
	for i, s := range sections {
		if s.ParentID != "" && desc[s.ParentID] {
			desc[s.ID] = true
			if i > last {
				last = i
			}
		}
	}
	return last
}
