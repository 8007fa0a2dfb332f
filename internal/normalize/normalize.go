// Package normalize brings a section list into canonical shape: required
// sections exist, reserved ids sit where they belong, and content follows the
// canonical inner markup. Normalizing twice changes nothing.
package normalize

import (
	"slices"
	"strings"

	"github.com/dgallion1/resumedoc/internal/section"
)

// Normalizer canonicalizes section lists.
type Normalizer struct {
	isTitle section.TitleMatcher
}

// New creates a normalizer. A nil matcher uses section.DefaultTitleMatcher.
func New(isTitle section.TitleMatcher) *Normalizer {
	if isTitle == nil {
		isTitle = section.DefaultTitleMatcher
	}
	return &Normalizer{isTitle: isTitle}
}

// Normalize normalizes with the default title vocabulary.
func Normalize(sections []section.Section) []section.Section {
	return New(nil).Normalize(sections)
}

// Document normalizes doc's sections and rebuilds its hierarchy.
func (n *Normalizer) Document(doc *section.Document) *section.Document {
	return section.NewDocument(n.Normalize(doc.Sections))
}

// Normalize returns the canonical form of sections. The input is not
// modified.
func (n *Normalizer) Normalize(sections []section.Section) []section.Section {
	out := slices.Clone(sections)
	out = ensureIDs(out)
	out = placeHeader(out)
	if len(out) == 1 {
		out = append(out, section.DefaultSections()...)
	}
	out = placeSummary(out)
	out = claimAnchorIDs(out)
	out = adoptOrphanRoles(out)

	for i := range out {
		switch out[i].Type {
		case section.TypeHeader:
			out[i].Content = strings.TrimSpace(out[i].Content)
		case section.TypeJobRole:
			out[i] = n.canonicalRole(out[i])
		default:
			out[i].Content = canonicalContent(out[i].Content)
		}
	}
	return out
}

// ensureIDs gives every section a non-empty id that no earlier section uses.
func ensureIDs(sections []section.Section) []section.Section {
	seen := make(map[string]bool, len(sections))
	for i := range sections {
		if !sections[i].Type.Valid() {
			sections[i].Type = section.TypeOther
		}
		if sections[i].ID == "" || seen[sections[i].ID] {
			sections[i].ID = section.NewID(sections[i].Type)
		}
		seen[sections[i].ID] = true
	}
	return sections
}

// placeHeader makes the first header the first section. Extra headers become
// OTHER; a missing header is synthesized.
func placeHeader(sections []section.Section) []section.Section {
	idx := -1
	for i := range sections {
		if sections[i].Type != section.TypeHeader {
			continue
		}
		if idx < 0 {
			idx = i
			continue
		}
		sections[i].Type = section.TypeOther
	}
	if idx < 0 {
		h := section.DefaultHeader()
		if section.IndexOf(sections, h.ID) >= 0 {
			h.ID = section.NewID(section.TypeHeader)
		}
		return slices.Insert(sections, 0, h)
	}
	h := sections[idx]
	h.ParentID = ""
	sections = slices.Delete(sections, idx, idx+1)
	return slices.Insert(sections, 0, h)
}

// placeSummary gives the first summary the reserved id and second position.
// Later summaries become OTHER.
func placeSummary(sections []section.Section) []section.Section {
	idx := -1
	for i := range sections {
		if sections[i].Type != section.TypeSummary {
			continue
		}
		if idx < 0 {
			idx = i
			continue
		}
		sections[i].Type = section.TypeOther
	}
	if idx < 0 {
		if j := section.IndexOf(sections, section.SummaryID); j >= 0 {
			sections = renameID(sections, j, section.NewID(sections[j].Type))
		}
		return sections
	}
	if sections[idx].ID != section.SummaryID {
		if j := section.IndexOf(sections, section.SummaryID); j >= 0 {
			sections = renameID(sections, j, section.NewID(sections[j].Type))
		}
		sections = renameID(sections, idx, section.SummaryID)
	}
	s := sections[idx]
	s.ParentID = ""
	sections = slices.Delete(sections, idx, idx+1)
	return slices.Insert(sections, 1, s)
}

// claimAnchorIDs moves each reserved anchor id onto the first section of its
// type. A reserved id held by a section of another type is released first.
func claimAnchorIDs(sections []section.Section) []section.Section {
	for _, id := range []string{section.ExperienceID, section.EducationID, section.SkillsID} {
		t, _ := section.AnchorType(id)
		first := slices.IndexFunc(sections, func(s section.Section) bool { return s.Type == t })
		holder := section.IndexOf(sections, id)
		if holder >= 0 && sections[holder].Type != t {
			sections = renameID(sections, holder, section.NewID(sections[holder].Type))
			holder = -1
		}
		if first >= 0 && holder < 0 {
			sections = renameID(sections, first, id)
		}
	}
	return sections
}

// adoptOrphanRoles attaches job roles without a resolvable parent to the first
// experience section, creating one before the first orphan when needed.
func adoptOrphanRoles(sections []section.Section) []section.Section {
	present := make(map[string]bool, len(sections))
	for _, s := range sections {
		present[s.ID] = true
	}
	firstOrphan := -1
	for i, s := range sections {
		if s.Type == section.TypeJobRole && (s.ParentID == "" || !present[s.ParentID]) {
			firstOrphan = i
			break
		}
	}
	if firstOrphan < 0 {
		return sections
	}

	parent := ""
	if i := slices.IndexFunc(sections, func(s section.Section) bool { return s.Type == section.TypeExperience }); i >= 0 {
		parent = sections[i].ID
	} else {
		anchor, _ := section.NewAnchor(section.ExperienceID)
		if present[anchor.ID] {
			anchor.ID = section.NewID(section.TypeExperience)
		}
		sections = slices.Insert(sections, firstOrphan, anchor)
		present[anchor.ID] = true
		parent = anchor.ID
	}
	for i := range sections {
		s := &sections[i]
		if s.Type == section.TypeJobRole && (s.ParentID == "" || !present[s.ParentID]) {
			s.ParentID = parent
		}
	}
	return sections
}

// renameID changes the id at index i and repoints its children.
func renameID(sections []section.Section, i int, id string) []section.Section {
	old := sections[i].ID
	sections[i].ID = id
	for j := range sections {
		if j != i && sections[j].ParentID == old {
			sections[j].ParentID = id
		}
	}
	return sections
}
