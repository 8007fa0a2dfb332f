package section

import "slices"

// Hierarchy maps a parent id to its children's ids in display order.
type Hierarchy map[string][]string

// BuildHierarchy derives the parent -> children index from the flat list.
// Children appear in the order they occupy in the flat list.
func BuildHierarchy(sections []Section) Hierarchy {
	h := make(Hierarchy)
	for _, s := range sections {
		if s.ParentID == "" {
			continue
		}
		h[s.ParentID] = append(h[s.ParentID], s.ID)
	}
	return h
}

// Clone returns a deep copy of h.
func (h Hierarchy) Clone() Hierarchy {
	out := make(Hierarchy, len(h))
	for k, v := range h {
		out[k] = slices.Clone(v)
	}
	return out
}

// Equal reports whether both indexes hold the same children in the same order.
// Parents with empty child lists are ignored.
func (h Hierarchy) Equal(other Hierarchy) bool {
	count := func(m Hierarchy) int {
		n := 0
		for _, v := range m {
			if len(v) > 0 {
				n++
			}
		}
		return n
	}
	if count(h) != count(other) {
		return false
	}
	for k, v := range h {
		if len(v) == 0 {
			continue
		}
		if !slices.Equal(v, other[k]) {
			return false
		}
	}
	return true
}

// Document is the flat ordered section list plus its derived hierarchy.
// The flat list is the source of truth for rendering order.
type Document struct {
	Sections  []Section `json:"sections"`
	Hierarchy Hierarchy `json:"hierarchy"`
}

// NewDocument copies sections and derives a consistent hierarchy for them.
func NewDocument(sections []Section) *Document {
	s := slices.Clone(sections)
	return &Document{Sections: s, Hierarchy: BuildHierarchy(s)}
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	if d == nil {
		return &Document{Hierarchy: Hierarchy{}}
	}
	h := d.Hierarchy
	if h == nil {
		h = BuildHierarchy(d.Sections)
	}
	return &Document{Sections: slices.Clone(d.Sections), Hierarchy: h.Clone()}
}

// Index returns the flat-list position of id, or -1.
func (d *Document) Index(id string) int {
	return IndexOf(d.Sections, id)
}

// Find returns the section with the given id.
func (d *Document) Find(id string) (Section, bool) {
	i := d.Index(id)
	if i < 0 {
		return Section{}, false
	}
	return d.Sections[i], true
}

// FirstOfType returns the first section of type t in display order.
func (d *Document) FirstOfType(t Type) (Section, bool) {
	for _, s := range d.Sections {
		if s.Type == t {
			return s, true
		}
	}
	return Section{}, false
}

// Count returns how many sections have type t.
func (d *Document) Count(t Type) int {
	n := 0
	for _, s := range d.Sections {
		if s.Type == t {
			n++
		}
	}
	return n
}

// IDs returns every section id in flat order.
func (d *Document) IDs() []string {
	ids := make([]string, len(d.Sections))
	for i, s := range d.Sections {
		ids[i] = s.ID
	}
	return ids
}

// IndexOf returns the position of id within sections, or -1.
func IndexOf(sections []Section, id string) int {
	for i, s := range sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}
