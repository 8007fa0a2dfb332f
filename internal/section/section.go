// Package section defines the resume document model: typed sections held in a
// single ordered list, plus the parent -> children index derived from it.
package section

import (
	"strings"

	"github.com/google/uuid"
)

// Type is the closed vocabulary of section kinds.
type Type string

const (
	TypeHeader         Type = "HEADER"
	TypeSummary        Type = "SUMMARY"
	TypeExperience     Type = "EXPERIENCE"
	TypeJobRole        Type = "JOB_ROLE"
	TypeEducation      Type = "EDUCATION"
	TypeSkills         Type = "SKILLS"
	TypeCertifications Type = "CERTIFICATIONS"
	TypeProjects       Type = "PROJECTS"
	TypeOther          Type = "OTHER"
)

// Types lists every valid Type in display-vocabulary order.
var Types = []Type{
	TypeHeader, TypeSummary, TypeExperience, TypeJobRole, TypeEducation,
	TypeSkills, TypeCertifications, TypeProjects, TypeOther,
}

// Valid reports whether t is part of the vocabulary.
func (t Type) Valid() bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

// ParseType resolves a type name case-insensitively ("job_role", "Skills").
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if t.Valid() {
		return t, true
	}
	return "", false
}

// Reserved section ids.
const (
	HeaderID     = "header"
	SummaryID    = "summary"
	ExperienceID = "experience"
	EducationID  = "education"
	SkillsID     = "skills"
)

var anchors = map[string]struct {
	typ   Type
	title string
}{
	ExperienceID: {TypeExperience, "Experience"},
	EducationID:  {TypeEducation, "Education"},
	SkillsID:     {TypeSkills, "Skills"},
}

// IsAnchorID reports whether id is one of the fixed anchor ids.
func IsAnchorID(id string) bool {
	_, ok := anchors[id]
	return ok
}

// AnchorType returns the section type owning a fixed anchor id.
func AnchorType(id string) (Type, bool) {
	a, ok := anchors[id]
	return a.typ, ok
}

// AnchorID returns the fixed id reserved for t, if t is an anchor type.
func AnchorID(t Type) (string, bool) {
	for id, a := range anchors {
		if a.typ == t {
			return id, true
		}
	}
	return "", false
}

// Section is one editable unit of resume content.
type Section struct {
	ID       string `json:"id"`
	Type     Type   `json:"type"`
	Title    string `json:"title"`               // Display name; the job title for JOB_ROLE
	Content  string `json:"content"`             // HTML fragment
	ParentID string `json:"parent_id,omitempty"` // Empty for top-level sections
}

// IsTopLevel reports whether s declares no parent.
func (s Section) IsTopLevel() bool {
	return s.ParentID == ""
}

// NewID returns a fresh, never reused section id.
func NewID(t Type) string {
	prefix := "section"
	switch t {
	case TypeJobRole:
		prefix = "role"
	case TypeHeader, TypeSummary, TypeExperience, TypeEducation, TypeSkills,
		TypeCertifications, TypeProjects, TypeOther:
		prefix = strings.ToLower(string(t))
	}
	return prefix + "-" + uuid.NewString()
}

// NewAnchor builds the empty anchor section for a fixed anchor id.
func NewAnchor(id string) (Section, bool) {
	a, ok := anchors[id]
	if !ok {
		return Section{}, false
	}
	return Section{ID: id, Type: a.typ, Title: a.title}, true
}
