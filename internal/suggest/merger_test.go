package suggest

import (
	"errors"
	"testing"

	"github.com/dgallion1/resumedoc/internal/hierarchy"
	"github.com/dgallion1/resumedoc/internal/section"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header() section.Section {
	return section.Section{ID: section.HeaderID, Type: section.TypeHeader, Content: "<h1>Jane Doe</h1>"}
}

func experience() section.Section {
	return section.Section{ID: section.ExperienceID, Type: section.TypeExperience, Title: "Experience"}
}

func role(id, title, content string) section.Section {
	return section.Section{ID: id, Type: section.TypeJobRole, Title: title, Content: content, ParentID: section.ExperienceID}
}

func twoRoles() *section.Document {
	return section.NewDocument([]section.Section{
		header(),
		experience(),
		role("r1", "Engineer", "<h3>Engineer, Acme | 2020 – 2023</h3><ul><li>Old</li></ul>"),
		role("r2", "Analyst", "<h3>Analyst</h3><p>Initech | 2018</p><ul><li>Reports</li></ul>"),
	})
}

func TestApply_SummaryInsertedAfterHeader(t *testing.T) {
	doc := section.NewDocument([]section.Section{
		header(),
		experience(),
		role("r1", "Engineer", "<h3>Engineer</h3>"),
	})
	res, err := NewMerger(nil).Apply(doc, section.TypeSummary, "<ul><li>New pitch</li></ul>", Hints{})
	require.NoError(t, err)

	assert.True(t, res.Created)
	assert.Equal(t, section.SummaryID, res.SectionID)
	require.Len(t, res.Document.Sections, 4)
	got := res.Document.Sections[1]
	assert.Equal(t, section.SummaryID, got.ID)
	assert.Equal(t, section.TypeSummary, got.Type)
	assert.Equal(t, "<ul><li>New pitch</li></ul>", got.Content)
	assert.NoError(t, hierarchy.Validate(res.Document))

	assert.Len(t, doc.Sections, 3, "input document is untouched")
}

func TestApply_SummaryReplacesExisting(t *testing.T) {
	doc := section.NewDocument([]section.Section{
		header(),
		{ID: section.SummaryID, Type: section.TypeSummary, Title: "Professional Summary", Content: "<p>Old.</p>"},
	})
	res, err := NewMerger(nil).Apply(doc, section.TypeSummary, "Shipped things.", Hints{})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.True(t, res.Changed)
	assert.Equal(t, "<p>Shipped things.</p>", res.Document.Sections[1].Content)
	assert.Len(t, res.Document.Sections, 2)
}

func TestApply_SummaryMatchedByTitle(t *testing.T) {
	doc := section.NewDocument([]section.Section{
		header(),
		{ID: "about", Type: section.TypeOther, Title: "About Me", Content: "<p>Old.</p>"},
	})
	res, err := NewMerger(nil).Apply(doc, section.TypeSummary, "<p>New.</p>", Hints{})
	require.NoError(t, err)
	assert.Equal(t, "about", res.SectionID)
	assert.False(t, res.Created)
	assert.Equal(t, 0, res.Document.Count(section.TypeSummary))
}

func TestApply_RoleKeepsHeading(t *testing.T) {
	suggested := "<h3>CEO, Evil Corp | 1999</h3><ul><li>New one</li><li>New two</li></ul>"
	res, err := NewMerger(nil).Apply(twoRoles(), section.TypeJobRole, suggested, Hints{DirectRoleID: "r1"})
	require.NoError(t, err)

	got, ok := res.Document.Find("r1")
	require.True(t, ok)
	assert.Equal(t, "<h3>Engineer, Acme | 2020 – 2023</h3><ul><li>New one</li><li>New two</li></ul>", got.Content)
	assert.Equal(t, "Engineer", got.Title)
	assert.Equal(t, twoRoles().IDs(), res.Document.IDs(), "order is unchanged")
}

func TestApply_RoleKeepsMetaLine(t *testing.T) {
	res, err := NewMerger(nil).Apply(twoRoles(), section.TypeJobRole, "- a\n- b", Hints{DirectRoleID: "r2"})
	require.NoError(t, err)
	got, _ := res.Document.Find("r2")
	assert.Equal(t, "<h3>Analyst</h3><p>Initech | 2018</p><ul><li>a</li><li>b</li></ul>", got.Content)
}

func TestApply_RoleFromParagraphsSkipsRoleLines(t *testing.T) {
	suggested := "<p>Engineer, Acme | 2020</p><p>Did a thing</p>"
	res, err := NewMerger(nil).Apply(twoRoles(), section.TypeJobRole, suggested, Hints{DirectRoleID: "r1"})
	require.NoError(t, err)
	got, _ := res.Document.Find("r1")
	assert.Equal(t, "<h3>Engineer, Acme | 2020 – 2023</h3><ul><li>Did a thing</li></ul>", got.Content)
}

func TestApply_RoleWithoutItemsIsUnchanged(t *testing.T) {
	doc := twoRoles()
	res, err := NewMerger(nil).Apply(doc, section.TypeJobRole, "<h3>Only a heading</h3>", Hints{DirectRoleID: "r1"})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	got, _ := res.Document.Find("r1")
	assert.Equal(t, doc.Sections[2].Content, got.Content)
}

func TestResolve_Roles(t *testing.T) {
	m := NewMerger(nil)
	tests := []struct {
		name  string
		hints Hints
		want  string
	}{
		{"no hints takes first role", Hints{}, "r1"},
		{"direct id", Hints{DirectRoleID: "r2"}, "r2"},
		{"unknown direct id falls back", Hints{DirectRoleID: "nope", Company: "initech"}, "r2"},
		{"position", Hints{Position: "analyst"}, "r2"},
		{"company", Hints{Company: "ACME"}, "r1"},
		{"both", Hints{Position: "Engineer", Company: "Acme"}, "r1"},
		{"position beats company", Hints{Position: "Analyst", Company: "Acme"}, "r2"},
		{"no match falls back to first", Hints{Position: "Chef"}, "r1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := m.Resolve(twoRoles(), section.TypeJobRole, tt.hints)
			require.True(t, ok)
			assert.Equal(t, tt.want, s.ID)
		})
	}
}

func TestApply_NoRolesCreatesOne(t *testing.T) {
	doc := section.NewDocument([]section.Section{header()})
	res, err := NewMerger(nil).Apply(doc, section.TypeJobRole, "<ul><li>Built X</li></ul>", Hints{})
	require.NoError(t, err)
	assert.True(t, res.Created)

	exp, ok := res.Document.Find(section.ExperienceID)
	require.True(t, ok, "experience anchor is synthesized")
	assert.Equal(t, section.TypeExperience, exp.Type)

	got, ok := res.Document.Find(res.SectionID)
	require.True(t, ok)
	assert.Equal(t, section.ExperienceID, got.ParentID)
	assert.Equal(t, "<h3>"+section.PlaceholderRoleHeading+"</h3><ul><li>Built X</li></ul>", got.Content)
	assert.NoError(t, hierarchy.Validate(res.Document))
}

func TestApply_OtherTargets(t *testing.T) {
	doc := section.NewDocument([]section.Section{
		header(),
		{ID: section.SkillsID, Type: section.TypeSkills, Title: "Skills", Content: "<p>Go</p>"},
	})
	m := NewMerger(nil)

	res, err := m.Apply(doc, section.TypeSkills, "<p><strong>Languages:</strong> Go, Rust</p>", Hints{})
	require.NoError(t, err)
	got, _ := res.Document.Find(section.SkillsID)
	assert.Equal(t, "<p><strong>Languages:</strong> Go, Rust</p>", got.Content)

	_, err = m.Apply(doc, section.TypeProjects, "<p>x</p>", Hints{})
	var nf *section.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestParseTarget(t *testing.T) {
	for in, want := range map[string]section.Type{
		"summary":    section.TypeSummary,
		"experience": section.TypeJobRole,
		"JOB_ROLE":   section.TypeJobRole,
		"skills":     section.TypeSkills,
	} {
		got, err := ParseTarget(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseTarget("header")
	assert.Error(t, err)
	_, err = ParseTarget("hobbies")
	assert.Error(t, err)
}
