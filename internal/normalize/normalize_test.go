package normalize

import (
	"strings"
	"testing"

	"github.com/dgallion1/resumedoc/internal/hierarchy"
	"github.com/dgallion1/resumedoc/internal/section"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_EmptyDocumentGetsDefaults(t *testing.T) {
	out := Normalize(nil)
	require.Len(t, out, 4)
	assert.Equal(t, section.TypeHeader, out[0].Type)
	assert.Equal(t, section.SummaryID, out[1].ID)
	assert.Equal(t, section.ExperienceID, out[2].ID)
	assert.Equal(t, section.TypeJobRole, out[3].Type)
	require.NoError(t, hierarchy.Validate(section.NewDocument(out)))
}

func TestNormalize_DoesNotFabricateWhenContentExists(t *testing.T) {
	in := []section.Section{
		{ID: "x", Type: section.TypeOther, Title: "Volunteering", Content: "<p>Food bank</p>"},
	}
	out := Normalize(in)
	require.Len(t, out, 2)
	assert.Equal(t, section.TypeHeader, out[0].Type)
	assert.Equal(t, "x", out[1].ID)
}

func TestNormalize_HeaderAndSummaryPositions(t *testing.T) {
	in := []section.Section{
		{ID: "skills", Type: section.TypeSkills, Title: "Skills"},
		{ID: "s1", Type: section.TypeSummary, Title: "Profile"},
		{ID: "h", Type: section.TypeHeader, Content: "<h1>Jane</h1>"},
		{ID: "s2", Type: section.TypeSummary, Title: "Objective"},
		{ID: "h2", Type: section.TypeHeader, Content: "<h1>Again</h1>"},
	}
	out := Normalize(in)
	require.Len(t, out, 5)
	assert.Equal(t, "h", out[0].ID)
	assert.Equal(t, section.SummaryID, out[1].ID)
	assert.Equal(t, "Profile", out[1].Title)
	assert.Equal(t, section.TypeOther, out[3].Type, "second summary demoted")
	assert.Equal(t, section.TypeOther, out[4].Type, "second header demoted")
	require.NoError(t, hierarchy.Validate(section.NewDocument(out)))
}

func TestNormalize_AdoptsOrphanRoles(t *testing.T) {
	in := []section.Section{
		{ID: "header", Type: section.TypeHeader},
		{ID: "r1", Type: section.TypeJobRole, Content: "<h3>Engineer, Acme | 2020</h3>"},
		{ID: "r2", Type: section.TypeJobRole, ParentID: "gone", Content: "<h3>Analyst, Initech | 2018</h3>"},
	}
	out := Normalize(in)
	doc := section.NewDocument(out)
	require.NoError(t, hierarchy.Validate(doc))
	assert.Equal(t, []string{"header", "experience", "r1", "r2"}, doc.IDs())
	assert.Equal(t, []string{"r1", "r2"}, doc.Hierarchy[section.ExperienceID])
}

func TestNormalize_ClaimsAnchorIDs(t *testing.T) {
	in := []section.Section{
		{ID: "header", Type: section.TypeHeader},
		{ID: "exp-1", Type: section.TypeExperience, Title: "Work"},
		{ID: "r1", Type: section.TypeJobRole, ParentID: "exp-1", Content: "<h3>Engineer</h3>"},
	}
	out := Normalize(in)
	assert.Equal(t, section.ExperienceID, out[1].ID)
	assert.Equal(t, section.ExperienceID, out[2].ParentID)
}

func TestNormalize_RoleCanonicalShape(t *testing.T) {
	in := []section.Section{
		{ID: "header", Type: section.TypeHeader},
		{ID: "experience", Type: section.TypeExperience},
		{
			ID: "r1", Type: section.TypeJobRole, ParentID: "experience",
			Content: "<p>Senior Engineer<br>Acme Corp | 2019 – Present<br>• Built the platform<br>- Led migrations</p>" +
				"<p>Mentored juniors</p><ul><li>• Cut costs</li></ul>",
		},
	}
	out := Normalize(in)
	role := out[2]
	assert.Equal(t, "<h3>Senior Engineer</h3><p>Acme Corp | 2019 – Present</p>"+
		"<ul><li>Built the platform</li><li>Led migrations</li><li>Mentored juniors</li><li>Cut costs</li></ul>", role.Content)
	assert.Equal(t, "Senior Engineer", role.Title)
	assert.Equal(t, 1, strings.Count(role.Content, "<ul>"))
	assert.NotContains(t, role.Content, "•")
}

func TestNormalize_BulletLinesInOtherSections(t *testing.T) {
	in := []section.Section{
		{ID: "header", Type: section.TypeHeader},
		{ID: "proj", Type: section.TypeProjects, Content: "<p>Side work:<br>* CLI tool<br>* Blog</p><ul><li>Game</li></ul>"},
	}
	out := Normalize(in)
	assert.Equal(t, "<p>Side work:</p><ul><li>CLI tool</li><li>Blog</li><li>Game</li></ul>", out[1].Content)
}

func TestNormalize_TightBulletMarkers(t *testing.T) {
	in := []section.Section{
		{ID: "header", Type: section.TypeHeader},
		{ID: "proj", Type: section.TypeProjects, Content: "<p>-Built X<br>*Shipped Y<br>**Bold** claim</p>"},
	}
	out := Normalize(in)
	assert.Equal(t, "<ul><li>Built X</li><li>Shipped Y</li></ul><p>**Bold** claim</p>", out[1].Content)
}

func TestNormalize_SerializedRoleHeading(t *testing.T) {
	in := []section.Section{
		{ID: "header", Type: section.TypeHeader},
		{ID: "experience", Type: section.TypeExperience},
		{
			ID: "r1", Type: section.TypeJobRole, ParentID: "experience",
			Content: `<h3>Barista <span class="date-right">2019 – 2020</span></h3><p>Blue Cafe</p><ul><li>Pulled shots</li></ul>`,
		},
		{
			ID: "r2", Type: section.TypeJobRole, ParentID: "experience",
			Content: `<h3>Founder <span class="date-right"></span></h3><ul><li>Raised a seed round</li></ul>`,
		},
	}
	out := Normalize(in)
	assert.Equal(t, "<h3>Barista, Blue Cafe | 2019 – 2020</h3><ul><li>Pulled shots</li></ul>", out[2].Content)
	assert.Equal(t, "Barista", out[2].Title)
	assert.Equal(t, "<h3>Founder</h3><ul><li>Raised a seed round</li></ul>", out[3].Content)
	assert.Equal(t, "Founder", out[3].Title)
	assert.Equal(t, out, Normalize(out))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := [][]section.Section{
		nil,
		{
			{ID: "r9", Type: section.TypeJobRole, Content: "Engineer, Acme | 2020\n• one\n• two"},
			{ID: "s", Type: section.TypeSummary, Content: "<p>Hello &amp; welcome</p>"},
			{Type: section.TypeSkills, Content: "<p><strong>Go:</strong> yes</p>"},
			{Type: section.TypeOther, Content: "<table><tr><td>x</td></tr></table><h4>Note</h4>"},
		},
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		assert.Equal(t, once, twice)
	}
}

func TestNormalize_DoesNotModifyInput(t *testing.T) {
	in := []section.Section{{ID: "a", Type: section.TypeJobRole, Content: "<p>- x</p>"}}
	_ = Normalize(in)
	assert.Equal(t, "<p>- x</p>", in[0].Content)
	assert.Equal(t, "", in[0].ParentID)
}
