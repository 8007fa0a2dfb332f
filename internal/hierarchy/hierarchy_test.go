package hierarchy

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/dgallion1/resumedoc/internal/section"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc() *section.Document {
	return section.NewDocument([]section.Section{
		{ID: section.HeaderID, Type: section.TypeHeader, Title: "Header"},
		{ID: section.SummaryID, Type: section.TypeSummary, Title: "Summary"},
		{ID: section.ExperienceID, Type: section.TypeExperience, Title: "Experience"},
		{ID: "r1", Type: section.TypeJobRole, Title: "Engineer", ParentID: section.ExperienceID},
		{ID: "r2", Type: section.TypeJobRole, Title: "Analyst", ParentID: section.ExperienceID},
		{ID: section.SkillsID, Type: section.TypeSkills, Title: "Skills"},
		{ID: "proj", Type: section.TypeProjects, Title: "Projects"},
	})
}

func reason(t *testing.T, err error) section.Reason {
	t.Helper()
	var iv *section.InvariantViolation
	require.True(t, errors.As(err, &iv), "expected InvariantViolation, got %v", err)
	return iv.Reason
}

func TestCanMove(t *testing.T) {
	assert.False(t, CanMove(section.Section{ID: section.HeaderID, Type: section.TypeHeader}))
	assert.False(t, CanMove(section.Section{ID: section.SummaryID, Type: section.TypeSummary}))
	assert.True(t, CanMove(section.Section{ID: "x", Type: section.TypeOther}))
	assert.True(t, CanMove(section.Section{ID: section.ExperienceID, Type: section.TypeExperience}))
}

func TestMoveDown_SwapsSiblingRoles(t *testing.T) {
	m := New(sampleDoc())
	moved, err := m.MoveDown("r1")
	require.NoError(t, err)
	require.True(t, moved)

	doc := m.Document()
	assert.Equal(t, []string{"header", "summary", "experience", "r2", "r1", "skills", "proj"}, doc.IDs())
	assert.Equal(t, []string{"r2", "r1"}, doc.Hierarchy[section.ExperienceID])
	require.NoError(t, Validate(doc))
}

func TestMoveChild_BoundaryIsNoOp(t *testing.T) {
	m := New(sampleDoc())
	moved, err := m.MoveUp("r1")
	require.NoError(t, err)
	assert.False(t, moved)
	moved, err = m.MoveDown("r2")
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, sampleDoc().IDs(), m.Document().IDs())
}

func TestMoveTopLevel_CarriesChildren(t *testing.T) {
	m := New(sampleDoc())
	moved, err := m.MoveDown(section.ExperienceID)
	require.NoError(t, err)
	require.True(t, moved)
	assert.Equal(t, []string{"header", "summary", "skills", "experience", "r1", "r2", "proj"}, m.Document().IDs())

	moved, err = m.MoveUp(section.SkillsID)
	require.NoError(t, err)
	assert.False(t, moved, "skills cannot cross the fixed prefix")
}

func TestMove_FixedSectionsRejected(t *testing.T) {
	m := New(sampleDoc())
	_, err := m.MoveDown(section.HeaderID)
	assert.Equal(t, section.ReasonFixedSection, reason(t, err))
	_, err = m.MoveDown(section.SummaryID)
	assert.Equal(t, section.ReasonFixedSection, reason(t, err))

	_, err = m.MoveUp("missing")
	var nf *section.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestRemove_LastJobRoleRejected(t *testing.T) {
	doc := section.NewDocument([]section.Section{
		{ID: section.HeaderID, Type: section.TypeHeader},
		{ID: section.ExperienceID, Type: section.TypeExperience},
		{ID: "r1", Type: section.TypeJobRole, ParentID: section.ExperienceID},
	})
	m := New(doc)
	err := m.Remove("r1")
	assert.Equal(t, section.ReasonLastJobRole, reason(t, err))
	assert.Equal(t, doc.IDs(), m.Document().IDs())
	assert.Equal(t, doc.Hierarchy, m.Document().Hierarchy)
}

func TestRemove(t *testing.T) {
	tests := []struct {
		id     string
		reason section.Reason
	}{
		{section.HeaderID, section.ReasonFixedSection},
		{section.SummaryID, section.ReasonFixedSection},
		{section.ExperienceID, section.ReasonAnchorInUse},
		{section.SkillsID, section.ReasonAnchorInUse},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			m := New(sampleDoc())
			assert.Equal(t, tt.reason, reason(t, m.Remove(tt.id)))
			assert.Len(t, m.Document().Sections, 7)
		})
	}

	t.Run("role", func(t *testing.T) {
		m := New(sampleDoc())
		require.NoError(t, m.Remove("r1"))
		doc := m.Document()
		assert.Equal(t, []string{"r2"}, doc.Hierarchy[section.ExperienceID])
		require.NoError(t, Validate(doc))
	})

	t.Run("parent with children", func(t *testing.T) {
		doc := sampleDoc()
		doc.Sections = append(doc.Sections, section.Section{ID: "p1", Type: section.TypeOther, ParentID: "proj"})
		m := New(doc)
		assert.Equal(t, section.ReasonAnchorInUse, reason(t, m.Remove("proj")))
		require.NoError(t, m.Remove("p1"))
		require.NoError(t, m.Remove("proj"))
	})
}

func TestAddChild_InsertsAfterLastSibling(t *testing.T) {
	m := New(sampleDoc())
	got, err := m.AddChild(section.ExperienceID, section.Section{Type: section.TypeJobRole, Title: "Lead"})
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, section.ExperienceID, got.ParentID)

	doc := m.Document()
	assert.Equal(t, []string{"r1", "r2", got.ID}, doc.Hierarchy[section.ExperienceID])
	assert.Equal(t, 5, doc.Index(got.ID))
	require.NoError(t, Validate(doc))
}

func TestAddChild_SynthesizesAnchor(t *testing.T) {
	doc := section.NewDocument([]section.Section{
		{ID: section.HeaderID, Type: section.TypeHeader},
		{ID: section.SummaryID, Type: section.TypeSummary},
		{ID: "other", Type: section.TypeOther},
	})
	m := New(doc)
	role, err := m.AddChild(section.ExperienceID, section.Section{Type: section.TypeJobRole})
	require.NoError(t, err)

	got := m.Document()
	assert.Equal(t, []string{"header", "summary", "experience", role.ID, "other"}, got.IDs())
	require.NoError(t, Validate(got))

	_, err = m.AddChild("nope", section.Section{Type: section.TypeOther})
	var nf *section.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestAddChild_DuplicateID(t *testing.T) {
	m := New(sampleDoc())
	_, err := m.AddChild(section.ExperienceID, section.Section{ID: "r1", Type: section.TypeJobRole})
	assert.Equal(t, section.ReasonDuplicateID, reason(t, err))
}

func TestAddSection(t *testing.T) {
	doc := section.NewDocument([]section.Section{
		{ID: section.HeaderID, Type: section.TypeHeader},
		{ID: "x", Type: section.TypeOther},
	})
	m := New(doc)

	sum, err := m.AddSection(section.Section{Type: section.TypeSummary, Title: "Summary"})
	require.NoError(t, err)
	assert.Equal(t, section.SummaryID, sum.ID)
	assert.Equal(t, []string{"header", "summary", "x"}, m.Document().IDs())

	_, err = m.AddSection(section.Section{Type: section.TypeSummary})
	assert.Equal(t, section.ReasonFixedSection, reason(t, err))
	_, err = m.AddSection(section.Section{Type: section.TypeHeader})
	assert.Equal(t, section.ReasonFixedSection, reason(t, err))

	skills, err := m.AddSection(section.Section{Type: section.TypeSkills})
	require.NoError(t, err)
	assert.Equal(t, section.SkillsID, skills.ID)
}

func TestChildrenOf_ToleratesStaleHierarchy(t *testing.T) {
	doc := sampleDoc()
	h := section.Hierarchy{section.ExperienceID: {"gone", "r2"}}
	got := ChildrenOf(doc.Sections, h, section.ExperienceID)
	require.Len(t, got, 2)
	assert.Equal(t, "r2", got[0].ID)
	assert.Equal(t, "r1", got[1].ID)
}

func TestValidate_ReportsProblems(t *testing.T) {
	doc := &section.Document{
		Sections: []section.Section{
			{ID: "a", Type: section.TypeOther},
			{ID: section.HeaderID, Type: section.TypeHeader},
			{ID: "a", Type: section.TypeOther, ParentID: "missing"},
		},
		Hierarchy: section.Hierarchy{},
	}
	err := Validate(doc)
	var ce *ConsistencyError
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, ce.Problems, "header is not first")
	assert.Contains(t, ce.Problems, `duplicate id "a"`)
	assert.Contains(t, ce.Problems, "hierarchy disagrees with flat list")
}

// Random operation sequences never break the invariants and rejected
// operations never mutate.
func TestInvariantsHoldUnderRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	m := New(sampleDoc())
	for step := 0; step < 500; step++ {
		doc := m.Document()
		target := doc.Sections[rng.Intn(len(doc.Sections))].ID
		var err error
		switch rng.Intn(5) {
		case 0:
			_, err = m.MoveUp(target)
		case 1:
			_, err = m.MoveDown(target)
		case 2:
			err = m.Remove(target)
		case 3:
			_, err = m.AddChild(section.ExperienceID, section.Section{Type: section.TypeJobRole, Title: fmt.Sprint(step)})
		case 4:
			_, err = m.AddSection(section.Section{Type: section.TypeOther, Title: fmt.Sprint(step)})
		}
		after := m.Document()
		if err != nil {
			assert.Equal(t, doc.IDs(), after.IDs(), "step %d: rejected op mutated the document", step)
		}
		require.NoError(t, Validate(after), "step %d", step)
		require.GreaterOrEqual(t, after.Count(section.TypeJobRole), 1, "step %d", step)
	}
}
