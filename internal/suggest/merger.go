// Package suggest merges AI-proposed content into a resume document and
// produces such proposals through the Anthropic Messages API.
package suggest

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/resumedoc/internal/hierarchy"
	"github.com/dgallion1/resumedoc/internal/markup"
	"github.com/dgallion1/resumedoc/internal/section"
)

// ParseTarget resolves a suggestion target name. "experience" and "role"
// address job roles; any other name must be a section type.
func ParseTarget(s string) (section.Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "experience", "role", "job_role", "jobrole":
		return section.TypeJobRole, nil
	}
	t, ok := section.ParseType(s)
	if !ok || t == section.TypeHeader {
		return "", fmt.Errorf("unknown suggestion target %q", s)
	}
	return t, nil
}

// Hints narrow down which section a suggestion is meant for.
type Hints struct {
	DirectRoleID string `json:"direct_role_id,omitempty"`
	Position     string `json:"position,omitempty"`
	Company      string `json:"company,omitempty"`
}

// MergeResult is the document after a merge and the section that received
// the content.
type MergeResult struct {
	Document  *section.Document
	SectionID string
	Created   bool // A new section was inserted
	Changed   bool // Content differs from before
}

var summaryTitleKeywords = []string{"summary", "profile", "objective", "about"}

// Merger applies suggestions. Job-role merges keep the original heading and
// company/date line and swap only the bullet list.
type Merger struct {
	isTitle section.TitleMatcher
}

// NewMerger returns a Merger. A nil matcher uses the default title
// vocabulary.
func NewMerger(isTitle section.TitleMatcher) *Merger {
	if isTitle == nil {
		isTitle = section.DefaultTitleMatcher
	}
	return &Merger{isTitle: isTitle}
}

// Apply merges content into the section resolved from target and hints. A
// missing summary is inserted right after the header and a document without
// job roles gets one under the experience anchor. Other targets with no
// matching section fail with a NotFoundError. doc is not modified.
func (m *Merger) Apply(doc *section.Document, target section.Type, content string, hints Hints) (MergeResult, error) {
	content = asHTML(content)
	mgr := hierarchy.New(doc)

	s, ok := m.Resolve(doc, target, hints)
	if !ok {
		switch target {
		case section.TypeSummary:
			added, err := mgr.AddSection(section.Section{
				Type: section.TypeSummary, Title: section.DefaultSummary().Title, Content: content,
			})
			if err != nil {
				return MergeResult{}, err
			}
			return MergeResult{Document: mgr.Document(), SectionID: added.ID, Created: true, Changed: true}, nil
		case section.TypeJobRole, section.TypeExperience:
			role := section.PlaceholderRole()
			role.ID = ""
			role.Content = mergeRole(role.Content, content)
			added, err := mgr.AddChild(section.ExperienceID, role)
			if err != nil {
				return MergeResult{}, err
			}
			return MergeResult{Document: mgr.Document(), SectionID: added.ID, Created: true, Changed: true}, nil
		default:
			return MergeResult{}, &section.NotFoundError{ID: strings.ToLower(string(target))}
		}
	}

	merged := content
	if s.Type == section.TypeJobRole {
		merged = mergeRole(s.Content, content)
	}
	if merged == s.Content {
		return MergeResult{Document: mgr.Document(), SectionID: s.ID}, nil
	}
	if _, err := mgr.Update(s.ID, s.Title, merged); err != nil {
		return MergeResult{}, err
	}
	return MergeResult{Document: mgr.Document(), SectionID: s.ID, Changed: true}, nil
}

// Resolve finds the section a suggestion applies to without changing doc.
// Order: the direct role id, then for summaries the SUMMARY section or a
// section titled like one, for job roles the role matching both position
// and company, either one, or else the first role. Other targets take the
// first section of their type.
func (m *Merger) Resolve(doc *section.Document, target section.Type, hints Hints) (section.Section, bool) {
	if hints.DirectRoleID != "" {
		if s, ok := doc.Find(hints.DirectRoleID); ok && s.Type != section.TypeHeader {
			return s, true
		}
	}
	switch target {
	case section.TypeSummary:
		if s, ok := doc.FirstOfType(section.TypeSummary); ok {
			return s, true
		}
		for _, s := range doc.Sections {
			if s.Type == section.TypeHeader || s.ParentID != "" {
				continue
			}
			for _, kw := range summaryTitleKeywords {
				if markup.ContainsFold(s.Title, kw) {
					return s, true
				}
			}
		}
		return section.Section{}, false
	case section.TypeJobRole, section.TypeExperience:
		return m.resolveRole(doc, hints)
	default:
		return doc.FirstOfType(target)
	}
}

func (m *Merger) resolveRole(doc *section.Document, hints Hints) (section.Section, bool) {
	type candidate struct {
		section.Section
		titles    []string
		companies []string
	}
	var roles []candidate
	for _, s := range doc.Sections {
		if s.Type != section.TypeJobRole {
			continue
		}
		heading, meta := markup.RoleParts(s.Content, section.IsMetaLine)
		h, mt := markup.Text(heading), markup.Text(meta)
		r := section.DescribeRole(h, mt, m.isTitle)
		roles = append(roles, candidate{
			Section:   s,
			titles:    []string{s.Title, r.Title, h},
			companies: []string{r.Company, h, mt},
		})
	}
	if len(roles) == 0 {
		return section.Section{}, false
	}

	position, company := strings.TrimSpace(hints.Position), strings.TrimSpace(hints.Company)
	contains := func(haystacks []string, needle string) bool {
		if needle == "" {
			return false
		}
		for _, h := range haystacks {
			if markup.ContainsFold(h, needle) {
				return true
			}
		}
		return false
	}

	if position != "" && company != "" {
		for _, c := range roles {
			if contains(c.titles, position) && contains(c.companies, company) {
				return c.Section, true
			}
		}
	}
	for _, c := range roles {
		if contains(c.titles, position) {
			return c.Section, true
		}
	}
	for _, c := range roles {
		if contains(c.companies, company) {
			return c.Section, true
		}
	}
	return roles[0].Section, true
}

// mergeRole keeps every non-list block of the original role and replaces its
// bullets with the items found in suggested. Without any items the original
// is returned unchanged.
func mergeRole(original, suggested string) string {
	items := suggestedItems(suggested)
	if len(items) == 0 {
		return original
	}

	var out []markup.Block
	placed := false
	place := func() {
		if !placed {
			out = append(out, markup.Block{Kind: markup.BlockList, Items: items})
			placed = true
		}
	}
	for _, b := range markup.Blocks(original) {
		switch b.Kind {
		case markup.BlockList:
			place()
		case markup.BlockParagraph:
			var kept []string
			for _, l := range b.Lines() {
				if !markup.IsBulletLine(l) {
					kept = append(kept, l)
				}
			}
			if len(kept) > 0 {
				b.HTML = strings.Join(kept, "<br/>")
				out = append(out, b)
			}
		default:
			out = append(out, b)
		}
	}
	place()
	return markup.Render(out)
}

// suggestedItems extracts bullet items from suggested content. List items
// win; otherwise bullet-like lines, then plain paragraph lines are used.
// Headings and lines that read like a role heading are never items.
func suggestedItems(content string) []string {
	var items []string
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(content)); err == nil {
		doc.Find("li").Each(func(_ int, sel *goquery.Selection) {
			if sel.Find("li").Length() > 0 {
				return
			}
			inner, err := sel.Html()
			if err != nil {
				return
			}
			if item, _ := markup.StripBullet(inner); markup.Text(item) != "" {
				items = append(items, item)
			}
		})
	}
	if len(items) > 0 {
		return items
	}

	var bullets, plain []string
	for _, b := range markup.Blocks(content) {
		if b.Kind != markup.BlockParagraph {
			continue
		}
		for _, l := range b.Lines() {
			item, bullet := markup.StripBullet(l)
			if markup.Text(item) == "" {
				continue
			}
			if bullet {
				bullets = append(bullets, item)
				continue
			}
			if section.HasDateSeparator(markup.Text(l)) {
				continue
			}
			plain = append(plain, item)
		}
	}
	if len(bullets) > 0 {
		return bullets
	}
	return plain
}

// asHTML converts Markdown suggestions to HTML and trims HTML ones.
func asHTML(content string) string {
	content = strings.TrimSpace(content)
	if content == "" || markup.LooksLikeHTML(content) {
		return content
	}
	out, err := markup.MarkdownToHTML(content)
	if err != nil {
		return markup.Paragraph(markup.Escape(content))
	}
	return strings.TrimSpace(out)
}
