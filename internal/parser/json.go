package parser

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/dgallion1/resumedoc/internal/markup"
	"github.com/dgallion1/resumedoc/internal/section"
	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed resume.schema.json
var resumeSchemaJSON string

var resumeSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(resumeSchemaJSON))
})

var validate = validator.New()

// Resume is the structured JSON resume shape.
type Resume struct {
	ContactInfo *Contact     `json:"contactInfo,omitempty"`
	Summary     string       `json:"summary,omitempty"`
	Education   []Education  `json:"education,omitempty"`
	Experience  []Experience `json:"experience,omitempty"`
	Skills      []Skill      `json:"skills,omitempty"`
}

type Contact struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

type Education struct {
	Degree      string   `json:"degree,omitempty" validate:"required_without_all=Institution School Duration Year Details"`
	Institution string   `json:"institution,omitempty"`
	School      string   `json:"school,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	Year        string   `json:"year,omitempty"`
	Location    string   `json:"location,omitempty"`
	GPA         string   `json:"gpa,omitempty"`
	Details     []string `json:"details,omitempty"`
}

type Experience struct {
	Position         string   `json:"position,omitempty" validate:"required_without_all=Title Company Description Responsibilities Achievements"`
	Title            string   `json:"title,omitempty"`
	Company          string   `json:"company,omitempty"`
	Duration         string   `json:"duration,omitempty"`
	Location         string   `json:"location,omitempty"`
	Description      string   `json:"description,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
	Achievements     []string `json:"achievements,omitempty"`
}

// Skill is either a bare skill string or a category with items.
type Skill struct {
	Category string   `json:"category,omitempty"`
	Items    []string `json:"items,omitempty"`
	Name     string   `json:"-"`
}

func (s *Skill) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		s.Name = name
		return nil
	}
	type plain Skill
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Skill(p)
	return nil
}

func (s Skill) MarshalJSON() ([]byte, error) {
	if s.Name != "" && s.Category == "" && len(s.Items) == 0 {
		return json.Marshal(s.Name)
	}
	type plain Skill
	return json.Marshal(plain(s))
}

// DecodeResume validates raw against the resume schema and decodes it.
func DecodeResume(raw string) (*Resume, error) {
	schema, err := resumeSchema()
	if err != nil {
		return nil, fmt.Errorf("load resume schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validate resume json: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("resume json does not match schema: %s", strings.Join(msgs, "; "))
	}
	var r Resume
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, fmt.Errorf("decode resume json: %w", err)
	}
	return &r, nil
}

func (p *Parser) parseJSON(raw string) ([]section.Section, error) {
	r, err := DecodeResume(raw)
	if err != nil {
		return nil, err
	}
	return p.mapResume(r), nil
}

// mapResume maps the JSON shape deterministically: a header, a summary when
// one is given, the experience anchor with one role per entry, and single
// education and skills sections.
func (p *Parser) mapResume(r *Resume) []section.Section {
	out := []section.Section{{
		ID: section.HeaderID, Type: section.TypeHeader, Title: "Header", Content: headerHTML(r.ContactInfo),
	}}

	if s := strings.TrimSpace(r.Summary); s != "" {
		out = append(out, section.Section{
			ID: section.SummaryID, Type: section.TypeSummary, Title: "Professional Summary", Content: paragraphs(s),
		})
	}

	exp, _ := section.NewAnchor(section.ExperienceID)
	out = append(out, exp)
	for _, e := range r.Experience {
		if err := validate.Struct(e); err != nil {
			p.log.Debug("skipping empty experience entry", "error", err)
			continue
		}
		out = append(out, experienceRole(e))
	}

	edu, _ := section.NewAnchor(section.EducationID)
	var b strings.Builder
	for _, e := range r.Education {
		if err := validate.Struct(e); err != nil {
			p.log.Debug("skipping empty education entry", "error", err)
			continue
		}
		b.WriteString(educationHTML(e))
	}
	edu.Content = b.String()
	out = append(out, edu)

	skills, _ := section.NewAnchor(section.SkillsID)
	skills.Content = skillsHTML(r.Skills)
	out = append(out, skills)
	return out
}

func headerHTML(c *Contact) string {
	if c == nil {
		return markup.Heading(1, "")
	}
	var parts []string
	for _, v := range []string{c.Email, c.Phone, c.Location, c.LinkedIn, c.Website, c.GitHub} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, markup.Escape(v))
		}
	}
	out := markup.Heading(1, markup.Escape(strings.TrimSpace(c.Name)))
	if len(parts) > 0 {
		out += markup.Paragraph(strings.Join(parts, " | "))
	}
	return out
}

func paragraphs(text string) string {
	var b strings.Builder
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			b.WriteString(markup.Paragraph(markup.Escape(p)))
		}
	}
	return b.String()
}

func experienceRole(e Experience) section.Section {
	title := strings.TrimSpace(e.Position)
	if title == "" {
		title = strings.TrimSpace(e.Title)
	}
	company := strings.TrimSpace(e.Company)
	heading := section.RoleLine{Title: title, Company: company, DateRange: strings.TrimSpace(e.Duration)}.Heading()

	// The location is kept as the first bullet so the heading stays
	// "Title, Company | Duration".
	var items []string
	if loc := strings.TrimSpace(e.Location); loc != "" {
		items = append(items, "Location: "+markup.Escape(loc))
	}
	for _, list := range [][]string{e.Responsibilities, e.Achievements} {
		for _, it := range list {
			if it = strings.TrimSpace(it); it != "" {
				items = append(items, markup.Escape(it))
			}
		}
	}
	if d := strings.TrimSpace(e.Description); d != "" {
		items = append(items, markup.Escape(d))
	}
	if title == "" {
		title = company
	}
	return section.Section{
		ID:       section.NewID(section.TypeJobRole),
		Type:     section.TypeJobRole,
		Title:    title,
		Content:  markup.Heading(3, markup.Escape(heading)) + markup.List(items),
		ParentID: section.ExperienceID,
	}
}

func educationHTML(e Education) string {
	institution := strings.TrimSpace(e.Institution)
	if institution == "" {
		institution = strings.TrimSpace(e.School)
	}
	when := strings.TrimSpace(e.Duration)
	if when == "" {
		when = strings.TrimSpace(e.Year)
	}

	var line []string
	if d := strings.TrimSpace(e.Degree); d != "" {
		line = append(line, "<strong>"+markup.Escape(d)+"</strong>")
	}
	for _, v := range []string{institution, strings.TrimSpace(e.Location)} {
		if v != "" {
			line = append(line, markup.Escape(v))
		}
	}
	text := strings.Join(line, ", ")
	if when != "" {
		if text != "" {
			text += " | "
		}
		text += markup.Escape(when)
	}

	var details []string
	if g := strings.TrimSpace(e.GPA); g != "" {
		details = append(details, "GPA: "+markup.Escape(g))
	}
	for _, d := range e.Details {
		if d = strings.TrimSpace(d); d != "" {
			details = append(details, markup.Escape(d))
		}
	}
	out := ""
	if text != "" {
		out = markup.Paragraph(text)
	}
	return out + markup.List(details)
}

func skillsHTML(skills []Skill) string {
	var plain []string
	var b strings.Builder
	for _, s := range skills {
		if s.Name != "" {
			plain = append(plain, markup.Escape(strings.TrimSpace(s.Name)))
			continue
		}
		var items []string
		for _, it := range s.Items {
			if it = strings.TrimSpace(it); it != "" {
				items = append(items, markup.Escape(it))
			}
		}
		if len(items) == 0 {
			continue
		}
		if cat := strings.TrimSpace(s.Category); cat != "" {
			b.WriteString(markup.Paragraph("<strong>" + markup.Escape(cat) + ":</strong> " + strings.Join(items, ", ")))
			continue
		}
		plain = append(plain, items...)
	}
	if len(plain) > 0 {
		b.WriteString(markup.Paragraph(strings.Join(plain, ", ")))
	}
	return b.String()
}
