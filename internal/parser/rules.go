package parser

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dgallion1/resumedoc/internal/markup"
	"github.com/dgallion1/resumedoc/internal/section"
	"gopkg.in/yaml.v3"
)

// Rule classifies a heading as Type when it contains any keyword.
type Rule struct {
	Type     section.Type
	Keywords []string
}

// Match reports whether heading contains one of the rule's keywords,
// ignoring case.
func (r Rule) Match(heading string) bool {
	h := markup.Fold(heading)
	for _, k := range r.Keywords {
		if k != "" && strings.Contains(h, markup.Fold(k)) {
			return true
		}
	}
	return false
}

// Rules is the ranked classification list plus the job-title vocabulary.
// The first matching rule wins; headings nothing matches are OTHER.
type Rules struct {
	Sections      []Rule
	TitleKeywords []string

	isTitle section.TitleMatcher
}

// DefaultSectionRules is the stock ranked rule list.
var DefaultSectionRules = []Rule{
	{Type: section.TypeSummary, Keywords: []string{"summary", "profile", "objective", "about"}},
	{Type: section.TypeExperience, Keywords: []string{"experience", "employment", "work history", "work", "career"}},
	{Type: section.TypeEducation, Keywords: []string{"education", "academic", "degree"}},
	{Type: section.TypeSkills, Keywords: []string{"skill", "competenc", "technolog", "expertise"}},
	{Type: section.TypeCertifications, Keywords: []string{"certif", "licens", "accreditation"}},
	{Type: section.TypeProjects, Keywords: []string{"project", "portfolio"}},
}

// NewRules builds a rule set from a ranked list and a title vocabulary.
func NewRules(sections []Rule, titleKeywords []string) Rules {
	return Rules{
		Sections:      sections,
		TitleKeywords: titleKeywords,
		isTitle:       section.KeywordMatcher(titleKeywords),
	}
}

// DefaultRules returns the stock rules.
func DefaultRules() Rules {
	return NewRules(DefaultSectionRules, section.DefaultTitleKeywords)
}

// Classify maps a heading to a section type.
func (r Rules) Classify(heading string) section.Type {
	for _, rule := range r.Sections {
		if rule.Match(heading) {
			return rule.Type
		}
	}
	return section.TypeOther
}

// IsJobTitle reports whether line contains a job-title keyword.
func (r Rules) IsJobTitle(line string) bool {
	if r.isTitle == nil {
		return section.DefaultTitleMatcher(line)
	}
	return r.isTitle(line)
}

// TitleMatcher exposes IsJobTitle as a section.TitleMatcher.
func (r Rules) TitleMatcher() section.TitleMatcher {
	return r.IsJobTitle
}

// Extension is the YAML rule file format:
//
//	title_keywords: [barista, founder]
//	sections:
//	  projects: [side work]
//	  other: [volunteer]
type Extension struct {
	TitleKeywords []string            `yaml:"title_keywords"`
	Sections      map[string][]string `yaml:"sections"`
}

// ParseExtension decodes a YAML rule extension.
func ParseExtension(data []byte) (Extension, error) {
	var ext Extension
	if err := yaml.Unmarshal(data, &ext); err != nil {
		return Extension{}, fmt.Errorf("parse rules: %w", err)
	}
	for name := range ext.Sections {
		if _, ok := section.ParseType(name); !ok {
			return Extension{}, fmt.Errorf("parse rules: unknown section type %q", name)
		}
	}
	return ext, nil
}

// LoadExtension reads a YAML rule extension file.
func LoadExtension(path string) (Extension, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Extension{}, fmt.Errorf("read rules file: %w", err)
	}
	return ParseExtension(data)
}

// Extend returns a copy of r with the extension's section rules ranked ahead
// of the existing ones and its title keywords added.
func (r Rules) Extend(ext Extension) Rules {
	names := make([]string, 0, len(ext.Sections))
	for name := range ext.Sections {
		names = append(names, name)
	}
	sort.Strings(names)

	var ranked []Rule
	for _, name := range names {
		t, ok := section.ParseType(name)
		if !ok {
			continue
		}
		ranked = append(ranked, Rule{Type: t, Keywords: ext.Sections[name]})
	}
	ranked = append(ranked, r.Sections...)

	keywords := append(append([]string(nil), r.TitleKeywords...), ext.TitleKeywords...)
	return NewRules(ranked, keywords)
}

// LoadRules returns the default rules, extended by the YAML file at path when
// path is non-empty.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}
	ext, err := LoadExtension(path)
	if err != nil {
		return Rules{}, err
	}
	return rules.Extend(ext), nil
}
