// Package export serializes a section list into the Markdown/HTML dialect the
// PDF renderer consumes.
package export

import (
	"strings"

	"github.com/dgallion1/resumedoc/internal/hierarchy"
	"github.com/dgallion1/resumedoc/internal/markup"
	"github.com/dgallion1/resumedoc/internal/section"
)

// Markers understood by the renderer.
const (
	ContactDivider = "<!--CONTACT_DIVIDER-->"
	SummaryStart   = markup.SummaryStartMarker
	PageBreak      = "<!-- PAGE BREAK -->"
	SectionSpacer  = `<div class="section-spacer"></div>`
)

// Options controls serialization.
type Options struct {
	// SuppressTitles lists section titles replaced by a spacer instead of a
	// "## Title" heading. Matching ignores case.
	SuppressTitles []string
	// PageBreakBefore lists section ids preceded by a page break marker.
	PageBreakBefore []string
	// IsJobTitle resolves ambiguous role headings; nil uses the default
	// title vocabulary.
	IsJobTitle section.TitleMatcher
}

// Serialize renders sections in flat order. The header comes first, each
// top-level section follows with its children, and sections whose parent is
// missing are emitted where they sit in the flat list. Every section is
// emitted exactly once.
func Serialize(sections []section.Section, h section.Hierarchy, opts Options) string {
	w := &writer{
		sections: sections,
		h:        h,
		isTitle:  opts.IsJobTitle,
		suppress: make(map[string]bool),
		breaks:   make(map[string]bool),
		emitted:  make(map[string]bool),
		present:  make(map[string]bool),
	}
	if w.isTitle == nil {
		w.isTitle = section.DefaultTitleMatcher
	}
	if w.h == nil {
		w.h = section.BuildHierarchy(sections)
	}
	for _, t := range opts.SuppressTitles {
		w.suppress[markup.Fold(strings.TrimSpace(t))] = true
	}
	for _, id := range opts.PageBreakBefore {
		w.breaks[id] = true
	}
	for _, s := range sections {
		w.present[s.ID] = true
	}
	w.run()
	return strings.Join(w.blocks, "\n\n") + "\n"
}

// Document serializes doc.
func Document(doc *section.Document, opts Options) string {
	return Serialize(doc.Sections, doc.Hierarchy, opts)
}

type writer struct {
	sections []section.Section
	h        section.Hierarchy
	isTitle  section.TitleMatcher
	suppress map[string]bool
	breaks   map[string]bool
	emitted  map[string]bool
	present  map[string]bool
	blocks   []string
}

func (w *writer) add(block string) {
	if block = strings.TrimSpace(block); block != "" {
		w.blocks = append(w.blocks, block)
	}
}

func (w *writer) mark(s section.Section) bool {
	if w.emitted[s.ID] {
		return false
	}
	w.emitted[s.ID] = true
	if w.breaks[s.ID] {
		w.add(PageBreak)
	}
	return true
}

func (w *writer) run() {
	for _, s := range w.sections {
		if s.Type == section.TypeHeader {
			w.header(s)
			break
		}
	}
	for _, s := range w.sections {
		if w.emitted[s.ID] || (s.ParentID != "" && w.present[s.ParentID]) {
			continue
		}
		w.section(s)
	}
	// Sections caught in a parent cycle are unreachable from any top-level
	// section; emit them last rather than drop them.
	for _, s := range w.sections {
		if !w.emitted[s.ID] {
			w.section(s)
		}
	}
}

func (w *writer) section(s section.Section) {
	if s.Type == section.TypeJobRole {
		w.role(s)
		return
	}
	if !w.mark(s) {
		return
	}
	var head string
	if s.Type == section.TypeSummary {
		head = SummaryStart + "\n"
	}
	if w.suppress[markup.Fold(strings.TrimSpace(s.Title))] {
		head += SectionSpacer
	} else {
		head += "## " + s.Title
	}
	w.add(head)

	if s.Type == section.TypeSkills {
		w.add(skillsMarkdown(s.Content))
	} else {
		w.add(contentMarkdown(s.Content))
	}
	w.children(s.ID)
}

func (w *writer) children(parentID string) {
	for _, c := range hierarchy.ChildrenOf(w.sections, w.h, parentID) {
		if w.emitted[c.ID] {
			continue
		}
		if c.Type == section.TypeJobRole {
			w.role(c)
			continue
		}
		if !w.mark(c) {
			continue
		}
		w.add("### " + c.Title)
		w.add(contentMarkdown(c.Content))
		w.children(c.ID)
	}
}

// role emits "### Title <span class="date-right">date</span>", the company
// line, and the bullets. The date slot is written even when empty; it marks
// the heading as a role when the output is parsed again.
func (w *writer) role(s section.Section) {
	if !w.mark(s) {
		return
	}
	heading, meta := markup.RoleParts(s.Content, section.IsMetaLine)
	var r section.RoleLine
	if rest, date, ok := markup.SplitDateSlot(heading); ok {
		r = section.DescribeSlottedRole(markup.Text(rest), date, markup.Text(meta), w.isTitle)
	} else {
		r = section.DescribeRole(markup.Text(heading), markup.Text(meta), w.isTitle)
	}

	title := r.Title
	if title == "" {
		title = strings.TrimSpace(s.Title)
	}
	w.add("### " + title + ` <span class="` + markup.DateSlotClass + `">` + markup.Escape(r.DateRange) + `</span>`)
	if r.Company != "" {
		w.add(r.Company)
	}
	w.add(roleBullets(s.Content, heading, meta))
	w.children(s.ID)
}

// roleBullets lists everything in a role after its heading and meta line.
func roleBullets(content, heading, meta string) string {
	var lines []string
	skipHeading, skipMeta := heading != "", meta != ""
	for _, b := range markup.Blocks(content) {
		switch b.Kind {
		case markup.BlockHeading:
			if skipHeading && b.HTML == heading {
				skipHeading = false
				continue
			}
			lines = append(lines, "- "+oneLine(b.HTML))
		case markup.BlockParagraph:
			for _, l := range b.Lines() {
				if skipHeading && l == heading {
					skipHeading = false
					continue
				}
				if skipMeta && l == meta {
					skipMeta = false
					continue
				}
				item, _ := markup.StripBullet(l)
				lines = append(lines, "- "+oneLine(item))
			}
		case markup.BlockList:
			for _, it := range b.Items {
				item, _ := markup.StripBullet(it)
				if md := oneLine(item); md != "" {
					lines = append(lines, "- "+md)
				}
			}
		default:
			lines = append(lines, b.HTML)
		}
	}
	return strings.Join(lines, "\n")
}

func oneLine(inner string) string {
	return strings.ReplaceAll(markup.InlineMarkdown(inner), "\n", " ")
}

// contentMarkdown renders a section body as Markdown paragraphs and bullets.
// Tables and other structures pass through as HTML.
func contentMarkdown(content string) string {
	var out []string
	for _, b := range markup.Blocks(content) {
		out = append(out, blockMarkdown(b))
	}
	return strings.Join(out, "\n\n")
}

func blockMarkdown(b markup.Block) string {
	switch b.Kind {
	case markup.BlockHeading:
		return "#### " + oneLine(b.HTML)
	case markup.BlockParagraph:
		return markup.InlineMarkdown(b.HTML)
	case markup.BlockList:
		lines := make([]string, 0, len(b.Items))
		for _, it := range b.Items {
			marker := "- "
			if b.Ordered {
				marker = "1. "
			}
			lines = append(lines, marker+oneLine(it))
		}
		return strings.Join(lines, "\n")
	default:
		return b.HTML
	}
}
