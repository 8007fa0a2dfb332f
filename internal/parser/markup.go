package parser

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/resumedoc/internal/markup"
	"github.com/dgallion1/resumedoc/internal/section"
)

var contactLike = regexp.MustCompile(`(?i)@|\+?\d[\d\s().-]{6,}\d|https?://|www\.|linkedin|github|\|`)

func looksLikeContact(text string) bool {
	return contactLike.MatchString(text)
}

// group is a main section heading with the blocks beneath it.
type group struct {
	heading markup.Block
	body    []markup.Block
}

// ids hands out reserved ids to the first section of each anchor type and
// fresh ids to the rest.
type ids map[string]bool

func (u ids) next(t section.Type) string {
	fixed := ""
	switch t {
	case section.TypeHeader:
		fixed = section.HeaderID
	case section.TypeSummary:
		fixed = section.SummaryID
	default:
		fixed, _ = section.AnchorID(t)
	}
	if fixed != "" && !u[fixed] {
		u[fixed] = true
		return fixed
	}
	return section.NewID(t)
}

func (p *Parser) parseMarkup(fragment string) []section.Section {
	blocks := markup.Blocks(fragment)
	if len(blocks) == 0 {
		return nil
	}

	used := ids{}
	var out []section.Section

	header, rest := p.splitHeader(blocks)
	if header != nil {
		header.ID = used.next(section.TypeHeader)
		out = append(out, *header)
	}

	level := sectionLevel(rest)
	preamble, groups := splitOnHeadings(rest, level)

	hasSummary := false
	for _, g := range groups {
		if p.rules.Classify(g.heading.Text) == section.TypeSummary {
			hasSummary = true
			break
		}
	}
	if len(preamble) > 0 {
		if hasSummary {
			out = append(out, section.Section{
				ID: used.next(section.TypeOther), Type: section.TypeOther,
				Title: "Introduction", Content: markup.Render(preamble),
			})
		} else {
			out = append(out, section.Section{
				ID: used.next(section.TypeSummary), Type: section.TypeSummary,
				Title: "Professional Summary", Content: markup.Render(preamble),
			})
		}
	}

	for _, g := range groups {
		t := p.rules.Classify(g.heading.Text)
		if t == section.TypeSummary && used[section.SummaryID] {
			t = section.TypeOther
		}
		s := section.Section{ID: used.next(t), Type: t, Title: g.heading.Text}
		if t != section.TypeExperience {
			s.Content = markup.Render(g.body)
			out = append(out, s)
			continue
		}
		intro, roles := p.splitRoles(g.body)
		s.Content = markup.Render(intro)
		out = append(out, s)
		for _, role := range roles {
			out = append(out, p.roleSection(role, s.ID))
		}
	}

	// A serialized empty summary under a suppressed title leaves only its
	// marker behind.
	if !used[section.SummaryID] && strings.Contains(fragment, markup.SummaryStartMarker) {
		at := 0
		if header != nil {
			at = 1
		}
		out = slices.Insert(out, at, section.DefaultSummary())
	}
	return out
}

// splitHeader separates the header block: an explicit header container, else
// the first h1 plus the contact paragraphs after it, else a short opening
// name line followed by contact details.
func (p *Parser) splitHeader(blocks []markup.Block) (*section.Section, []markup.Block) {
	var head, rest []markup.Block
	for _, b := range blocks {
		if b.InHeader {
			head = append(head, b)
		} else {
			rest = append(rest, b)
		}
	}
	if len(head) > 0 {
		return headerSection(head), rest
	}

	first := -1
	for i, b := range blocks {
		if b.Kind == markup.BlockHeading {
			first = i
			break
		}
	}
	if first >= 0 && blocks[first].Level == 1 && p.rules.Classify(blocks[first].Text) == section.TypeOther {
		end := first + 1
		for end < len(blocks) && blocks[end].Kind == markup.BlockParagraph && looksLikeContact(blocks[end].Text) {
			end++
		}
		rest = append(append([]markup.Block(nil), blocks[:first]...), blocks[end:]...)
		return headerSection(blocks[first:end]), rest
	}

	// Plain text: "Jane Doe" then contact details, before any heading.
	if blocks[0].Kind != markup.BlockParagraph {
		return nil, blocks
	}
	lines := blocks[0].Lines()
	if len(lines) == 0 {
		return nil, blocks
	}
	name := markup.Text(lines[0])
	if utf8.RuneCountInString(name) > 60 || looksLikeContact(name) || strings.HasSuffix(name, ".") {
		return nil, blocks
	}
	contact := lines[1:]
	next := 1
	if len(contact) == 0 {
		for next < len(blocks) && blocks[next].Kind == markup.BlockParagraph && looksLikeContact(blocks[next].Text) {
			contact = append(contact, blocks[next].Lines()...)
			next++
		}
	}
	if len(contact) == 0 || !looksLikeContact(markup.Text(contact[0])) {
		return nil, blocks
	}
	content := markup.Heading(1, lines[0]) + markup.Paragraph(strings.Join(contact, "<br/>"))
	return &section.Section{Type: section.TypeHeader, Title: "Header", Content: content}, blocks[next:]
}

func headerSection(blocks []markup.Block) *section.Section {
	var b strings.Builder
	for i, bl := range blocks {
		if i == 0 && bl.Kind == markup.BlockHeading {
			bl.Level = 1
		}
		b.WriteString(markup.RenderBlock(bl))
	}
	return &section.Section{Type: section.TypeHeader, Title: "Header", Content: b.String()}
}

// sectionLevel is the shallowest heading level below the header.
func sectionLevel(blocks []markup.Block) int {
	level := 0
	for _, b := range blocks {
		if b.Kind == markup.BlockHeading && (level == 0 || b.Level < level) {
			level = b.Level
		}
	}
	return level
}

func splitOnHeadings(blocks []markup.Block, level int) ([]markup.Block, []group) {
	var preamble []markup.Block
	var groups []group
	for _, b := range blocks {
		if level > 0 && b.Kind == markup.BlockHeading && b.Level <= level {
			groups = append(groups, group{heading: b})
			continue
		}
		if len(groups) == 0 {
			preamble = append(preamble, b)
			continue
		}
		g := &groups[len(groups)-1]
		g.body = append(g.body, b)
	}
	return preamble, groups
}

// splitRoles splits an experience body at role-looking lines. Blocks before
// the first role stay with the experience section.
func (p *Parser) splitRoles(body []markup.Block) (intro []markup.Block, roles [][]markup.Block) {
	var lines []markup.Block
	for _, b := range body {
		if b.Kind == markup.BlockParagraph {
			if ls := b.Lines(); len(ls) > 1 {
				for _, l := range ls {
					lines = append(lines, markup.Block{Kind: markup.BlockParagraph, HTML: l, Text: markup.Text(l)})
				}
				continue
			}
		}
		lines = append(lines, b)
	}

	afterStart := false
	for _, b := range lines {
		// The line right after a role heading is its company/date line.
		if p.isRoleStart(b) && !(afterStart && b.Kind == markup.BlockParagraph) {
			roles = append(roles, []markup.Block{b})
			afterStart = true
			continue
		}
		afterStart = false
		if len(roles) == 0 {
			intro = append(intro, b)
			continue
		}
		roles[len(roles)-1] = append(roles[len(roles)-1], b)
	}
	return intro, roles
}

func (p *Parser) isRoleStart(b markup.Block) bool {
	text := b.Text
	switch b.Kind {
	case markup.BlockHeading:
		if _, _, ok := markup.SplitDateSlot(b.HTML); ok {
			return true
		}
		return p.rules.IsJobTitle(text) || section.HasDateSeparator(text)
	case markup.BlockParagraph:
	default:
		return false
	}
	if strings.Contains(text, "\n") || markup.IsBulletLine(text) || strings.HasSuffix(text, ".") ||
		utf8.RuneCountInString(text) > 100 {
		return false
	}
	if section.HasDateSeparator(text) {
		return true
	}
	if !p.rules.IsJobTitle(text) {
		return false
	}
	return isBoldOnly(b.HTML) || strings.ContainsAny(text, ",|") || len(strings.Fields(text)) <= 4
}

var boldOnly = regexp.MustCompile(`(?is)^\s*<(strong|b)>.*</(strong|b)>\s*$`)

func isBoldOnly(inner string) bool {
	return boldOnly.MatchString(inner)
}

func (p *Parser) roleSection(blocks []markup.Block, parentID string) section.Section {
	head, body := blocks[0], blocks[1:]
	headHTML, headText := head.HTML, head.Text

	var role section.RoleLine
	if rest, date, ok := markup.SplitDateSlot(head.HTML); ok && head.Kind == markup.BlockHeading {
		// Serialized form: "Title <span class="date-right">date</span>"
		// then the company on its own line.
		var company string
		if len(body) > 0 && isCompanyBlock(body[0]) {
			company, body = body[0].Text, body[1:]
		}
		headText = markup.Text(rest)
		role = section.DescribeSlottedRole(headText, date, company, p.rules.TitleMatcher())
		if line := role.Heading(); line != "" {
			headHTML = markup.Escape(line)
		} else {
			headHTML = rest
		}
	} else {
		var meta string
		if len(body) > 0 && body[0].Kind == markup.BlockParagraph && section.IsMetaLine(body[0].Text) {
			meta = body[0].Text
		}
		role = section.DescribeRole(headText, meta, p.rules.TitleMatcher())
	}

	title := role.Title
	if title == "" {
		title = headText
	}
	return section.Section{
		ID:       section.NewID(section.TypeJobRole),
		Type:     section.TypeJobRole,
		Title:    title,
		Content:  markup.Heading(3, headHTML) + markup.Render(body),
		ParentID: parentID,
	}
}

func isCompanyBlock(b markup.Block) bool {
	return b.Kind == markup.BlockParagraph && !markup.IsBulletLine(b.HTML) && section.IsCompanyLine(b.Text)
}
