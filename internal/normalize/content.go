package normalize

import (
	"strings"

	"github.com/dgallion1/resumedoc/internal/markup"
	"github.com/dgallion1/resumedoc/internal/section"
)

// canonicalRole rewrites job-role content as one h3 heading, an optional
// company/date paragraph, and at most one bullet list. Prose lines and extra
// headings become list items. The title follows the heading's job title.
func (n *Normalizer) canonicalRole(s section.Section) section.Section {
	var heading, meta string
	var items []string
	haveHeading, metaChecked := false, false
	slotted := false

	addItem := func(inner string) {
		metaChecked = true
		if item, _ := markup.StripBullet(inner); markup.Text(item) != "" {
			items = append(items, item)
		}
	}

	for _, b := range markup.Blocks(s.Content) {
		switch b.Kind {
		case markup.BlockHeading:
			if !haveHeading {
				heading, haveHeading = b.HTML, true
				_, _, slotted = markup.SplitDateSlot(heading)
				continue
			}
			addItem(b.HTML)
		case markup.BlockParagraph:
			for _, line := range b.Lines() {
				bullet := markup.IsBulletLine(line)
				switch {
				case !haveHeading && !bullet:
					heading, haveHeading = line, true
				case haveHeading && !metaChecked && !bullet && section.IsMetaLine(markup.Text(line)):
					meta, metaChecked = line, true
				case slotted && !metaChecked && !bullet && section.IsCompanyLine(markup.Text(line)):
					meta, metaChecked = line, true
				default:
					addItem(line)
				}
			}
		case markup.BlockList:
			for _, it := range b.Items {
				addItem(it)
			}
		default:
			addItem(b.HTML)
		}
	}

	if !haveHeading {
		heading = markup.Escape(strings.TrimSpace(s.Title))
		if heading == "" {
			heading = "Job Title"
		}
	}

	// A serialized heading folds its date slot and company line back into
	// the canonical "Title, Company | Date" line.
	if slotted {
		rest, date, _ := markup.SplitDateSlot(heading)
		role := section.DescribeSlottedRole(markup.Text(rest), date, markup.Text(meta), n.isTitle)
		if line := role.Heading(); line != "" {
			heading, meta = markup.Escape(line), ""
		}
	}

	content := markup.Heading(3, heading)
	if meta != "" {
		content += markup.Paragraph(meta)
	}
	content += markup.List(items)
	s.Content = content

	if role := section.DescribeRole(markup.Text(heading), markup.Text(meta), n.isTitle); role.Title != "" {
		s.Title = role.Title
	}
	return s
}

// canonicalContent turns bullet-like paragraph lines into list items and
// merges adjacent unordered lists into one. Other blocks are re-rendered as
// they are.
func canonicalContent(content string) string {
	var out []markup.Block
	var items []string

	flushItems := func() {
		if len(items) > 0 {
			out = append(out, markup.Block{Kind: markup.BlockList, Items: items})
			items = nil
		}
	}

	for _, b := range markup.Blocks(content) {
		switch b.Kind {
		case markup.BlockParagraph:
			lines := b.Lines()
			hasBullet := false
			for _, l := range lines {
				if markup.IsBulletLine(l) {
					hasBullet = true
					break
				}
			}
			if !hasBullet {
				flushItems()
				out = append(out, b)
				continue
			}
			var prose []string
			for _, l := range lines {
				if item, ok := markup.StripBullet(l); ok {
					if len(prose) > 0 {
						flushItems()
						out = append(out, markup.Block{Kind: markup.BlockParagraph, HTML: strings.Join(prose, "<br/>")})
						prose = nil
					}
					if markup.Text(item) != "" {
						items = append(items, item)
					}
					continue
				}
				flushItems()
				prose = append(prose, l)
			}
			if len(prose) > 0 {
				out = append(out, markup.Block{Kind: markup.BlockParagraph, HTML: strings.Join(prose, "<br/>")})
			}
		case markup.BlockList:
			if b.Ordered {
				flushItems()
				out = append(out, b)
				continue
			}
			for _, it := range b.Items {
				if item, _ := markup.StripBullet(it); markup.Text(item) != "" {
					items = append(items, item)
				}
			}
		default:
			flushItems()
			out = append(out, b)
		}
	}
	flushItems()
	return markup.Render(out)
}
