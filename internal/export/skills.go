package export

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/resumedoc/internal/markup"
)

// skillLine is one line of a skills section: a category with items, or plain
// Markdown.
type skillLine struct {
	label string
	items string
	plain string
}

// skillsMarkdown emits "**Category:** item, item" blocks. Bold labels win;
// without any, "Category: items" lines are used; without those, the content
// is emitted as ordinary paragraphs.
func skillsMarkdown(content string) string {
	blocks := markup.Blocks(content)
	for _, parse := range []func(string) (skillLine, bool){boldCategory, colonCategory} {
		lines, found := skillLines(blocks, parse)
		if !found {
			continue
		}
		out := make([]string, 0, len(lines))
		for _, l := range lines {
			if l.label != "" {
				out = append(out, "**"+l.label+":** "+l.items)
				continue
			}
			out = append(out, l.plain)
		}
		return strings.Join(out, "\n\n")
	}
	return contentMarkdown(content)
}

func skillLines(blocks []markup.Block, parse func(string) (skillLine, bool)) ([]skillLine, bool) {
	var out []skillLine
	found := false
	try := func(line string) {
		if l, ok := parse(line); ok {
			out = append(out, l)
			found = true
			return
		}
		if md := oneLine(line); md != "" {
			out = append(out, skillLine{plain: md})
		}
	}
	for _, b := range blocks {
		switch b.Kind {
		case markup.BlockParagraph:
			for _, l := range b.Lines() {
				try(l)
			}
		case markup.BlockList:
			for _, it := range b.Items {
				try(it)
			}
		default:
			out = append(out, skillLine{plain: blockMarkdown(b)})
		}
	}
	return out, found
}

func boldCategory(line string) (skillLine, bool) {
	label, rest, ok := markup.LeadingBold(line)
	if !ok {
		return skillLine{}, false
	}
	hasColon := strings.HasSuffix(label, ":") || strings.HasPrefix(rest, ":")
	label = strings.TrimSpace(strings.TrimSuffix(label, ":"))
	rest = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
	if !hasColon || label == "" || rest == "" {
		return skillLine{}, false
	}
	return skillLine{label: label, items: joinItems(rest)}, true
}

func colonCategory(line string) (skillLine, bool) {
	text := markup.Text(line)
	label, rest, ok := strings.Cut(text, ":")
	label, rest = strings.TrimSpace(label), strings.TrimSpace(rest)
	if !ok || label == "" || rest == "" || utf8.RuneCountInString(label) > 40 || len(strings.Fields(label)) > 5 {
		return skillLine{}, false
	}
	return skillLine{label: label, items: joinItems(rest)}, true
}

func joinItems(s string) string {
	var items []string
	for _, it := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == '\n' }) {
		if it = strings.TrimSpace(it); it != "" {
			items = append(items, it)
		}
	}
	return strings.Join(items, ", ")
}
