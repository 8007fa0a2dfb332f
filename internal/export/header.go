package export

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/resumedoc/internal/markup"
	"github.com/dgallion1/resumedoc/internal/section"
)

var contactToken = regexp.MustCompile(`(?i)[\w.+-]+@[\w-]+(?:\.[\w-]+)+|\+?\d[\d\s().-]{6,}\d|(?:https?://|www\.)\S+|linkedin\.com/\S+`)

// header emits "# Name", one contact line, and the contact divider. Contact
// details are gathered by three strategies (explicit contact containers,
// paragraphs, token scan) and deduplicated.
func (w *writer) header(s section.Section) {
	if !w.mark(s) {
		return
	}
	name, contacts := headerParts(s.Content)

	var b strings.Builder
	if name != "" {
		b.WriteString("# " + name + "\n")
	}
	if len(contacts) > 0 {
		b.WriteString(strings.Join(contacts, " | ") + "\n")
	}
	b.WriteString(ContactDivider)
	w.add(b.String())
	w.children(s.ID)
}

func headerParts(content string) (string, []string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		text := markup.Text(content)
		name, rest, _ := strings.Cut(text, "\n")
		return name, nonEmptyLines(rest)
	}

	name := markup.CollapseSpace(doc.Find("h1").First().Text())
	if name == "" {
		name = markup.CollapseSpace(doc.Find("h2, h3, h4, strong, b").First().Text())
	}
	if name == "" {
		name, _, _ = strings.Cut(markup.Text(content), "\n")
	}

	var contacts []string
	seen := map[string]bool{markup.Fold(name): true}
	add := func(lineHTML string) {
		text := markup.Text(lineHTML)
		key := markup.Fold(text)
		if text == "" || seen[key] {
			return
		}
		seen[key] = true
		contacts = append(contacts, oneLine(lineHTML))
	}
	addSelection := func(_ int, sel *goquery.Selection) {
		inner, err := sel.Html()
		if err != nil {
			return
		}
		for _, l := range markup.SplitLines(inner) {
			add(l)
		}
	}

	doc.Find(`[class*="contact"], [id*="contact"]`).Each(func(i int, sel *goquery.Selection) {
		// Containers of paragraphs are covered paragraph by paragraph below.
		if sel.Find("p, address, li").Length() > 0 {
			return
		}
		addSelection(i, sel)
	})
	doc.Find("p, address, li").Each(addSelection)

	// Tokens are scanned line by line; adjacent inline elements would
	// otherwise run together.
	for _, line := range blockLines(content) {
		for _, tok := range contactToken.FindAllString(line, -1) {
			tok = strings.TrimSpace(tok)
			folded := markup.Fold(tok)
			covered := false
			for k := range seen {
				if strings.Contains(k, folded) {
					covered = true
					break
				}
			}
			if !covered {
				add(markup.Escape(tok))
			}
		}
	}
	return name, contacts
}

// blockLines lists the text lines of every block in content.
func blockLines(content string) []string {
	var out []string
	for _, b := range markup.Blocks(content) {
		out = append(out, nonEmptyLines(b.Text)...)
	}
	return out
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
