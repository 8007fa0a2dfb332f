package markup

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var brTag = regexp.MustCompile(`(?i)<br\s*/?>`)

// SplitLines splits inner HTML on <br> and newlines, dropping blank lines.
func SplitLines(inner string) []string {
	var out []string
	for _, chunk := range brTag.Split(inner, -1) {
		for _, l := range strings.Split(chunk, "\n") {
			if strings.TrimSpace(Text(l)) == "" {
				continue
			}
			out = append(out, strings.TrimSpace(l))
		}
	}
	return out
}

// bulletMarkers are the plain-text glyphs that open a bullet-like line.
var bulletMarkers = []string{"•", "●", "▪", "◦", "- ", "* ", "– "}

// StripBullet removes leading bullet markers from a line of inline HTML. The
// second result reports whether the line was bullet-like.
func StripBullet(line string) (string, bool) {
	t := strings.TrimSpace(line)
	stripped := false
	for {
		found := false
		for _, m := range bulletMarkers {
			if strings.HasPrefix(t, m) {
				t = strings.TrimSpace(strings.TrimPrefix(t, m))
				found, stripped = true, true
				break
			}
		}
		if !found && tightMarker(t) {
			t = strings.TrimSpace(t[1:])
			found, stripped = true, true
		}
		if !found {
			return t, stripped
		}
	}
}

// tightMarker reports a "-" or "*" glued to its text, as in "-Built X".
// Bold "**x**", italic "*x*" and rules like "---" are not bullets.
func tightMarker(t string) bool {
	if len(t) < 2 || (t[0] != '-' && t[0] != '*') {
		return false
	}
	rest := t[1:]
	switch {
	case rest[0] == '*' || rest[0] == '-':
		return false
	case t[0] == '*' && strings.Contains(rest, "*"):
		return false
	}
	return true
}

// IsBulletLine reports whether line opens with a bullet marker.
func IsBulletLine(line string) bool {
	_, ok := StripBullet(line)
	return ok
}

// InlineMarkdown converts inline HTML to Markdown: strong/b to **x**, em/i to
// *x*, links to [text](href) and code to `x`. <br> becomes a newline.
func InlineMarkdown(inner string) string {
	var b strings.Builder
	for _, n := range parseFragment(inner) {
		writeInline(&b, n)
	}
	var lines []string
	for _, l := range strings.Split(b.String(), "\n") {
		if l = CollapseSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}

func writeInline(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(strings.ReplaceAll(n.Data, "\n", " "))
		return
	case html.ElementNode:
	default:
		return
	}
	wrap := func(mark string) {
		var inner strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeInline(&inner, c)
		}
		text := strings.TrimSpace(inner.String())
		if text == "" {
			return
		}
		b.WriteString(mark + text + mark)
	}
	switch n.Data {
	case "br":
		b.WriteString("\n")
	case "strong", "b":
		wrap("**")
	case "em", "i":
		wrap("*")
	case "code":
		wrap("`")
	case "script", "style":
	case "a":
		var inner strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeInline(&inner, c)
		}
		text := strings.TrimSpace(inner.String())
		href := attr(n, "href")
		if href == "" || href == text {
			b.WriteString(text)
			return
		}
		b.WriteString("[" + text + "](" + href + ")")
	case "p", "div", "li", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6":
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeInline(b, c)
		}
		b.WriteString("\n")
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeInline(b, c)
		}
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// LeadingBold splits a line whose first non-blank node is <strong> or <b>.
// It returns the bold text and the plain text that follows it.
func LeadingBold(line string) (label, rest string, ok bool) {
	nodes := parseFragment(line)
	var first *html.Node
	var tail strings.Builder
	for _, n := range nodes {
		if first == nil {
			if n.Type == html.TextNode && strings.TrimSpace(n.Data) == "" {
				continue
			}
			if n.Type != html.ElementNode || (n.Data != "strong" && n.Data != "b") {
				return "", "", false
			}
			first = n
			continue
		}
		tail.WriteString(rawText(n))
	}
	if first == nil {
		return "", "", false
	}
	return CollapseSpace(rawText(first)), CollapseSpace(tail.String()), true
}

// RoleParts extracts the heading line and the optional company/date line from
// job-role content. The heading is the first heading element, or the first
// non-bullet line when no heading exists. The meta line is the paragraph line
// directly after the heading when it carries a "|" or reads like a date.
func RoleParts(content string, isMeta func(string) bool) (heading, meta string) {
	blocks := Blocks(content)
	for i := 0; i < len(blocks); i++ {
		b := blocks[i]
		switch b.Kind {
		case BlockHeading:
			heading = b.HTML
		case BlockParagraph:
			lines := b.Lines()
			if len(lines) == 0 || IsBulletLine(lines[0]) {
				continue
			}
			heading = lines[0]
			if len(lines) > 1 && isMeta(Text(lines[1])) {
				meta = lines[1]
			}
			if len(lines) > 1 {
				return heading, meta
			}
		default:
			continue
		}
		if i+1 < len(blocks) && blocks[i+1].Kind == BlockParagraph {
			lines := blocks[i+1].Lines()
			if len(lines) > 0 && !IsBulletLine(lines[0]) && isMeta(Text(lines[0])) {
				meta = lines[0]
			}
		}
		return heading, meta
	}
	return "", ""
}

// DateSlotClass marks the right-aligned date span of a serialized role
// heading.
const DateSlotClass = "date-right"

// SplitDateSlot removes the date slot span from a heading's inner HTML. It
// returns the remaining inner HTML, the slot's text, and whether a slot was
// present. An empty slot still counts as present.
func SplitDateSlot(inner string) (rest, date string, ok bool) {
	var b strings.Builder
	for _, n := range parseFragment(inner) {
		if !ok && n.Type == html.ElementNode && n.Data == "span" && hasClass(n, DateSlotClass) {
			date, ok = TextOf(n), true
			continue
		}
		b.WriteString(renderNode(n))
	}
	if !ok {
		return inner, "", false
	}
	return strings.TrimSpace(b.String()), date, true
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
