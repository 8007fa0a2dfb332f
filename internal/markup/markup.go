// Package markup holds the HTML and Markdown plumbing shared by the resume
// model: Markdown conversion, a flat block view of HTML fragments, and
// canonical fragment builders.
package markup

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
)

// SummaryStartMarker opens the summary block in serialized output.
const SummaryStartMarker = "<!--SUMMARY_START-->"

var md = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough, extension.Table),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

// MarkdownToHTML converts Markdown (which may embed raw HTML) to an HTML
// fragment. Embedded HTML passes through untouched.
func MarkdownToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

var (
	blockTag   = regexp.MustCompile(`(?i)<(?:h[1-6]|p|ul|ol|li|div|section|header|article|body|html|table|br)\b[^>]*>`)
	mdHeading  = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s+\S`)
	mdBulleted = regexp.MustCompile(`(?m)^\s{0,3}[-*+]\s+\S`)
)

// LooksLikeHTML reports whether s should be treated as an HTML fragment rather
// than Markdown. Markdown with a few inline tags is still Markdown.
func LooksLikeHTML(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return false
	}
	if strings.HasPrefix(t, "<") && !strings.HasPrefix(t, "<!--") {
		return true
	}
	if mdHeading.MatchString(t) || mdBulleted.MatchString(t) {
		return false
	}
	return blockTag.MatchString(t)
}

// Escape escapes text for inclusion in an HTML fragment. It matches the
// escaping used when fragments are re-rendered, so canonical output is stable.
func Escape(text string) string {
	return html.EscapeString(text)
}

// Heading wraps inner HTML in an h1..h6 element.
func Heading(level int, inner string) string {
	if level < 1 || level > 6 {
		level = 3
	}
	return fmt.Sprintf("<h%d>%s</h%d>", level, inner, level)
}

// Paragraph wraps inner HTML in a p element.
func Paragraph(inner string) string {
	return "<p>" + inner + "</p>"
}

// List renders items as a single ul element. It returns "" for no items.
func List(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<ul>")
	for _, it := range items {
		b.WriteString("<li>")
		b.WriteString(it)
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

// Fold returns the Unicode case-folded form of s for caseless comparison.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// ContainsFold reports whether needle occurs in haystack ignoring case.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}

var spaceRun = regexp.MustCompile(`[ \t\r\f\v\x{00a0}]+`)

// CollapseSpace trims s and collapses runs of horizontal whitespace.
func CollapseSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}
