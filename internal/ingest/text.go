package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/resumedoc/internal/markup"
	"github.com/dgallion1/resumedoc/internal/parser"
	"github.com/dgallion1/resumedoc/internal/section"
)

// TextConverter handles plain text files. Headings are inferred so the
// parser can section the result.
type TextConverter struct {
	// Rules decide which short lines name a section; zero uses the defaults.
	Rules parser.Rules
}

func (c *TextConverter) Convert(r io.Reader, filename string) (*Source, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	rules := c.Rules
	if rules.Sections == nil {
		rules = parser.DefaultRules()
	}
	return &Source{
		Raw:    PromoteHeadings(lines, rules),
		Format: parser.FormatMarkdown,
		Title:  titleOf(filename),
	}, nil
}

// PromoteHeadings rewrites plain-text lines as Markdown. The first non-empty
// line becomes the "# name" heading, short lines that are all caps or name a
// known section become "## " headings, and bullet glyph lines become "- "
// items. Everything else is kept verbatim.
func PromoteHeadings(lines []string, rules parser.Rules) string {
	var out []string
	blank := func() {
		if len(out) > 0 && out[len(out)-1] != "" {
			out = append(out, "")
		}
	}
	seenName, inList := false, false
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			blank()
			inList = false
			continue
		}
		if !seenName {
			out = append(out, "# "+line)
			blank()
			seenName = true
			continue
		}
		if item, ok := markup.StripBullet(line); ok {
			if !inList {
				blank()
			}
			out = append(out, "- "+item)
			inList = true
			continue
		}
		if inList {
			blank()
			inList = false
		}
		if isHeadingLine(line, rules) {
			blank()
			out = append(out, "## "+line)
			blank()
			continue
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n")) + "\n"
}

func isHeadingLine(line string, rules parser.Rules) bool {
	if utf8.RuneCountInString(line) > 40 || len(strings.Fields(line)) > 4 {
		return false
	}
	if strings.ContainsAny(line, "|@") || section.LooksLikeDateRange(line) {
		return false
	}
	line = strings.TrimSuffix(line, ":")
	if strings.ContainsAny(line, ".,;:!?") {
		return false
	}
	if isAllCaps(line) {
		return true
	}
	return len(strings.Fields(line)) <= 3 && !rules.IsJobTitle(line) && rules.Classify(line) != section.TypeOther
}

func isAllCaps(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 3
}
