// Package parser turns a loosely structured resume (HTML, Markdown or the JSON
// resume shape) into a flat section list plus its hierarchy.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/resumedoc/internal/markup"
	"github.com/dgallion1/resumedoc/internal/section"
)

// Format names an input dialect.
type Format string

const (
	FormatAuto     Format = ""
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat resolves a format name; "md" and "htm" are accepted aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "html", "htm":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown format: %s", s)
}

// Result is the outcome of a parse.
type Result struct {
	Document *section.Document
	Format   Format // Format actually parsed
	Fallback bool   // Default document substituted for unusable input
}

// Parser is the heuristic resume parser. It is safe for concurrent use.
type Parser struct {
	rules Rules
	log   *slog.Logger
}

// New creates a parser. A nil logger uses slog.Default().
func New(rules Rules, log *slog.Logger) *Parser {
	if log == nil {
		log = slog.Default()
	}
	if rules.Sections == nil {
		rules = DefaultRules()
	}
	return &Parser{rules: rules, log: log}
}

// Rules returns the parser's classification rules.
func (p *Parser) Rules() Rules {
	return p.rules
}

var errNoSections = errors.New("no sections extracted")

// Parse never fails: internal errors, panics, or input that yields no
// sections produce the default document with Fallback set.
func (p *Parser) Parse(raw string, hint Format) (res Result) {
	format := Detect(raw, hint)
	defer func() {
		if r := recover(); r != nil {
			p.log.Warn("parse panicked, using default document", "format", format, "panic", fmt.Sprint(r))
			res = fallback(format)
		}
	}()

	var sections []section.Section
	var err error
	switch format {
	case FormatJSON:
		sections, err = p.parseJSON(raw)
	case FormatMarkdown:
		var fragment string
		fragment, err = markup.MarkdownToHTML(raw)
		if err == nil {
			sections = p.parseMarkup(fragment)
		}
	default:
		sections = p.parseMarkup(raw)
	}
	if err == nil && len(sections) == 0 {
		err = errNoSections
	}
	if err != nil {
		p.log.Warn("parse fell back to default document", "format", format, "error", err)
		return fallback(format)
	}
	return Result{Document: section.NewDocument(sections), Format: format}
}

// Parse parses with the default rules.
func Parse(raw string, hint Format) Result {
	return New(DefaultRules(), nil).Parse(raw, hint)
}

func fallback(format Format) Result {
	return Result{Document: section.DefaultDocument(), Format: format, Fallback: true}
}

// Detect picks the dialect of raw. A non-empty hint wins. Otherwise a JSON
// object is JSON, text that opens with or is built from block tags is HTML,
// and everything else is Markdown.
func Detect(raw string, hint Format) Format {
	if hint != FormatAuto {
		return hint
	}
	t := strings.TrimSpace(raw)
	if strings.HasPrefix(t, "{") && json.Valid([]byte(t)) {
		return FormatJSON
	}
	if markup.LooksLikeHTML(t) {
		return FormatHTML
	}
	return FormatMarkdown
}
