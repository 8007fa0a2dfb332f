// Package render turns exported resume Markdown into a print-ready HTML page
// and rasterizes that page to PDF.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/dgallion1/resumedoc/internal/export"
	"github.com/dgallion1/resumedoc/internal/markup"
	"github.com/go-playground/validator/v10"
)

// Layout is the printed page geometry. Lengths are inches, FontSize points.
type Layout struct {
	PaperWidth  float64 `json:"paper_width" validate:"gt=0,lte=20"`
	PaperHeight float64 `json:"paper_height" validate:"gt=0,lte=30"`
	Margin      float64 `json:"margin" validate:"gte=0,lte=3"`
	FontSize    float64 `json:"font_size" validate:"gte=6,lte=24"`
}

// DefaultLayout is US Letter with half-inch margins.
var DefaultLayout = Layout{PaperWidth: 8.5, PaperHeight: 11, Margin: 0.5, FontSize: 10.5}

var validate = validator.New()

// Validate reports out-of-range page settings.
func (l Layout) Validate() error {
	if err := validate.Struct(l); err != nil {
		return fmt.Errorf("invalid layout: %w", err)
	}
	return nil
}

// OrDefault fills unset fields from DefaultLayout.
func (l Layout) OrDefault() Layout {
	if l.PaperWidth == 0 {
		l.PaperWidth = DefaultLayout.PaperWidth
	}
	if l.PaperHeight == 0 {
		l.PaperHeight = DefaultLayout.PaperHeight
	}
	if l.Margin == 0 {
		l.Margin = DefaultLayout.Margin
	}
	if l.FontSize == 0 {
		l.FontSize = DefaultLayout.FontSize
	}
	return l
}

// Marker replacements. Each is set apart by blank lines so Markdown after it
// is not swallowed into the HTML block.
var markers = strings.NewReplacer(
	export.ContactDivider, "\n\n<hr class=\"contact-divider\">\n\n",
	export.PageBreak, "\n\n<div class=\"page-break\"></div>\n\n",
	export.SummaryStart, "\n\n<div class=\"summary-start\"></div>\n\n",
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { size: {{.Layout.PaperWidth}}in {{.Layout.PaperHeight}}in; margin: {{.Layout.Margin}}in; }
body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: {{.Layout.FontSize}}pt; line-height: 1.35; color: #222; margin: 0; }
h1 { font-size: 1.9em; margin: 0 0 0.15em; }
h2 { font-size: 1.2em; text-transform: uppercase; letter-spacing: 0.04em; border-bottom: 1px solid #999; margin: 1em 0 0.4em; }
h3 { font-size: 1.05em; margin: 0.8em 0 0.1em; display: flex; justify-content: space-between; }
h3 .date-right { font-weight: normal; }
h4 { font-size: 1em; margin: 0.6em 0 0.2em; }
p { margin: 0.2em 0; }
ul { margin: 0.2em 0 0.4em; padding-left: 1.2em; }
hr.contact-divider { border: 0; border-top: 2px solid #222; margin: 0.5em 0 0.8em; }
.page-break { break-after: page; }
.section-spacer { height: 0.6em; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// ToHTML converts serializer output to a standalone HTML page for printing.
func ToHTML(markdown string, layout Layout) (string, error) {
	layout = layout.OrDefault()
	if err := layout.Validate(); err != nil {
		return "", err
	}
	body, err := markup.MarkdownToHTML(markers.Replace(markdown))
	if err != nil {
		return "", fmt.Errorf("render body: %w", err)
	}

	var buf bytes.Buffer
	err = pageTmpl.Execute(&buf, struct {
		Title  string
		Layout Layout
		Body   template.HTML
	}{
		Title:  titleOf(markdown),
		Layout: layout,
		Body:   template.HTML(body),
	})
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return buf.String(), nil
}

// titleOf returns the "# name" line of the export, if any.
func titleOf(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		if name, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(name)
		}
	}
	return "Resume"
}
