package ingest

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dgallion1/resumedoc/internal/parser"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFConverter handles PDF files. It reads the text layer with the Go
// library first and falls back to pdftotext when enabled. The text is then
// heading-promoted like a plain text upload.
type PDFConverter struct {
	FallbackPdftotext bool
	Rules             parser.Rules
}

func (c *PDFConverter) Convert(r io.Reader, filename string) (*Source, error) {
	// ledongthuc/pdf opens by path, so we write to a temp file.
	tmp, err := os.CreateTemp("", "resumedoc-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, err := extractPDFText(tmpPath)
	if (err != nil || strings.TrimSpace(text) == "") && c.FallbackPdftotext {
		if alt, altErr := extractPdftotext(tmpPath); altErr == nil {
			text, err = alt, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	rules := c.Rules
	if rules.Sections == nil {
		rules = parser.DefaultRules()
	}
	// Page breaks carry no structure for a resume.
	lines := strings.Split(strings.ReplaceAll(text, "\f", "\n"), "\n")
	return &Source{
		Raw:    PromoteHeadings(lines, rules),
		Format: parser.FormatMarkdown,
		Title:  titleOf(filename),
	}, nil
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteString("\f")
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	out, err := exec.Command("pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
