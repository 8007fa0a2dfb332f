// Package ingest turns uploaded resume files into raw parser input.
package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/resumedoc/internal/parser"
)

// Source is a document ready for the parser.
type Source struct {
	Raw    string
	Format parser.Format
	Title  string
}

// Converter turns file bytes into parser input.
type Converter interface {
	Convert(r io.Reader, filename string) (*Source, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".json":     true,
	".pdf":      true,
	".docx":     true,
}

// Options configures the converters ForFile hands out.
type Options struct {
	// Rules drive heading promotion for plain text and PDF; zero uses the
	// defaults.
	Rules parser.Rules
	// FallbackPdftotext runs the pdftotext binary when the PDF text layer
	// is unreadable.
	FallbackPdftotext bool
}

// DefaultOptions uses the default rules and enables the pdftotext fallback.
func DefaultOptions() Options {
	return Options{Rules: parser.DefaultRules(), FallbackPdftotext: true}
}

// ForFile returns the converter for a filename using DefaultOptions.
func ForFile(filename string) (Converter, error) {
	return DefaultOptions().ForFile(filename)
}

// ForFile returns the converter for a filename.
func (o Options) ForFile(filename string) (Converter, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextConverter{Rules: o.Rules}, nil
	case ".md", ".markdown":
		return &RawConverter{Format: parser.FormatMarkdown}, nil
	case ".html", ".htm":
		return &RawConverter{Format: parser.FormatHTML}, nil
	case ".json":
		return &RawConverter{Format: parser.FormatJSON}, nil
	case ".pdf":
		return &PDFConverter{FallbackPdftotext: o.FallbackPdftotext, Rules: o.Rules}, nil
	case ".docx":
		return &DOCXConverter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Convert picks the converter for filename and runs it.
func Convert(r io.Reader, filename string) (*Source, error) {
	return DefaultOptions().Convert(r, filename)
}

// Convert picks the converter for filename and runs it.
func (o Options) Convert(r io.Reader, filename string) (*Source, error) {
	c, err := o.ForFile(filename)
	if err != nil {
		return nil, err
	}
	return c.Convert(r, filename)
}

func titleOf(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// RawConverter passes Markdown, HTML and JSON through unchanged.
type RawConverter struct {
	Format parser.Format
}

func (c *RawConverter) Convert(r io.Reader, filename string) (*Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return &Source{Raw: string(data), Format: c.Format, Title: titleOf(filename)}, nil
}
