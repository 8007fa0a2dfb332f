package ingest

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/resumedoc/internal/parser"
	"github.com/fumiama/go-docx"
)

// DOCXConverter handles .docx files. Heading styles become Markdown
// headings, list paragraphs become bullets and bold runs stay bold.
type DOCXConverter struct{}

func (c *DOCXConverter) Convert(r io.Reader, filename string) (*Source, error) {
	// go-docx needs a ReaderAt+size, so write to temp file.
	tmp, err := os.CreateTemp("", "resumedoc-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	defer tmp.Close()

	size, err := io.Copy(tmp, r)
	if err != nil {
		return nil, fmt.Errorf("write temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var blocks []string
	inList := false
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		switch level := docxHeadingLevel(para); {
		case level > 0:
			blocks = append(blocks, strings.Repeat("#", level)+" "+strings.ReplaceAll(text, "**", ""))
			inList = false
		case docxIsList(para):
			if inList {
				blocks[len(blocks)-1] += "\n- " + text
			} else {
				blocks = append(blocks, "- "+text)
			}
			inList = true
		default:
			blocks = append(blocks, text)
			inList = false
		}
	}

	return &Source{
		Raw:    strings.Join(blocks, "\n\n") + "\n",
		Format: parser.FormatMarkdown,
		Title:  titleOf(filename),
	}, nil
}

// docxHeadingLevel maps Title and Heading1 to 1, Heading2 to 2 and deeper
// headings to 3.
func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	switch {
	case style == "title":
		return 1
	case strings.HasPrefix(style, "heading"):
		switch strings.TrimPrefix(style, "heading") {
		case "1":
			return 1
		case "2":
			return 2
		case "3", "4", "5", "6":
			return 3
		}
	}
	return 0
}

func docxIsList(para *docx.Paragraph) bool {
	if para.Properties == nil {
		return false
	}
	if para.Properties.NumProperties != nil && para.Properties.NumProperties.NumID != nil {
		return true
	}
	return para.Properties.Style != nil && strings.Contains(strings.ToLower(para.Properties.Style.Val), "list")
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	writeRun := func(run *docx.Run) {
		var t strings.Builder
		for _, rc := range run.Children {
			switch v := rc.(type) {
			case *docx.Text:
				t.WriteString(v.Text)
			case *docx.Tab:
				t.WriteString(" ")
			}
		}
		s := t.String()
		bold := run.RunProperties != nil && run.RunProperties.Bold != nil
		if trimmed := strings.TrimSpace(s); bold && trimmed != "" {
			lead := s[:len(s)-len(strings.TrimLeft(s, " "))]
			trail := s[len(strings.TrimRight(s, " ")):]
			s = lead + "**" + trimmed + "**" + trail
		}
		buf.WriteString(s)
	}
	for _, child := range para.Children {
		switch v := child.(type) {
		case *docx.Run:
			writeRun(v)
		case *docx.Hyperlink:
			writeRun(&v.Run)
		}
	}
	return strings.ReplaceAll(strings.TrimSpace(buf.String()), "****", "")
}
