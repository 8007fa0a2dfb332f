package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/resumedoc/internal/render"
	"github.com/dgallion1/resumedoc/internal/resume"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export a resume as Markdown, print HTML or PDF",
	Long:  "Parses and normalizes the input, then prints the exported Markdown. With --html or --pdf the print page is written to a file instead; PDF output needs Chrome or Chromium.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var (
	exportSuppress   []string
	exportPageBreaks []string
	exportPDF        string
	exportHTML       string
	exportChrome     string
	exportLayout     render.Layout
	exportTimeout    time.Duration
)

func init() {
	f := exportCmd.Flags()
	f.StringSliceVar(&exportSuppress, "suppress", []string{"Professional Summary"}, "Section titles printed as a spacer instead of a heading")
	f.StringSliceVar(&exportPageBreaks, "page-break", nil, "Section ids preceded by a page break")
	f.StringVar(&exportPDF, "pdf", "", "Write a PDF to this path")
	f.StringVar(&exportHTML, "html", "", "Write the print HTML page to this path")
	f.StringVar(&exportChrome, "chrome", os.Getenv("CHROME_PATH"), "Chrome binary used for --pdf")
	f.Float64Var(&exportLayout.PaperWidth, "paper-width", render.DefaultLayout.PaperWidth, "Paper width in inches")
	f.Float64Var(&exportLayout.PaperHeight, "paper-height", render.DefaultLayout.PaperHeight, "Paper height in inches")
	f.Float64Var(&exportLayout.Margin, "margin", render.DefaultLayout.Margin, "Page margin in inches")
	f.Float64Var(&exportLayout.FontSize, "font-size", render.DefaultLayout.FontSize, "Base font size in points")
	f.DurationVar(&exportTimeout, "timeout", 60*time.Second, "PDF render timeout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	engine, err := newEngine(exportSuppress)
	if err != nil {
		return err
	}
	res, err := loadFile(engine, args[0])
	if err != nil {
		return err
	}
	md := engine.Export(engine.Normalize(res.Document), resume.ExportOptions{PageBreakBefore: exportPageBreaks})

	if exportHTML == "" && exportPDF == "" {
		_, _ = fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	}
	if err := exportLayout.Validate(); err != nil {
		return err
	}

	if exportHTML != "" {
		page, err := render.ToHTML(md, exportLayout)
		if err != nil {
			return fmt.Errorf("failed to build print page: %w", err)
		}
		if err := os.WriteFile(exportHTML, []byte(page), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "HTML: %s\n", exportHTML)
	}

	if exportPDF != "" {
		ctx, cancel := context.WithTimeout(cmd.Context(), exportTimeout)
		defer cancel()
		pdf, err := render.NewChromeRenderer(exportChrome, exportTimeout).Render(ctx, md, exportLayout)
		if err != nil {
			return fmt.Errorf("failed to render pdf: %w", err)
		}
		if err := os.WriteFile(exportPDF, pdf, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "PDF: %s (%d bytes)\n", exportPDF, len(pdf))
	}
	return nil
}
