// Package main implements the resumedoc CLI for parsing, checking and
// exporting resume documents.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dgallion1/resumedoc/internal/parser"
	"github.com/dgallion1/resumedoc/internal/resume"
)

var rootCmd = &cobra.Command{
	Use:           "resumedoc",
	Short:         "Parse, check and export resume documents",
	Long:          "resumedoc turns resumes in Markdown, HTML, JSON, text, PDF or DOCX into an ordered list of typed sections and exports them as print-ready Markdown or PDF.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	rulesFile   string
	formatName  string
	verboseLogs bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", os.Getenv("RULES_FILE"), "YAML file with extra classification keywords")
	rootCmd.PersistentFlags().StringVar(&formatName, "format", "auto", "Input dialect for text input: auto, html, markdown or json")
	rootCmd.PersistentFlags().BoolVarP(&verboseLogs, "verbose", "v", false, "Log parser decisions to stderr")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newEngine(suppress []string) (*resume.Engine, error) {
	level := slog.LevelWarn
	if verboseLogs {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	rules := parser.DefaultRules()
	if rulesFile != "" {
		var err error
		if rules, err = parser.LoadRules(rulesFile); err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
	}
	return resume.New(resume.Options{
		Rules:             rules,
		SuppressTitles:    suppress,
		FallbackPdftotext: true,
	}, log), nil
}

// loadFile converts path and parses it without normalizing. Files with
// .md, .html or .json extensions use the extension's dialect unless
// --format says otherwise.
func loadFile(engine *resume.Engine, path string) (parser.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return parser.Result{}, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	src, err := engine.Convert(f, path)
	if err != nil {
		return parser.Result{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	format := src.Format
	if !strings.EqualFold(formatName, "auto") {
		if format, err = parser.ParseFormat(formatName); err != nil {
			return parser.Result{}, err
		}
	}
	return engine.Parse(src.Raw, format), nil
}
