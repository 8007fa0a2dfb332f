package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/resumedoc/internal/resume"
	"github.com/dgallion1/resumedoc/internal/section"
	"github.com/dgallion1/resumedoc/internal/suggest"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <file>",
	Short: "Merge suggested content into a resume and print the export",
	Long:  "Applies --content to the section --target resolves to. With --generate the content comes from the Anthropic API instead (ANTHROPIC_API_KEY must be set).",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggest,
}

var (
	suggestTarget   string
	suggestContent  string
	suggestHints    suggest.Hints
	suggestGenerate bool
	suggestJD       string
)

func init() {
	f := suggestCmd.Flags()
	f.StringVar(&suggestTarget, "target", "", "Section to update: summary, experience, skills, education, ... (required)")
	f.StringVar(&suggestContent, "content", "", "Suggested content as HTML or Markdown")
	f.StringVar(&suggestHints.DirectRoleID, "role-id", "", "Id of the job role to update")
	f.StringVar(&suggestHints.Position, "position", "", "Job title of the role to update")
	f.StringVar(&suggestHints.Company, "company", "", "Company of the role to update")
	f.BoolVar(&suggestGenerate, "generate", false, "Ask the model for the content")
	f.StringVar(&suggestJD, "job-description", "", "File with a target job description for --generate")

	if err := suggestCmd.MarkFlagRequired("target"); err != nil {
		panic(fmt.Sprintf("failed to mark target flag as required: %v", err))
	}
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	target, err := suggest.ParseTarget(suggestTarget)
	if err != nil {
		return err
	}
	if suggestContent == "" && !suggestGenerate {
		return fmt.Errorf("either --content or --generate is required")
	}

	engine, err := newEngine([]string{"Professional Summary"})
	if err != nil {
		return err
	}
	res, err := loadFile(engine, args[0])
	if err != nil {
		return err
	}
	doc := engine.Normalize(res.Document)

	content := suggestContent
	if suggestGenerate {
		if content, err = generate(cmd, engine, doc, target); err != nil {
			return err
		}
	}

	merged, err := engine.ApplySuggestion(doc, target, content, suggestHints)
	if err != nil {
		return fmt.Errorf("failed to apply suggestion: %w", err)
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), engine.Export(merged.Document, resume.ExportOptions{}))
	return nil
}

func generate(cmd *cobra.Command, engine *resume.Engine, doc *section.Document, target section.Type) (string, error) {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		return "", fmt.Errorf("ANTHROPIC_API_KEY is required for --generate")
	}
	var jd string
	if suggestJD != "" {
		data, err := os.ReadFile(suggestJD)
		if err != nil {
			return "", fmt.Errorf("failed to read job description: %w", err)
		}
		jd = string(data)
	}

	client := suggest.NewClaudeClient(key, os.Getenv("ANTHROPIC_MODEL"))
	defer client.Close()
	gen := suggest.NewGenerator(client, engine.Merger(), suggest.NewLLMStats(time.Hour), nil)
	sug, err := gen.Generate(cmd.Context(), doc, suggest.Request{
		Target:         target,
		Hints:          suggestHints,
		JobDescription: jd,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate suggestion: %w", err)
	}
	return sug.HTML(), nil
}
