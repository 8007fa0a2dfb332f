package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Print the normalized sections and hierarchy as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

var parseRaw bool

func init() {
	parseCmd.Flags().BoolVar(&parseRaw, "raw", false, "Skip normalization and print the parser output as is")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	engine, err := newEngine(nil)
	if err != nil {
		return err
	}
	res, err := loadFile(engine, args[0])
	if err != nil {
		return err
	}
	doc := res.Document
	if !parseRaw {
		doc = engine.Normalize(doc)
	}

	out, err := json.MarshalIndent(map[string]any{
		"format":    res.Format,
		"fallback":  res.Fallback,
		"sections":  doc.Sections,
		"hierarchy": doc.Hierarchy,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
