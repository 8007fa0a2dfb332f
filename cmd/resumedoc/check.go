package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/resumedoc/internal/hierarchy"
	"github.com/dgallion1/resumedoc/internal/section"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Report document invariant breaches before and after normalization",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	engine, err := newEngine(nil)
	if err != nil {
		return err
	}
	res, err := loadFile(engine, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	_, _ = fmt.Fprintf(out, "format: %s\n", res.Format)
	if res.Fallback {
		_, _ = fmt.Fprintln(out, "parse: nothing recognized, default document substituted")
	}
	_, _ = fmt.Fprintf(out, "sections: %d (%d job roles)\n", len(res.Document.Sections), res.Document.Count(section.TypeJobRole))

	report(cmd, "parsed", hierarchy.Validate(res.Document))
	normalized := hierarchy.Validate(engine.Normalize(res.Document))
	report(cmd, "normalized", normalized)
	if normalized != nil {
		return fmt.Errorf("document fails invariants after normalization")
	}
	return nil
}

func report(cmd *cobra.Command, stage string, err error) {
	out := cmd.OutOrStdout()
	var ce *hierarchy.ConsistencyError
	switch {
	case err == nil:
		_, _ = fmt.Fprintf(out, "%s: ok\n", stage)
	case errors.As(err, &ce):
		_, _ = fmt.Fprintf(out, "%s: %d problem(s)\n", stage, len(ce.Problems))
		for _, p := range ce.Problems {
			_, _ = fmt.Fprintf(out, "  - %s\n", p)
		}
	default:
		_, _ = fmt.Fprintf(out, "%s: %v\n", stage, err)
	}
}
