package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/resumedoc/internal/markup"
	"github.com/dgallion1/resumedoc/internal/section"
)

// Client returns raw model text for a prompt. *ClaudeClient implements it.
type Client interface {
	Suggest(ctx context.Context, prompt string) (string, error)
}

// Request describes what to generate.
type Request struct {
	Target         section.Type
	Hints          Hints
	JobDescription string
}

// Generator builds prompts from a document, calls the model with retries,
// and validates the answer.
type Generator struct {
	client  Client
	merger  *Merger
	stats   *LLMStats
	log     *slog.Logger
	backoff func(int) time.Duration
}

// NewGenerator wires a Generator. stats may be nil.
func NewGenerator(client Client, merger *Merger, stats *LLMStats, log *slog.Logger) *Generator {
	if merger == nil {
		merger = NewMerger(nil)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Generator{client: client, merger: merger, stats: stats, log: log, backoff: Backoff}
}

// Generate asks the model for new content for the section req resolves to.
// Summaries and job roles are supported.
func (g *Generator) Generate(ctx context.Context, doc *section.Document, req Request) (Suggestion, error) {
	target, ok := g.merger.Resolve(doc, req.Target, req.Hints)
	wantBullets := req.Target == section.TypeJobRole || req.Target == section.TypeExperience
	if ok {
		wantBullets = target.Type == section.TypeJobRole
	}

	var prompt string
	switch {
	case wantBullets:
		content := target.Content
		if !ok {
			content = section.PlaceholderRole().Content
		}
		heading, _ := markup.RoleParts(content, section.IsMetaLine)
		prompt = BuildRolePrompt(markup.Text(heading), roleBullets(content), req.JobDescription)
	case req.Target == section.TypeSummary:
		var current string
		if ok {
			current = markup.Text(target.Content)
		}
		prompt = BuildSummaryPrompt(current, roleHeadings(doc), req.JobDescription)
	default:
		return Suggestion{}, fmt.Errorf("generate: unsupported target %s", req.Target)
	}

	log := g.log.With("target", string(req.Target), "section_id", target.ID)
	start := time.Now()
	var text string
	err := withRetry(ctx, g.backoff, func() error {
		var err error
		text, err = g.client.Suggest(ctx, prompt)
		if err != nil && IsRetryable(err) {
			log.Warn("suggestion call failed, retrying", "error", err)
		}
		return err
	})
	if err != nil {
		if g.stats != nil {
			g.stats.RecordFailure()
		}
		return Suggestion{}, fmt.Errorf("generate: %w", err)
	}
	elapsed := time.Since(start)
	if g.stats != nil {
		g.stats.Record(elapsed)
	}

	sug, err := ParseSuggestion(text)
	if err != nil {
		return Suggestion{}, fmt.Errorf("generate: %w", err)
	}
	if wantBullets {
		sug.Summary = ""
	} else {
		sug.Bullets = nil
	}
	if !ValidateSuggestion(&sug) {
		return Suggestion{}, ErrRejected
	}
	log.Info("suggestion generated", "duration_ms", elapsed.Milliseconds(), "bullets", len(sug.Bullets))
	return sug, nil
}

// Apply generates a suggestion and merges it into doc.
func (g *Generator) Apply(ctx context.Context, doc *section.Document, req Request) (MergeResult, error) {
	sug, err := g.Generate(ctx, doc, req)
	if err != nil {
		return MergeResult{}, err
	}
	return g.merger.Apply(doc, req.Target, sug.HTML(), req.Hints)
}

func roleBullets(content string) []string {
	var out []string
	for _, b := range markup.Blocks(content) {
		if b.Kind != markup.BlockList {
			continue
		}
		for _, it := range b.Items {
			if t := markup.Text(it); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

func roleHeadings(doc *section.Document) []string {
	var out []string
	for _, s := range doc.Sections {
		if s.Type != section.TypeJobRole {
			continue
		}
		heading, meta := markup.RoleParts(s.Content, section.IsMetaLine)
		line := markup.Text(heading)
		if m := markup.Text(meta); m != "" {
			line += " (" + m + ")"
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
