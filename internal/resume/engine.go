// Package resume ties the parser, normalizer, hierarchy manager, merger and
// serializer into the operations the API and the CLI expose.
package resume

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dgallion1/resumedoc/internal/config"
	"github.com/dgallion1/resumedoc/internal/export"
	"github.com/dgallion1/resumedoc/internal/hierarchy"
	"github.com/dgallion1/resumedoc/internal/ingest"
	"github.com/dgallion1/resumedoc/internal/normalize"
	"github.com/dgallion1/resumedoc/internal/parser"
	"github.com/dgallion1/resumedoc/internal/section"
	"github.com/dgallion1/resumedoc/internal/suggest"
)

// Engine is safe for concurrent use; documents are never shared between
// calls.
type Engine struct {
	parser         *parser.Parser
	normalizer     *normalize.Normalizer
	merger         *suggest.Merger
	ingest         ingest.Options
	suppressTitles []string
	log            *slog.Logger
}

// Options configures an Engine.
type Options struct {
	Rules             parser.Rules
	SuppressTitles    []string
	FallbackPdftotext bool
}

// New builds an engine. A zero Rules uses the defaults.
func New(opts Options, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	rules := opts.Rules
	if rules.Sections == nil {
		rules = parser.DefaultRules()
	}
	isTitle := rules.TitleMatcher()
	return &Engine{
		parser:         parser.New(rules, log),
		normalizer:     normalize.New(isTitle),
		merger:         suggest.NewMerger(isTitle),
		ingest:         ingest.Options{Rules: rules, FallbackPdftotext: opts.FallbackPdftotext},
		suppressTitles: opts.SuppressTitles,
		log:            log,
	}
}

// FromConfig builds an engine from the service configuration, loading the
// rule extension file when one is set.
func FromConfig(cfg config.Config, log *slog.Logger) (*Engine, error) {
	rules := parser.DefaultRules()
	if cfg.RulesFile != "" {
		var err error
		rules, err = parser.LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
	}
	return New(Options{
		Rules:             rules,
		SuppressTitles:    cfg.SuppressTitles,
		FallbackPdftotext: cfg.PDFFallbackPdftotext,
	}, log), nil
}

// Merger returns the suggestion merger sharing the engine's title rules.
func (e *Engine) Merger() *suggest.Merger {
	return e.merger
}

// Load parses raw and normalizes the result.
func (e *Engine) Load(raw string, format parser.Format) parser.Result {
	res := e.parser.Parse(raw, format)
	res.Document = e.normalizer.Document(res.Document)
	e.debugCheck(res.Document, "load")
	return res
}

// Parse runs the parser alone, without normalization.
func (e *Engine) Parse(raw string, format parser.Format) parser.Result {
	return e.parser.Parse(raw, format)
}

// Convert turns an uploaded file into parser input.
func (e *Engine) Convert(r io.Reader, filename string) (*ingest.Source, error) {
	return e.ingest.Convert(r, filename)
}

// Ingest converts an uploaded file and loads it.
func (e *Engine) Ingest(r io.Reader, filename string) (*ingest.Source, parser.Result, error) {
	src, err := e.Convert(r, filename)
	if err != nil {
		return nil, parser.Result{}, err
	}
	return src, e.Load(src.Raw, src.Format), nil
}

// IsSupportedFile reports whether Ingest accepts filename.
func (e *Engine) IsSupportedFile(filename string) bool {
	return ingest.IsSupportedExtension(filename)
}

// Normalize returns the canonical form of doc.
func (e *Engine) Normalize(doc *section.Document) *section.Document {
	return e.normalizer.Document(doc)
}

// Edit applies fn to a manager over doc and normalizes the outcome. The
// input document is not modified.
func (e *Engine) Edit(doc *section.Document, fn func(*hierarchy.Manager) error) (*section.Document, error) {
	mgr := hierarchy.New(doc)
	if err := fn(mgr); err != nil {
		return nil, err
	}
	out := e.normalizer.Document(mgr.Document())
	e.debugCheck(out, "edit")
	return out, nil
}

// ApplySuggestion merges content into doc and normalizes the outcome.
func (e *Engine) ApplySuggestion(doc *section.Document, target section.Type, content string, hints suggest.Hints) (suggest.MergeResult, error) {
	res, err := e.merger.Apply(doc, target, content, hints)
	if err != nil {
		return res, err
	}
	res.Document = e.normalizer.Document(res.Document)
	e.debugCheck(res.Document, "suggestion")
	return res, nil
}

// ExportOptions selects serializer behaviour per call.
type ExportOptions struct {
	// SuppressTitles overrides the engine's list when non-nil.
	SuppressTitles  []string
	PageBreakBefore []string
}

// Export serializes doc to Markdown.
func (e *Engine) Export(doc *section.Document, opts ExportOptions) string {
	suppress := e.suppressTitles
	if opts.SuppressTitles != nil {
		suppress = opts.SuppressTitles
	}
	return export.Document(doc, export.Options{
		SuppressTitles:  suppress,
		PageBreakBefore: opts.PageBreakBefore,
		IsJobTitle:      e.parser.Rules().TitleMatcher(),
	})
}

func (e *Engine) debugCheck(doc *section.Document, op string) {
	if !e.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	if err := hierarchy.Validate(doc); err != nil {
		e.log.Debug("document inconsistent", "op", op, "error", err)
	}
}
