// Package pipeline orchestrates a full analysis run: document text
// extraction, LLM field extraction, then the deterministic conflict engine,
// and finally report rendering.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/ppiankov/rightscan/internal/cache"
	"github.com/ppiankov/rightscan/internal/conflict"
	"github.com/ppiankov/rightscan/internal/extract"
	"github.com/ppiankov/rightscan/internal/llm"
	"github.com/ppiankov/rightscan/internal/model"
	"github.com/ppiankov/rightscan/internal/worker"
)

// Pipeline orchestrates the complete analysis process
type Pipeline struct {
	reader    *extract.DocumentReader
	extractor *llm.Extractor // nil when no provider is configured
	engine    *conflict.Engine
	renderer  *Renderer
	config    *model.Config
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config) *Pipeline {
	// Create the LLM extractor if a provider is configured
	var extractor *llm.Extractor
	if cfg.LLM.Provider != "" {
		var store cache.Cache
		if cfg.Cache.Enabled && cfg.Cache.Dir != "" {
			store = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		}
		limiter := worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize)

		e, err := llm.NewExtractor(llm.ConfigFromModel(cfg.LLM), store, limiter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
		} else {
			extractor = e
		}
	}

	return &Pipeline{
		reader:    extract.NewDocumentReader(cfg.Extract.MaxTextBytes),
		extractor: extractor,
		engine:    conflict.NewEngine(),
		renderer:  NewRenderer(cfg.Output.IncludeFooter),
		config:    cfg,
	}
}

// HasExtractor reports whether an LLM provider is wired and enabled
func (p *Pipeline) HasExtractor() bool {
	return p.extractor != nil && p.extractor.IsEnabled()
}

// AnalyzeFiles runs the full pipeline over the given documents: read text,
// extract fields via the LLM (concurrently), then run the conflict engine
// over the assembled batch. A document that fails to read or extract becomes
// a DocumentFailure in the report; the batch always completes.
func (p *Pipeline) AnalyzeFiles(ctx context.Context, paths []string) (*model.Report, error) {
	if !p.HasExtractor() {
		return nil, fmt.Errorf("no LLM provider configured (use --llm-provider, or 'rightscan records' for pre-structured input)")
	}

	processor := worker.NewBatchProcessor(p.reader, p.extractor, p.config.Concurrency.Workers)
	results := processor.ProcessPaths(ctx, paths)

	// The pool returns results in completion order; restore input order so
	// findings are deterministic for a given path list
	byPath := make(map[string]*worker.ExtractResult, len(results))
	for _, r := range results {
		byPath[r.Path] = r
	}

	var raw []model.RawRecord
	var failures []model.DocumentFailure
	cachedCount := 0

	for _, path := range paths {
		r, ok := byPath[path]
		if !ok {
			continue
		}
		if r.Error != nil {
			failures = append(failures, model.DocumentFailure{
				Source: r.Path,
				Stage:  r.Stage,
				Error:  r.Error.Error(),
			})
			continue
		}
		raw = append(raw, *r.Record)
		if r.Cached {
			cachedCount++
		}
	}

	report := p.analyze(raw)
	report.Sources = paths
	report.Failures = failures
	report.LLM = &model.LLMInfo{
		Provider: p.extractor.ProviderName(),
		Model:    p.config.LLM.Model,
		Cached:   cachedCount,
	}

	return report, nil
}

// AnalyzeRecords runs the engine over already-structured records, for
// pipelines that did their own extraction. Path names a JSON file holding an
// array of raw records.
func (p *Pipeline) AnalyzeRecords(ctx context.Context, path string) (*model.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	var raw []model.RawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse records: %w", err)
	}

	if err := validateBatch(raw); err != nil {
		return nil, err
	}

	report := p.analyze(raw)
	report.Sources = []string{path}
	return report, nil
}

// analyze is the deterministic tail shared by both entry points
func (p *Pipeline) analyze(raw []model.RawRecord) *model.Report {
	records := p.engine.Normalize(raw)
	findings := p.engine.DetectConflicts(records)
	labels := p.engine.Classify(records, findings)
	summary := p.engine.Summarize(records, findings)

	return &model.Report{
		AnalyzedAt:      time.Now().UTC(),
		Records:         records,
		Findings:        findings,
		Classifications: labels,
		Summary:         summary,
	}
}

// RenderReport renders the report to the specified outputs
func (p *Pipeline) RenderReport(report *model.Report, jsonPath, mdPath, csvPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	if csvPath != "" {
		if err := p.renderer.RenderCSV(report, csvPath); err != nil {
			return fmt.Errorf("render CSV: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote CSV: %s\n", csvPath)
		}
	}

	// Print summary to stdout
	p.renderer.RenderSummary(report)

	return nil
}

// validateBatch enforces the one hard input invariant: contract ids present
// and unique. Everything else degrades silently.
func validateBatch(raw []model.RawRecord) error {
	seen := make(map[string]bool, len(raw))
	var dupes []string

	for i, r := range raw {
		if r.Contract == "" {
			return fmt.Errorf("record %d has no contract id", i)
		}
		if seen[r.Contract] {
			dupes = append(dupes, r.Contract)
		}
		seen[r.Contract] = true
	}

	if len(dupes) > 0 {
		sort.Strings(dupes)
		return fmt.Errorf("duplicate contract ids: %v", dupes)
	}
	return nil
}
