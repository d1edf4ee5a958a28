package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/rightscan/internal/extract"
	"github.com/ppiankov/rightscan/internal/model"
)

// FieldExtractor obtains structured rights fields for one contract's text
type FieldExtractor interface {
	ExtractRecord(ctx context.Context, contractID, text string) (record model.RawRecord, cached bool, err error)
}

// DocumentLoader reads contract text out of a document on disk
type DocumentLoader interface {
	Read(path string) (*extract.Document, error)
}

// ExtractJob reads one document and extracts its rights fields
type ExtractJob struct {
	Path      string
	Loader    DocumentLoader
	Extractor FieldExtractor
}

// ExtractResult represents the outcome for one document. Stage identifies
// where a failure happened ("read" or "llm") so reports can say which
// collaborator failed; the rest of the batch is unaffected either way.
type ExtractResult struct {
	Path   string
	Record *model.RawRecord
	Cached bool
	Stage  string
	Error  error
}

// GetError returns the error from the extract result
func (r *ExtractResult) GetError() error {
	return r.Error
}

// Execute executes the extract job
func (j *ExtractJob) Execute(ctx context.Context) Result {
	doc, err := j.Loader.Read(j.Path)
	if err != nil {
		return &ExtractResult{Path: j.Path, Stage: "read", Error: err}
	}

	record, cached, err := j.Extractor.ExtractRecord(ctx, doc.ContractID, doc.Text)
	if err != nil {
		return &ExtractResult{Path: j.Path, Stage: "llm", Error: err}
	}

	return &ExtractResult{Path: j.Path, Record: &record, Cached: cached}
}

// BatchProcessor extracts rights fields from multiple documents concurrently.
// Only the per-document extract/LLM work runs in parallel; conflict detection
// runs once, single-threaded, over the assembled record set.
type BatchProcessor struct {
	loader      DocumentLoader
	extractor   FieldExtractor
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(loader DocumentLoader, extractor FieldExtractor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		loader:      loader,
		extractor:   extractor,
		concurrency: concurrency,
	}
}

// ProcessPaths extracts fields from the given documents concurrently
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*ExtractResult {
	if len(paths) == 0 {
		return []*ExtractResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	// Submit from a separate goroutine so draining keeps pace with
	// submission; a batch larger than the worker count must not stall
	// the queue
	go func() {
		for _, path := range paths {
			pool.Submit(&ExtractJob{
				Path:      path,
				Loader:    b.loader,
				Extractor: b.extractor,
			})
		}
		pool.Close()
	}()

	results := pool.Wait()

	extractResults := make([]*ExtractResult, len(results))
	for i, result := range results {
		extractResults[i] = result.(*ExtractResult)
	}

	return extractResults
}

// ProcessManifest reads document paths from a manifest file and processes
// them concurrently
func (b *BatchProcessor) ProcessManifest(ctx context.Context, manifestPath string) ([]*ExtractResult, error) {
	paths, err := ReadPathsFromFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads document paths from a file (one per line)
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Deduplicate paths
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
