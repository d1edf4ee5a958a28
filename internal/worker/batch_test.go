package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/rightscan/internal/extract"
	"github.com/ppiankov/rightscan/internal/model"
)

// mockLoader implements DocumentLoader
type mockLoader struct {
	failFor map[string]bool
}

func (m *mockLoader) Read(path string) (*extract.Document, error) {
	if m.failFor[path] {
		return nil, errors.New("unreadable document")
	}
	return &extract.Document{
		ContractID: filepath.Base(path),
		Path:       path,
		Text:       "Exclusive SVOD rights in Germany, 2026-01-01 through 2026-12-31.",
	}, nil
}

// mockExtractor implements FieldExtractor
type mockExtractor struct {
	shouldError bool
}

func (m *mockExtractor) ExtractRecord(ctx context.Context, contractID, text string) (model.RawRecord, bool, error) {
	time.Sleep(10 * time.Millisecond) // Simulate work
	if m.shouldError {
		return model.RawRecord{}, false, errors.New("extraction error")
	}
	return model.RawRecord{
		Contract:    contractID,
		Territory:   "Germany",
		Exclusivity: "exclusive",
	}, false, nil
}

func TestBatchProcessor_ProcessPaths(t *testing.T) {
	processor := NewBatchProcessor(&mockLoader{}, &mockExtractor{}, 2)

	paths := []string{"a.pdf", "b.pdf", "c.pdf"}
	results := processor.ProcessPaths(context.Background(), paths)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	for _, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Path, res.Error)
			continue
		}
		if res.Record == nil {
			t.Errorf("expected record for %s", res.Path)
			continue
		}
		if res.Record.Contract != filepath.Base(res.Path) {
			t.Errorf("expected contract id %s, got %s", filepath.Base(res.Path), res.Record.Contract)
		}
	}
}

// A batch several times larger than the worker count must run to
// completion - the pool drains results while documents are still being
// submitted.
func TestBatchProcessor_LargeBatchCompletes(t *testing.T) {
	processor := NewBatchProcessor(&mockLoader{}, &mockExtractor{}, 4)

	paths := make([]string, 0, 40)
	for i := 0; i < 40; i++ {
		paths = append(paths, fmt.Sprintf("contract_%02d.pdf", i))
	}

	done := make(chan []*ExtractResult, 1)
	go func() { done <- processor.ProcessPaths(context.Background(), paths) }()

	select {
	case results := <-done:
		if len(results) != len(paths) {
			t.Fatalf("expected %d results, got %d", len(paths), len(results))
		}
		for _, res := range results {
			if res.Error != nil {
				t.Errorf("unexpected error for %s: %v", res.Path, res.Error)
			}
		}
	case <-time.After(10 * time.Second):
		t.Fatal("batch larger than the worker count never completed")
	}
}

// blockingExtractor holds every extraction until the context is cancelled
type blockingExtractor struct{}

func (b *blockingExtractor) ExtractRecord(ctx context.Context, contractID, text string) (model.RawRecord, bool, error) {
	<-ctx.Done()
	return model.RawRecord{}, false, ctx.Err()
}

// Cancelling the caller's context must unblock a batch whose extractions
// will never finish on their own.
func TestBatchProcessor_CancelUnblocksBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	processor := NewBatchProcessor(&mockLoader{}, &blockingExtractor{}, 2)

	done := make(chan []*ExtractResult, 1)
	go func() {
		done <- processor.ProcessPaths(ctx, []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case results := <-done:
		for _, res := range results {
			if res.Error == nil {
				t.Errorf("expected a cancellation error for %s", res.Path)
			}
		}
	case <-time.After(3 * time.Second):
		t.Fatal("cancellation did not unblock the batch")
	}
}

func TestBatchProcessor_PartialFailureContinues(t *testing.T) {
	loader := &mockLoader{failFor: map[string]bool{"bad.pdf": true}}
	processor := NewBatchProcessor(loader, &mockExtractor{}, 2)

	results := processor.ProcessPaths(context.Background(), []string{"good.pdf", "bad.pdf"})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	var failures, successes int
	for _, res := range results {
		if res.Error != nil {
			failures++
			if res.Stage != "read" {
				t.Errorf("expected read-stage failure, got %s", res.Stage)
			}
		} else {
			successes++
		}
	}

	if failures != 1 || successes != 1 {
		t.Errorf("expected 1 failure and 1 success, got %d/%d", failures, successes)
	}
}

func TestBatchProcessor_LLMFailureStage(t *testing.T) {
	processor := NewBatchProcessor(&mockLoader{}, &mockExtractor{shouldError: true}, 1)

	results := processor.ProcessPaths(context.Background(), []string{"a.pdf"})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Error == nil {
		t.Fatal("expected extraction error")
	}
	if results[0].Stage != "llm" {
		t.Errorf("expected llm-stage failure, got %s", results[0].Stage)
	}
}

func TestBatchProcessor_EmptyInput(t *testing.T) {
	processor := NewBatchProcessor(&mockLoader{}, &mockExtractor{}, 2)

	results := processor.ProcessPaths(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected no results for empty input, got %d", len(results))
	}
}

func TestReadPathsFromFile(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "contracts.txt")
	content := `# licensing batch
contracts/movie_a.pdf

contracts/movie_b.pdf
contracts/movie_a.pdf
`
	if err := os.WriteFile(manifest, []byte(content), 0644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	paths, err := ReadPathsFromFile(manifest)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}

	// Comments and blanks skipped, duplicates removed
	if len(paths) != 2 {
		t.Fatalf("expected 2 unique paths, got %d: %v", len(paths), paths)
	}
	if paths[0] != "contracts/movie_a.pdf" || paths[1] != "contracts/movie_b.pdf" {
		t.Errorf("unexpected paths: %v", paths)
	}
}

func TestReadPathsFromFile_Missing(t *testing.T) {
	if _, err := ReadPathsFromFile("/nonexistent/manifest.txt"); err == nil {
		t.Error("expected error for missing manifest")
	}
}
