package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/rightscan/internal/model"
)

func writeRecordsFixture(t *testing.T, json string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.json")
	if err := os.WriteFile(path, []byte(json), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestAnalyzeRecords_EndToEnd(t *testing.T) {
	p := NewPipeline(model.DefaultConfig())

	path := writeRecordsFixture(t, `[
		{"contract": "eu_tvod.pdf", "rights_type": "TVOD", "territory": "European Union", "exclusivity": "Exclusive", "license_start": "2024-01-01", "license_end": "2026-12-31"},
		{"contract": "us_svod.pdf", "rights_type": "SVOD", "territory": "United States", "exclusivity": "Non-Exclusive", "license_start": "2024-02-01", "license_end": "2025-01-31"},
		{"contract": "movie_a.pdf", "rights_type": "Streaming", "territory": "United States", "exclusivity": "Exclusive", "license_start": "2026-01-01", "license_end": "2026-12-31"},
		{"contract": "movie_b.pdf", "rights_type": "Streaming", "territory": "United States", "exclusivity": "Exclusive", "license_start": "2026-06-01", "license_end": "2027-06-01"},
		{"contract": "movie_c.pdf", "rights_type": "Streaming", "territory": "United States", "exclusivity": "Exclusive", "license_start": "2027-01-01", "license_end": "2027-12-31"}
	]`)

	report, err := p.AnalyzeRecords(context.Background(), path)
	if err != nil {
		t.Fatalf("AnalyzeRecords failed: %v", err)
	}

	if report.Summary.TotalContracts != 5 {
		t.Errorf("expected 5 contracts, got %d", report.Summary.TotalContracts)
	}
	if report.Summary.ExclusiveDeals != 4 {
		t.Errorf("expected 4 exclusive deals, got %d", report.Summary.ExclusiveDeals)
	}

	// movie_a/movie_b and movie_b/movie_c overlap; eu/us never cross territories
	foundAB := false
	for _, f := range report.Findings {
		if f.Involves("eu_tvod.pdf") {
			t.Errorf("EU deal must not conflict with US deals: %s", f.String())
		}
		if f.Involves("movie_a.pdf") && f.Involves("movie_b.pdf") {
			foundAB = true
		}
	}
	if !foundAB {
		t.Error("expected movie_a/movie_b conflict")
	}

	if report.Classifications["movie_a.pdf"] != model.LabelConflict {
		t.Errorf("expected movie_a to be CONFLICT, got %s", report.Classifications["movie_a.pdf"])
	}
	if report.Classifications["us_svod.pdf"] != model.LabelClear {
		t.Errorf("expected us_svod to be CLEAR, got %s", report.Classifications["us_svod.pdf"])
	}
}

func TestAnalyzeRecords_MissingFieldsDegrade(t *testing.T) {
	p := NewPipeline(model.DefaultConfig())

	// A record with nothing but an id never matches anything and stays CLEAR
	path := writeRecordsFixture(t, `[
		{"contract": "sparse.pdf"},
		{"contract": "full.pdf", "territory": "US", "exclusivity": "exclusive", "license_start": "2026-01-01", "license_end": "2026-12-31"}
	]`)

	report, err := p.AnalyzeRecords(context.Background(), path)
	if err != nil {
		t.Fatalf("AnalyzeRecords failed: %v", err)
	}

	if len(report.Findings) != 0 {
		t.Errorf("expected no findings, got %d", len(report.Findings))
	}
	if report.Classifications["sparse.pdf"] != model.LabelClear {
		t.Errorf("expected sparse record to be CLEAR, got %s", report.Classifications["sparse.pdf"])
	}
}

func TestAnalyzeRecords_DuplicateIDsRejected(t *testing.T) {
	p := NewPipeline(model.DefaultConfig())

	path := writeRecordsFixture(t, `[
		{"contract": "same.pdf"},
		{"contract": "same.pdf"}
	]`)

	if _, err := p.AnalyzeRecords(context.Background(), path); err == nil {
		t.Error("expected error for duplicate contract ids")
	}
}

func TestAnalyzeRecords_EmptyIDRejected(t *testing.T) {
	p := NewPipeline(model.DefaultConfig())

	path := writeRecordsFixture(t, `[{"contract": ""}]`)

	if _, err := p.AnalyzeRecords(context.Background(), path); err == nil {
		t.Error("expected error for empty contract id")
	}
}

func TestAnalyzeRecords_BadJSON(t *testing.T) {
	p := NewPipeline(model.DefaultConfig())

	path := writeRecordsFixture(t, `{not json`)

	if _, err := p.AnalyzeRecords(context.Background(), path); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestAnalyzeFiles_RequiresProvider(t *testing.T) {
	p := NewPipeline(model.DefaultConfig()) // LLM disabled by default

	if _, err := p.AnalyzeFiles(context.Background(), []string{"a.pdf"}); err == nil {
		t.Error("expected error when no LLM provider is configured")
	}
}
