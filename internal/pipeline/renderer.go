package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/rightscan/internal/model"
)

// Renderer writes analysis reports as JSON, Markdown and CSV
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// RenderMarkdown writes a human-readable conflict report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder

	b.WriteString("# Rights Conflict Report\n\n")
	b.WriteString(fmt.Sprintf("Analyzed: %s\n\n", report.AnalyzedAt.Format(time.RFC3339)))

	b.WriteString("## Summary\n\n")
	b.WriteString("| Contracts | Exclusive deals | Holdbacks | Conflicts |\n")
	b.WriteString("|-----------|-----------------|-----------|-----------|\n")
	b.WriteString(fmt.Sprintf("| %d | %d | %d | %d |\n\n",
		report.Summary.TotalContracts,
		report.Summary.ExclusiveDeals,
		report.Summary.Holdbacks,
		report.Summary.Conflicts))

	if len(report.Findings) > 0 {
		b.WriteString("## Conflicts\n\n")
		for _, f := range report.Findings {
			b.WriteString(fmt.Sprintf("- ⚠️ %s\n", f.String()))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("## Conflicts\n\nNo exclusive-window overlaps detected.\n\n")
	}

	b.WriteString("## Contracts\n\n")
	b.WriteString("| Contract | Rights Type | Territory | Exclusivity | License Start | License End | Holdback | Status |\n")
	b.WriteString("|----------|-------------|-----------|-------------|---------------|-------------|----------|--------|\n")
	for _, rec := range report.Records {
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			rec.ContractID,
			orDash(rec.RightsType),
			orDash(rec.Territory),
			string(rec.Exclusivity),
			formatDate(rec.LicenseStart),
			formatDate(rec.LicenseEnd),
			orDash(rec.Holdback),
			string(report.Classifications[rec.ContractID])))
	}
	b.WriteString("\n")

	if len(report.Failures) > 0 {
		b.WriteString("## Failed Documents\n\n")
		for _, f := range report.Failures {
			b.WriteString(fmt.Sprintf("- ✗ %s (%s): %s\n", f.Source, f.Stage, f.Error))
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n")
		b.WriteString("Generated by rightscan. Conflict detection is deterministic; ")
		b.WriteString("extracted field values are best-effort and should be verified against the source contracts.\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}

	return nil
}

// RenderCSV writes the record table with a classification column, one row
// per contract
func (r *Renderer) RenderCSV(report *model.Report, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close csv: %w", closeErr)
		}
	}()

	w := csv.NewWriter(f)

	header := []string{"contract_id", "rights_type", "territory", "exclusivity",
		"license_start", "license_end", "holdback", "music_clearance", "options", "status"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range report.Records {
		row := []string{
			rec.ContractID,
			rec.RightsType,
			rec.Territory,
			string(rec.Exclusivity),
			formatDateCSV(rec.LicenseStart),
			formatDateCSV(rec.LicenseEnd),
			rec.Holdback,
			rec.MusicClearance,
			rec.Options,
			string(report.Classifications[rec.ContractID]),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}

// RenderSummary prints the four-counter block to stdout
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Println()
	fmt.Printf("Contracts analyzed:  %d\n", report.Summary.TotalContracts)
	fmt.Printf("Exclusive deals:     %d\n", report.Summary.ExclusiveDeals)
	fmt.Printf("Holdbacks:           %d\n", report.Summary.Holdbacks)
	fmt.Printf("Conflicts:           %d\n", report.Summary.Conflicts)

	if len(report.Findings) > 0 {
		fmt.Println()
		for _, f := range report.Findings {
			fmt.Printf("⚠️  %s\n", f.String())
		}
	}

	if len(report.Failures) > 0 {
		fmt.Println()
		for _, f := range report.Failures {
			fmt.Printf("✗ %s (%s): %s\n", f.Source, f.Stage, f.Error)
		}
	}
	fmt.Println()
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	// Pipes would break the table
	return strings.ReplaceAll(s, "|", "/")
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "—"
	}
	return t.Format("2006-01-02")
}

func formatDateCSV(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
