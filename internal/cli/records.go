package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/rightscan/internal/pipeline"
	"github.com/spf13/cobra"
)

// recordsCmd represents the records command
var recordsCmd = &cobra.Command{
	Use:   "records <file.json>",
	Short: "Run conflict detection over pre-structured rights records",
	Long: `Records skips document reading and LLM extraction and runs the conflict
engine directly over a JSON array of rights records, for pipelines that
already did their own extraction.

Each record needs a unique "contract" id; all other fields are optional
and degrade silently when missing or unparseable:

  [
    {
      "contract": "movie_a.pdf",
      "rights_type": "SVOD",
      "territory": "United States",
      "exclusivity": "exclusive",
      "license_start": "2026-01-01",
      "license_end": "2026-12-31",
      "holdback": "none"
    }
  ]

Example:
  rightscan records extracted.json --json report.json --csv rights.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runRecords,
}

func init() {
	rootCmd.AddCommand(recordsCmd)

	recordsCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	recordsCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	recordsCmd.Flags().StringVar(&outCSV, "csv", "", "output CSV path (optional)")
	recordsCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runRecords(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	if verbose {
		cfg.Output.Verbose = true
	}

	p := pipeline.NewPipeline(cfg)

	report, err := p.AnalyzeRecords(ctx, args[0])
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if err := p.RenderReport(report, outJSON, outMD, outCSV, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}
