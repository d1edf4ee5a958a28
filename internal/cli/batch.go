package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ppiankov/rightscan/internal/pipeline"
	"github.com/ppiankov/rightscan/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <manifest>",
	Short: "Analyze contract documents listed in a manifest file",
	Long: `Batch processes a large contract set concurrently:
- Read document paths from a manifest file (one per line, # comments)
- Run LLM field extraction in parallel with a configurable worker count
- Run conflict detection once over the complete extracted record set
- Write JSON, Markdown and CSV reports to the output directory

Conflict detection always covers the whole batch: two contracts from
different manifest lines still conflict when their exclusive windows
overlap in the same territory.

Example:
  rightscan batch contracts.txt
  rightscan batch contracts.txt --concurrency 8 --output-dir ./reports
  rightscan batch contracts.txt --llm-provider anthropic`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent extraction workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./rightscan-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")

	// Inherit flags from analyze command
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable extraction cache (force fresh LLM calls)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// LLM flags
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	manifest := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	// Explicit flags outrank the config file and RIGHTSCAN_* environment
	_ = viper.BindPFlag("llm.provider", cmd.Flags().Lookup("llm-provider"))
	_ = viper.BindPFlag("llm.model", cmd.Flags().Lookup("llm-model"))
	_ = viper.BindPFlag("concurrency.workers", cmd.Flags().Lookup("concurrency"))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	concurrency = cfg.Concurrency.Workers

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Rightscan Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Manifest:     %s\n", manifest)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	// Apply flag-only overrides
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	if cfg.Cache.Enabled && cfg.Cache.Dir == "" {
		cfg.Cache.Dir = defaultCacheDir()
	}

	if err := configureLLM(cfg); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, orDefault(cfg.LLM.Model))
	fmt.Fprintf(os.Stderr, "\n")

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// Read manifest
	paths, err := worker.ReadPathsFromFile(manifest)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d document paths\n", len(paths))
	fmt.Fprintf(os.Stderr, "⚙️  Extracting with %d workers...\n", concurrency)
	fmt.Fprintf(os.Stderr, "\n")

	// Analyze the whole set in one run so conflicts across manifest lines
	// are detected
	p := pipeline.NewPipeline(cfg)
	report, err := p.AnalyzeFiles(ctx, paths)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	for _, f := range report.Failures {
		fmt.Fprintf(os.Stderr, "✗ %s (%s): %s\n", f.Source, f.Stage, f.Error)
	}

	// Render reports
	jsonPath := filepath.Join(outputDir, "report.json")
	mdPath := filepath.Join(outputDir, "report.md")
	csvPath := filepath.Join(outputDir, "rights.csv")
	if err := p.RenderReport(report, jsonPath, mdPath, csvPath, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Documents:  %d\n", len(paths))
	fmt.Fprintf(os.Stderr, "  Extracted:  %d\n", len(report.Records))
	fmt.Fprintf(os.Stderr, "  Failures:   %d\n", len(report.Failures))
	fmt.Fprintf(os.Stderr, "  Conflicts:  %d\n", report.Summary.Conflicts)
	fmt.Fprintf(os.Stderr, "  Output:     %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

func orDefault(model string) string {
	if strings.TrimSpace(model) == "" {
		return "default"
	}
	return model
}
