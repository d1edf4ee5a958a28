package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/rightscan/internal/model"
	"github.com/ppiankov/rightscan/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	outJSON     string
	outMD       string
	outCSV      string
	timeout     time.Duration
	noCache     bool
	noFooter    bool
	llmProvider string
	llmModel    string
)

// supportedExtensions lists the document types the analyzer accepts when
// expanding directories
var supportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".html": true,
	".htm":  true,
	".pdf":  true,
	".docx": true,
}

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|dir>...",
	Short: "Analyze contract documents for licensing-rights conflicts",
	Long: `Analyze extracts licensing-rights fields from contract documents and
detects conflicts between them:
- Read contract text (.txt, .md, .html, .pdf, .docx)
- Extract territory, exclusivity, license window and holdback via an LLM
- Flag every pair of contracts whose exclusive windows overlap in the
  same territory
- Classify each contract (CONFLICT / HOLDBACK / CLEAR) and render reports

Example:
  rightscan analyze contracts/
  rightscan analyze movie_a.pdf movie_b.pdf --json report.json --csv rights.csv
  rightscan analyze contracts/ --llm-provider openai --llm-model gpt-4o-mini`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().StringVar(&outCSV, "csv", "", "output CSV path (optional)")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Run flags
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable extraction cache (force fresh LLM calls)")

	// LLM flags
	analyzeCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	paths, err := collectDocuments(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no supported documents found (supported: .txt .md .html .htm .pdf .docx)")
	}

	// Explicit flags outrank the config file and RIGHTSCAN_* environment
	_ = viper.BindPFlag("llm.provider", cmd.Flags().Lookup("llm-provider"))
	_ = viper.BindPFlag("llm.model", cmd.Flags().Lookup("llm-model"))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
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

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing %d documents\n", len(paths))
		fmt.Fprintf(os.Stderr, "Provider: %s\n", cfg.LLM.Provider)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p := pipeline.NewPipeline(cfg)

	report, err := p.AnalyzeFiles(ctx, paths)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted %d records (%d from cache)\n", len(report.Records), report.LLM.Cached)
		fmt.Fprintf(os.Stderr, "✓ Detected %d conflicts\n", len(report.Findings))
		if len(report.Failures) > 0 {
			fmt.Fprintf(os.Stderr, "✗ %d documents failed\n", len(report.Failures))
		}
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(report, outJSON, outMD, outCSV, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// configureLLM validates the configured provider and pulls its API key from
// the environment. Keys never come from config files.
func configureLLM(cfg *model.Config) error {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	case "":
		return fmt.Errorf("an LLM provider is required (openai, anthropic, ollama)")
	default:
		return fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", cfg.LLM.Provider)
	}

	return nil
}

// collectDocuments expands the argument list into a sorted set of supported
// document paths; directories are walked one level deep.
func collectDocuments(args []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)

	add := func(path string) {
		if supportedExtensions[strings.ToLower(filepath.Ext(path))] && !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}

		if !info.IsDir() {
			add(arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", arg, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				add(filepath.Join(arg, entry.Name()))
			}
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// defaultCacheDir resolves the extraction cache location
func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rightscan-cache"
	}
	return filepath.Join(home, ".rightscan", "cache")
}
