package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/rightscan/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rightscan",
	Short: "Rightscan - licensing-rights conflict detection for media contracts",
	Long: `Rightscan analyzes media licensing contracts for rights conflicts.

It extracts licensing-rights fields (territory, exclusivity, license window,
holdbacks) from contract documents using an LLM provider, then runs a
deterministic conflict engine over the extracted records: two contracts
conflict when their license windows overlap in the same territory and at
least one grant is exclusive.

Extraction is best effort and never blocks the batch: a contract whose
fields cannot be parsed simply matches nothing. The conflict engine itself
is pure and deterministic - same records in, same findings out.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for rightscan.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("rightscan v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.rightscan/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setConfigDefaults()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.rightscan")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match RIGHTSCAN_*
	// (nested keys use underscores: RIGHTSCAN_LLM_PROVIDER -> llm.provider)
	viper.SetEnvPrefix("RIGHTSCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}

	// A config file or RIGHTSCAN_VERBOSE can turn verbosity on; the bound
	// flag still wins when passed explicitly
	verbose = viper.GetBool("verbose")
}

// setConfigDefaults registers every configuration key with viper so config
// files and RIGHTSCAN_* environment variables can override the built-in
// defaults key by key.
func setConfigDefaults() {
	def := model.DefaultConfig()

	viper.SetDefault("llm.provider", def.LLM.Provider)
	viper.SetDefault("llm.model", def.LLM.Model)
	viper.SetDefault("llm.base_url", def.LLM.BaseURL)
	viper.SetDefault("llm.timeout", def.LLM.Timeout)
	viper.SetDefault("llm.max_tokens", def.LLM.MaxTokens)
	viper.SetDefault("llm.http_proxy", def.LLM.HTTPProxy)
	viper.SetDefault("llm.https_proxy", def.LLM.HTTPSProxy)
	viper.SetDefault("llm.no_proxy", def.LLM.NoProxy)
	viper.SetDefault("extract.max_text_bytes", def.Extract.MaxTextBytes)
	viper.SetDefault("cache.enabled", def.Cache.Enabled)
	viper.SetDefault("cache.dir", def.Cache.Dir)
	viper.SetDefault("cache.memory_ttl", def.Cache.MemoryTTL)
	viper.SetDefault("cache.disk_ttl", def.Cache.DiskTTL)
	viper.SetDefault("concurrency.workers", def.Concurrency.Workers)
	viper.SetDefault("rate_limit.requests_per_second", def.RateLimit.RequestsPerSecond)
	viper.SetDefault("rate_limit.burst_size", def.RateLimit.BurstSize)
	viper.SetDefault("output.verbose", def.Output.Verbose)
	viper.SetDefault("output.include_footer", def.Output.IncludeFooter)
}

// loadConfig builds the effective configuration: defaults overridden by the
// config file and RIGHTSCAN_* environment variables. Flags bound to viper
// keys take highest priority; the callers apply flag-only overrides on top.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
