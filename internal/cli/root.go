package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/avetisyan-lab/citewell/internal/model"
)

var (
	cfgFile string
	verbose bool
	offline bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "citewell",
	Short: "Citewell - claim-evidence verification for manuscripts",
	Long: `Citewell links manuscript sentences to claims and verifies that each
claim is backed by an actual quotation found in the source literature.

It ranks existing claims against prose by semantic similarity, runs an
iterative search-and-verify loop over an indexed literature corpus to
find supporting quotations, and detects orphan citations: keys cited in
prose with no verified supporting evidence.

Citewell evaluates evidentiary support, not truth.`,
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
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("citewell v0.2.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.citewell/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "use deterministic offline embedder and judge")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".citewell"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CITEWELL_*
	viper.SetEnvPrefix("CITEWELL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the effective configuration from defaults, the
// config file, environment, and flags.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	if cfg.Workspace.Dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}
		cfg.Workspace.Dir = filepath.Join(home, ".citewell")
	}

	// API keys come from the environment, never from the config file
	if !offline {
		key := os.Getenv("OPENAI_API_KEY")
		cfg.Embedding.APIKey = key
		cfg.Judge.APIKey = key
		if key == "" && (cfg.Embedding.Provider == "openai" || cfg.Judge.Provider == "openai") {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set (or run with --offline)")
		}
	}

	return cfg, nil
}

// buildLogger constructs the process logger.
func buildLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
