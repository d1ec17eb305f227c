package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang-export-scraper/cmd/exportscraper/config"
	"golang-export-scraper/pkg/errors"
	"golang-export-scraper/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "exportscraper",
	Short: "Export statistics dataset builder",
	Long: `Exportscraper collects per-country export statistics from the export
council's country pages and turns them into a dataset directory: one folder
per country with metadata.json, items.csv, yearly.csv and monthly.csv, plus a
top-level metadata.json summary.

Examples:
  exportscraper collect --dataset-dir dataset
  exportscraper collect --countries SAU,ARE --rate 2
  exportscraper clean --dataset-dir dataset
  exportscraper publish --db exports.db
  exportscraper serve --addr :8080
  exportscraper version`,
	Version:           getVersionString(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	rootCmd.PersistentFlags().BoolP(config.KeyVerbose, "v", false, "verbose output (forces debug logging)")
	rootCmd.PersistentFlags().String(config.KeyLogLevel, string(logger.InfoLevel), "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String(config.KeyLogFormat, string(logger.TextFormat), "log format: text, json")
	rootCmd.PersistentFlags().String(config.KeyLogFile, "", "append logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringP(config.KeyDatasetDir, "d", config.DefaultDatasetDir, "dataset directory")

	viper.BindPFlags(rootCmd.PersistentFlags())
}

// initConfig reads in config file and ENV variables.
func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)

		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
			os.Exit(errors.ConfigurationError(errors.CodeInvalidConfig, "config", cfgFile, err).GetExitCode())
		}
	}

	// EXPORTSCRAPER_DATASET_DIR maps to dataset-dir
	viper.SetEnvPrefix("EXPORTSCRAPER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// setupLogging installs the global logger before any subcommand runs
func setupLogging(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoggerConfig(viper.GetViper())
	if err != nil {
		return err
	}
	var log logger.Logger
	if cfg.Output == logger.FileOutput {
		log, err = logger.NewLogger(cfg)
	} else {
		log, err = logger.NewWithWriter(cfg, cmd.ErrOrStderr())
	}
	if err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "logging", cfg, err)
	}
	logger.SetGlobalLogger(log)

	if cfgFile != "" {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
	}
	return nil
}

// bindFlags binds a subcommand's local flags at run time, so commands can
// share flag names without overwriting each other's bindings.
func bindFlags(cmd *cobra.Command, args []string) error {
	return viper.BindPFlags(cmd.LocalFlags())
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
