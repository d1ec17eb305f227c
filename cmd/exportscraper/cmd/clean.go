package cmd

import (
	"golang-export-scraper/cmd/exportscraper/config"
	"golang-export-scraper/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove incomplete country directories and rebuild the summary",
	Long: `Clean deletes every country directory that does not hold the full set of
artifacts, then rewrites the top-level metadata.json. Summary entries follow
the configured country order; directories not in that list come last.

Examples:
  exportscraper clean --dataset-dir dataset
  exportscraper clean --countries SAU,ARE`,

	PreRunE: bindFlags,
	RunE:    runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().StringSlice(config.KeyCountries, nil, "summary order as comma-separated country codes (default: built-in list)")
	cleanCmd.Flags().String(config.KeyCountriesFile, "", "file with one country code per line")
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadScraperConfig(viper.GetViper())
	if err != nil {
		return err
	}
	return finalizeDataset(cmd.OutOrStdout(), cfg.DatasetDir, cfg.Countries,
		logger.GetGlobalLogger().WithComponent("clean"))
}
