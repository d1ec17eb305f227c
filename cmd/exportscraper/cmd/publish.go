package cmd

import (
	"fmt"

	"golang-export-scraper/cmd/exportscraper/config"
	"golang-export-scraper/internal/dataset"
	"golang-export-scraper/internal/store"
	"golang-export-scraper/internal/store/sqlite"
	"golang-export-scraper/pkg/errors"
	"golang-export-scraper/pkg/logger"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Mirror the dataset into a SQLite database",
	Long: `Publish reads every country directory, converts amounts to the target
unit and replaces that country's rows in the SQLite database. Run clean first
so that only complete countries are published.

Examples:
  exportscraper publish --db exports.db
  exportscraper publish --db exports.db --target-unit مليار`,

	PreRunE: bindFlags,
	RunE:    runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().String(config.KeyDB, "exports.db", "SQLite database path")
	publishCmd.Flags().String(config.KeyTargetUnit, "", "unit label amounts are converted to (default: مليون)")
}

func runPublish(cmd *cobra.Command, args []string) error {
	normCfg, err := config.LoadNormalizerConfig(viper.GetViper())
	if err != nil {
		return err
	}
	normalizer, err := normCfg.Build()
	if err != nil {
		return err
	}

	path := viper.GetString(config.KeyDB)
	db, err := sqlite.New(path)
	if err != nil {
		return errors.FileError(errors.CodeWriteFailed, path, err)
	}
	defer db.Close()

	runID := uuid.NewString()
	log := logger.GetGlobalLogger().WithComponent("publish").WithField("run_id", runID)
	reader := dataset.NewReader(viper.GetString(config.KeyDatasetDir))

	stats, err := store.NewPublisher(reader, db, normalizer, log).Publish(commandContext(cmd), runID)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Run %s: published %d countries (%d skipped), %d items, %d yearly, %d monthly rows to %s\n",
		runID, stats.Countries, stats.Skipped, stats.Items, stats.Yearly, stats.Monthly, path)
	if stats.Unrecognized > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%d amounts kept unscaled: unit label not recognized\n", stats.Unrecognized)
	}
	return nil
}
