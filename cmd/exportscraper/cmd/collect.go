package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang-export-scraper/cmd/exportscraper/config"
	"golang-export-scraper/internal/dataset"
	"golang-export-scraper/internal/reporter"
	"golang-export-scraper/internal/scraper"
	"golang-export-scraper/pkg/errors"
	"golang-export-scraper/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Scrape every configured country into the dataset directory",
	Long: `Collect visits each country code in order, fetches its page and writes
metadata.json plus the items, yearly and monthly tables. A country that fails
is logged and skipped; the batch always continues. Afterwards incomplete
country directories are removed and the top-level summary is rebuilt.

Examples:
  # Full run over the built-in country list
  exportscraper collect --dataset-dir dataset

  # A few countries, two requests per second
  exportscraper collect --countries SAU,ARE,KWT --rate 2

  # Country list from a file, keep partial directories
  exportscraper collect --countries-file gulf.txt --skip-clean`,

	PreRunE: bindFlags,
	RunE:    runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().String(config.KeyURLTemplate, scraper.DefaultURLTemplate, "country page URL with a {country_code} placeholder")
	collectCmd.Flags().StringSlice(config.KeyCountries, nil, "comma-separated ISO3 country codes (default: built-in list)")
	collectCmd.Flags().String(config.KeyCountriesFile, "", "file with one country code per line")
	collectCmd.Flags().Int(config.KeyLimit, 0, "visit only the first N countries (0 = all)")
	collectCmd.Flags().Float64(config.KeyRate, 0, "maximum requests per second (0 = unlimited)")
	collectCmd.Flags().Duration(config.KeyTimeout, scraper.DefaultFetcherConfig().Timeout, "per-request timeout")
	collectCmd.Flags().String(config.KeyUserAgent, scraper.DefaultUserAgent, "User-Agent header")
	collectCmd.Flags().Bool(config.KeySkipClean, false, "keep incomplete country directories and skip the summary")
	collectCmd.Flags().String(config.KeyReportFormat, "console", "batch report format: console, json, csv")
	collectCmd.Flags().String(config.KeyReportFile, "", "write the batch report to a file (default: stdout)")
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadScraperConfig(viper.GetViper())
	if err != nil {
		return err
	}
	log := logger.GetGlobalLogger().WithComponent("collect")

	reportConfig := reporter.DefaultReportConfig()
	reportConfig.Format = reporter.OutputFormat(viper.GetString(config.KeyReportFormat))
	reportGenerator, err := reporter.NewReportGenerator(reportConfig)
	if err != nil {
		return err
	}

	writer, err := dataset.NewWriter(cfg.DatasetDir)
	if err != nil {
		return err
	}
	driver, err := scraper.NewDriver(cfg.DriverConfig(), scraper.NewHTTPFetcher(cfg.FetcherConfig()), writer, nil, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(logger.Fields{
		"dataset_dir": cfg.DatasetDir,
		"countries":   len(cfg.Countries),
		"limit":       cfg.Limit,
		"rate":        cfg.Rate,
	}).Info("Starting collection")

	batch, runErr := driver.Run(ctx)
	if err := writeReport(cmd.OutOrStdout(), reportGenerator, batch); err != nil {
		return err
	}

	if !cfg.SkipClean {
		if err := finalizeDataset(cmd.OutOrStdout(), cfg.DatasetDir, cfg.Countries, log); err != nil {
			return err
		}
	}

	if runErr != nil {
		return errors.Wrap(runErr, errors.CategoryInternal, errors.CodeUnexpectedError, "collection interrupted").
			WithSuggestion("re-run collect; countries already written are overwritten").
			WithContext("visited", len(batch.Countries))
	}
	return nil
}

// finalizeDataset removes incomplete country directories and rebuilds the
// top-level summary. It runs only after every writer has finished.
func finalizeDataset(out io.Writer, root string, order []string, log logger.Logger) error {
	report, err := dataset.NewCleaner(root, log).Clean()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Cleaned: %d kept, %d removed\n", len(report.Kept), len(report.Removed))
	if len(report.Issues) > 0 {
		log.Warnf("Incomplete countries removed: %v", errors.NewErrorSummary(report.Issues))
	}

	writer, err := dataset.NewWriter(root)
	if err != nil {
		return err
	}
	summaries, err := dataset.NewAggregator(dataset.NewReader(root), writer, log).Write(order)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Summary: %d countries\n", len(summaries))
	return nil
}

func writeReport(stdout io.Writer, generator *reporter.ReportGenerator, batch *scraper.BatchResult) error {
	path := viper.GetString(config.KeyReportFile)
	if path == "" {
		return generator.GenerateReport(batch, stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.FileError(errors.CodeWriteFailed, path, err)
	}
	defer f.Close()

	if err := generator.GenerateReport(batch, f); err != nil {
		return errors.FileError(errors.CodeWriteFailed, path, err)
	}
	if err := f.Close(); err != nil {
		return errors.FileError(errors.CodeWriteFailed, path, err)
	}
	fmt.Fprintf(stdout, "Report written to %s\n", path)
	return nil
}
