package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"golang-export-scraper/cmd/exportscraper/config"
	"golang-export-scraper/internal/dataset"
	"golang-export-scraper/pkg/errors"
	"golang-export-scraper/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const keyArchiveOutput = "output"

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Zip the dataset directory",
	Long: `Archive writes a zip file of the dataset directory. Entries are stored
under the directory's own name, e.g. dataset/SAU/items.csv.

Examples:
  exportscraper archive --dataset-dir dataset
  exportscraper archive --output /tmp/exports.zip`,

	PreRunE: bindFlags,
	RunE:    runArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)

	archiveCmd.Flags().StringP(keyArchiveOutput, "o", "", "zip file path (default: <dataset-dir>.zip)")
}

func runArchive(cmd *cobra.Command, args []string) error {
	root := viper.GetString(config.KeyDatasetDir)
	info, err := os.Stat(root)
	if err != nil {
		return errors.FileError(errors.CodeFileNotFound, root, err)
	}
	if !info.IsDir() {
		return errors.FileError(errors.CodeDirectoryError, root, fmt.Errorf("not a directory"))
	}

	output := viper.GetString(keyArchiveOutput)
	if output == "" {
		output = filepath.Clean(root) + ".zip"
	}

	err = logger.TimedOperation("archive", logger.GetGlobalLogger(), func() error {
		return dataset.ArchiveToFile(root, output)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Archive written to %s\n", output)
	return nil
}
