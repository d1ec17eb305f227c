package dataset

import (
	"os"
	"path/filepath"

	"golang-export-scraper/internal/models"
	"golang-export-scraper/pkg/errors"
	"golang-export-scraper/pkg/logger"
)

// CleanReport lists what a Clean pass kept and removed
type CleanReport struct {
	Kept    []string
	Removed []string
	Issues  []*errors.ScraperError
}

// Cleaner deletes country directories that do not hold a full artifact set.
// It must run after every writer of the batch has finished.
type Cleaner struct {
	root     string
	minFiles int
	logger   logger.Logger
}

// NewCleaner creates a Cleaner requiring every file in models.ArtifactFiles
func NewCleaner(root string, log logger.Logger) *Cleaner {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Cleaner{
		root:     root,
		minFiles: len(models.ArtifactFiles),
		logger:   log.WithComponent("cleaner"),
	}
}

// Clean visits every immediate subdirectory of the root. Directories with
// fewer entries than the artifact set are deleted with their contents.
// Regular files at the root are left alone.
func (c *Cleaner) Clean() (*CleanReport, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, errors.FileError(errors.CodeDirectoryError, c.root, err)
	}

	report := &CleanReport{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(c.root, entry.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			return report, errors.FileError(errors.CodeDirectoryError, dir, err)
		}

		if len(files) >= c.minFiles {
			report.Kept = append(report.Kept, entry.Name())
			continue
		}

		issue := errors.IncompleteDataset(dir, len(files), c.minFiles)
		c.logger.WithFields(logger.Fields{
			"country_code": entry.Name(),
			"files":        len(files),
		}).Warnf("Removing incomplete country directory: %v", issue)

		if err := os.RemoveAll(dir); err != nil {
			return report, errors.FileError(errors.CodeDirectoryError, dir, err)
		}
		report.Issues = append(report.Issues, issue)
		report.Removed = append(report.Removed, entry.Name())
	}

	c.logger.Infof("Dataset cleaned: %d kept, %d removed", len(report.Kept), len(report.Removed))
	return report, nil
}
