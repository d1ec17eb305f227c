// Package dataset owns the on-disk layout of a collected dataset.
//
// A dataset root holds one directory per country code plus a top-level
// metadata.json summarizing every surviving country:
//
//	dataset/
//	  metadata.json
//	  SAU/
//	    metadata.json
//	    items.csv
//	    yearly.csv
//	    monthly.csv
//
// Writer creates country directories during a batch, Cleaner prunes the
// incomplete ones afterwards, Aggregator builds the top-level summary and
// Reader loads everything back for the API and the SQLite publisher.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang-export-scraper/internal/models"
	"golang-export-scraper/pkg/errors"
)

// csvRow is implemented by every per-country CSV record
type csvRow interface {
	CSVRow() []string
}

// Writer writes country artifacts under a dataset root. Existing files are
// overwritten; the driver removes what a re-run could not replace.
type Writer struct {
	root string
}

// NewWriter creates the dataset root if needed
func NewWriter(root string) (*Writer, error) {
	if root == "" {
		return nil, errors.ConfigurationError(errors.CodeMissingConfig, "dataset_dir", root, nil)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.FileError(errors.CodeDirectoryError, root, err)
	}
	return &Writer{root: root}, nil
}

// Root returns the dataset root directory
func (w *Writer) Root() string {
	return w.root
}

// CountryDir returns the directory holding one country's artifacts
func (w *Writer) CountryDir(countryCode string) string {
	return filepath.Join(w.root, countryCode)
}

// WriteMetadata writes <code>/metadata.json, creating the country directory
func (w *Writer) WriteMetadata(record models.CountryRecord) error {
	dir := w.CountryDir(record.CountryCode)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.FileError(errors.CodeDirectoryError, dir, err)
	}
	return writeJSON(filepath.Join(dir, models.MetadataFile), record)
}

// WriteItems writes <code>/items.csv
func (w *Writer) WriteItems(countryCode string, records []models.ItemRecord) error {
	return writeCSV(w.artifactPath(countryCode, models.ItemsFile), models.ItemsHeader, records)
}

// WriteYearly writes <code>/yearly.csv
func (w *Writer) WriteYearly(countryCode string, records []models.YearlyRecord) error {
	return writeCSV(w.artifactPath(countryCode, models.YearlyFile), models.YearlyHeader, records)
}

// WriteMonthly writes <code>/monthly.csv
func (w *Writer) WriteMonthly(countryCode string, records []models.MonthlyRecord) error {
	return writeCSV(w.artifactPath(countryCode, models.MonthlyFile), models.MonthlyHeader, records)
}

// RemoveCountry deletes a country's directory and everything in it. A
// missing directory is not an error.
func (w *Writer) RemoveCountry(countryCode string) error {
	dir := w.CountryDir(countryCode)
	if err := os.RemoveAll(dir); err != nil {
		return errors.FileError(errors.CodeDirectoryError, dir, err)
	}
	return nil
}

// RemoveArtifact deletes one file of a country. A missing file is not an error.
func (w *Writer) RemoveArtifact(countryCode, name string) error {
	path := w.artifactPath(countryCode, name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.FileError(errors.CodeWriteFailed, path, err)
	}
	return nil
}

// WriteSummaries writes the top-level metadata.json
func (w *Writer) WriteSummaries(summaries []models.CountrySummary) error {
	if summaries == nil {
		summaries = []models.CountrySummary{}
	}
	return writeJSON(filepath.Join(w.root, models.MetadataFile), summaries)
}

func (w *Writer) artifactPath(countryCode, name string) string {
	return filepath.Join(w.CountryDir(countryCode), name)
}

// writeJSON matches the layout consumers already read: four-space indent and
// non-ASCII text left as is.
func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.FileError(errors.CodeWriteFailed, path, err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "    ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return errors.FileError(errors.CodeWriteFailed, path, err)
	}
	return f.Close()
}

func writeCSV[T csvRow](path string, header []string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.FileError(errors.CodeDirectoryError, filepath.Dir(path), err)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.FileError(errors.CodeWriteFailed, path, err)
	}
	defer f.Close()

	csvWriter := csv.NewWriter(f)
	if err := csvWriter.Write(header); err != nil {
		return errors.FileError(errors.CodeWriteFailed, path, fmt.Errorf("failed to write CSV headers: %w", err))
	}
	for _, record := range records {
		if err := csvWriter.Write(record.CSVRow()); err != nil {
			return errors.FileError(errors.CodeWriteFailed, path, fmt.Errorf("failed to write CSV record: %w", err))
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return errors.FileError(errors.CodeWriteFailed, path, err)
	}
	return f.Close()
}
