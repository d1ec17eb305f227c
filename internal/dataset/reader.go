package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang-export-scraper/internal/models"
	"golang-export-scraper/pkg/errors"

	"github.com/shopspring/decimal"
)

// Reader loads a dataset written by Writer
type Reader struct {
	root string
}

// NewReader creates a Reader over root
func NewReader(root string) *Reader {
	return &Reader{root: root}
}

// Root returns the dataset root directory
func (r *Reader) Root() string {
	return r.root
}

// Countries lists the country directories under the root, sorted by code
func (r *Reader) Countries() ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, r.root, err)
		}
		return nil, errors.FileError(errors.CodeDirectoryError, r.root, err)
	}

	var codes []string
	for _, entry := range entries {
		if entry.IsDir() {
			codes = append(codes, entry.Name())
		}
	}
	sort.Strings(codes)
	return codes, nil
}

// HasCountry reports whether a directory exists for the code
func (r *Reader) HasCountry(countryCode string) bool {
	info, err := os.Stat(filepath.Join(r.root, countryCode))
	return err == nil && info.IsDir()
}

// ReadMetadata loads <code>/metadata.json
func (r *Reader) ReadMetadata(countryCode string) (models.CountryRecord, error) {
	var record models.CountryRecord
	if err := readJSON(r.path(countryCode, models.MetadataFile), &record); err != nil {
		return record, err
	}
	record.CountryCode = countryCode
	return record, nil
}

// ReadItems loads <code>/items.csv
func (r *Reader) ReadItems(countryCode string) ([]models.ItemRecord, error) {
	path := r.path(countryCode, models.ItemsFile)
	rows, err := readCSV(path, models.ItemsHeader)
	if err != nil {
		return nil, err
	}

	records := make([]models.ItemRecord, 0, len(rows))
	for i, row := range rows {
		amount, err := parseAmount(path, i, row[1])
		if err != nil {
			return nil, err
		}
		records = append(records, models.ItemRecord{Item: row[0], Amount: amount, Value: row[2]})
	}
	return records, nil
}

// ReadYearly loads <code>/yearly.csv
func (r *Reader) ReadYearly(countryCode string) ([]models.YearlyRecord, error) {
	path := r.path(countryCode, models.YearlyFile)
	rows, err := readCSV(path, models.YearlyHeader)
	if err != nil {
		return nil, err
	}

	records := make([]models.YearlyRecord, 0, len(rows))
	for i, row := range rows {
		amount, err := parseAmount(path, i, row[1])
		if err != nil {
			return nil, err
		}
		records = append(records, models.YearlyRecord{Year: row[0], Amount: amount, Value: row[2]})
	}
	return records, nil
}

// ReadMonthly loads <code>/monthly.csv. Amounts stay raw text.
func (r *Reader) ReadMonthly(countryCode string) ([]models.MonthlyRecord, error) {
	rows, err := readCSV(r.path(countryCode, models.MonthlyFile), models.MonthlyHeader)
	if err != nil {
		return nil, err
	}

	records := make([]models.MonthlyRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.MonthlyRecord{Year: row[0], Month: row[1], Amount: row[2]})
	}
	return records, nil
}

// ReadSummaries loads the top-level metadata.json
func (r *Reader) ReadSummaries() ([]models.CountrySummary, error) {
	var summaries []models.CountrySummary
	if err := readJSON(filepath.Join(r.root, models.MetadataFile), &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *Reader) path(countryCode, name string) string {
	return filepath.Join(r.root, countryCode, name)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.FileError(errors.CodeFileNotFound, path, err)
		}
		return errors.FileError(errors.CodeFilePermission, path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.FileError(errors.CodeFileCorrupted, path, err)
	}
	return nil
}

// readCSV returns the data rows of a CSV file after checking its header
func readCSV(path string, header []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		return nil, errors.FileError(errors.CodeFilePermission, path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(header)

	got, err := reader.Read()
	if err == io.EOF {
		return nil, errors.FileError(errors.CodeFileCorrupted, path, fmt.Errorf("file is empty"))
	}
	if err != nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, path, err)
	}
	if strings.Join(got, ",") != strings.Join(header, ",") {
		return nil, errors.FileError(errors.CodeFileCorrupted, path,
			fmt.Errorf("unexpected header %v, want %v", got, header))
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, path, err)
	}
	return rows, nil
}

func parseAmount(path string, row int, text string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, errors.ParseError(errors.CodeInvalidData, "amount", text, err).
			WithContext("file_path", path).
			WithContext("row", row+1)
	}
	return amount, nil
}
