package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"golang-export-scraper/internal/store"

	"github.com/shopspring/decimal"
)

type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// UpsertCountry replaces everything stored for the country in one transaction
func (s *Store) UpsertCountry(ctx context.Context, runID string, dataset store.CountryDataset) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	c := dataset.Country
	_, err = tx.ExecContext(ctx, `
		INSERT INTO countries (
			country_code, country_name, amount, raw_amount, unit, color, run_id, published_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(country_code) DO UPDATE SET
			country_name = excluded.country_name,
			amount = excluded.amount,
			raw_amount = excluded.raw_amount,
			unit = excluded.unit,
			color = excluded.color,
			run_id = excluded.run_id,
			published_at = excluded.published_at
	`, c.Code, c.Name, c.Amount.InexactFloat64(), c.RawAmount.String(), c.Unit, c.Color, runID, time.Now().UTC())
	if err != nil {
		return err
	}

	for _, table := range []string{"items", "yearly_exports", "monthly_exports"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE country_code = ?", c.Code); err != nil {
			return err
		}
	}

	for _, item := range dataset.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO items (country_code, position, item, amount, raw_amount, unit)
			VALUES (?, ?, ?, ?, ?, ?)
		`, c.Code, item.Position, item.Item, item.Amount.InexactFloat64(), item.RawAmount.String(), item.Unit)
		if err != nil {
			return err
		}
	}

	for _, y := range dataset.Yearly {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO yearly_exports (country_code, year, amount, raw_amount, unit)
			VALUES (?, ?, ?, ?, ?)
		`, c.Code, y.Year, y.Amount.InexactFloat64(), y.RawAmount.String(), y.Unit)
		if err != nil {
			return err
		}
	}

	for _, m := range dataset.Monthly {
		var amount any
		if m.Amount != nil {
			amount = *m.Amount
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO monthly_exports (country_code, position, year, month, raw_text, amount)
			VALUES (?, ?, ?, ?, ?, ?)
		`, c.Code, m.Position, m.Year, m.Month, m.RawText, amount)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListCountries returns stored countries, largest total first
func (s *Store) ListCountries(ctx context.Context) ([]store.CountryRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT country_code, country_name, amount, raw_amount, unit, color, run_id
		FROM countries
		ORDER BY amount DESC, country_code
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.CountryRow
	for rows.Next() {
		var (
			row       store.CountryRow
			amount    float64
			rawAmount string
		)
		if err := rows.Scan(&row.Code, &row.Name, &amount, &rawAmount, &row.Unit, &row.Color, &row.RunID); err != nil {
			return nil, err
		}
		row.Amount = decimal.NewFromFloat(amount)
		if row.RawAmount, err = decimal.NewFromString(rawAmount); err != nil {
			return nil, fmt.Errorf("sqlite: country %s raw amount %q: %w", row.Code, rawAmount, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) migrate() error {
	statements := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS countries (
			country_code TEXT PRIMARY KEY,
			country_name TEXT NOT NULL,
			amount REAL NOT NULL,
			raw_amount TEXT NOT NULL,
			unit TEXT NOT NULL,
			color TEXT NOT NULL,
			run_id TEXT NOT NULL,
			published_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			country_code TEXT NOT NULL REFERENCES countries(country_code) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			item TEXT NOT NULL,
			amount REAL NOT NULL,
			raw_amount TEXT NOT NULL,
			unit TEXT NOT NULL,
			PRIMARY KEY (country_code, position)
		);`,
		`CREATE TABLE IF NOT EXISTS yearly_exports (
			country_code TEXT NOT NULL REFERENCES countries(country_code) ON DELETE CASCADE,
			year TEXT NOT NULL,
			amount REAL NOT NULL,
			raw_amount TEXT NOT NULL,
			unit TEXT NOT NULL,
			PRIMARY KEY (country_code, year)
		);`,
		`CREATE TABLE IF NOT EXISTS monthly_exports (
			country_code TEXT NOT NULL REFERENCES countries(country_code) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			year TEXT NOT NULL,
			month TEXT NOT NULL,
			raw_text TEXT NOT NULL,
			amount INTEGER,
			PRIMARY KEY (country_code, position)
		);`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}

	return nil
}
