package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"golang-export-scraper/internal/dataset"
	"golang-export-scraper/internal/models"
	"golang-export-scraper/internal/money"
	"golang-export-scraper/pkg/errors"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"
)

type ctxKey struct{}

// ItemResponse is one item with its amount in the canonical unit
type ItemResponse struct {
	Item   string      `json:"item"`
	Amount json.Number `json:"amount"`
	Value  string      `json:"value"`
}

// YearlyResponse is one year with its amount in the canonical unit
type YearlyResponse struct {
	Year   string      `json:"year"`
	Amount json.Number `json:"amount"`
	Value  string      `json:"value"`
}

// MonthlyResponse keeps the raw amount text; Value is set when it parses
type MonthlyResponse struct {
	Year   string `json:"year"`
	Month  string `json:"month"`
	Amount string `json:"amount"`
	Value  *int64 `json:"value"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"status": "ok",
		"unit":   s.normalizer.Target().Label,
	})
}

func (s *Server) listCountries(w http.ResponseWriter, r *http.Request) {
	top, err := topParam(r)
	if err != nil {
		render.Render(w, r, newProblem(r, http.StatusBadRequest, TypeValidation, "Invalid Parameter", err.Error()))
		return
	}

	summaries, err := s.reader.ReadSummaries()
	if errors.HasCode(err, errors.CodeFileNotFound) {
		summaries, err = dataset.NewAggregator(s.reader, nil, s.logger).Build(nil)
	}
	if err != nil {
		render.Render(w, r, problemFor(r, err))
		return
	}

	s.normalizeSummaries(summaries)
	if top > 0 {
		sort.SliceStable(summaries, func(i, j int) bool {
			return summaries[i].ExportAmount.GreaterThan(summaries[j].ExportAmount)
		})
		if top < len(summaries) {
			summaries = summaries[:top]
		}
	}
	render.JSON(w, r, summaries)
}

func (s *Server) getCountry(w http.ResponseWriter, r *http.Request) {
	code := countryCode(r)
	record, err := s.reader.ReadMetadata(code)
	if err != nil {
		render.Render(w, r, problemFor(r, err))
		return
	}

	summary := []models.CountrySummary{models.NewCountrySummary(code, record, dataset.ColorFor(code))}
	s.normalizeSummaries(summary)
	render.JSON(w, r, summary[0])
}

func (s *Server) getItems(w http.ResponseWriter, r *http.Request) {
	top, err := topParam(r)
	if err != nil {
		render.Render(w, r, newProblem(r, http.StatusBadRequest, TypeValidation, "Invalid Parameter", err.Error()))
		return
	}

	items, err := s.reader.ReadItems(countryCode(r))
	if err != nil {
		render.Render(w, r, problemFor(r, err))
		return
	}

	money.NormalizeRecords(s.normalizer, items, func(it *models.ItemRecord) (*decimal.Decimal, *string) {
		return &it.Amount, &it.Value
	})
	if top > 0 && top < len(items) {
		items = items[:top]
	}

	out := make([]ItemResponse, len(items))
	for i, it := range items {
		out[i] = ItemResponse{Item: it.Item, Amount: json.Number(it.Amount.String()), Value: it.Value}
	}
	render.JSON(w, r, out)
}

func (s *Server) getYearly(w http.ResponseWriter, r *http.Request) {
	yearly, err := s.reader.ReadYearly(countryCode(r))
	if err != nil {
		render.Render(w, r, problemFor(r, err))
		return
	}

	money.NormalizeRecords(s.normalizer, yearly, func(y *models.YearlyRecord) (*decimal.Decimal, *string) {
		return &y.Amount, &y.Value
	})

	out := make([]YearlyResponse, len(yearly))
	for i, y := range yearly {
		out[i] = YearlyResponse{Year: y.Year, Amount: json.Number(y.Amount.String()), Value: y.Value}
	}
	render.JSON(w, r, out)
}

func (s *Server) getMonthly(w http.ResponseWriter, r *http.Request) {
	monthly, err := s.reader.ReadMonthly(countryCode(r))
	if err != nil {
		render.Render(w, r, problemFor(r, err))
		return
	}

	out := make([]MonthlyResponse, len(monthly))
	for i, m := range monthly {
		out[i] = MonthlyResponse{Year: m.Year, Month: m.Month, Amount: m.Amount}
		if v, err := money.ParseGroupedInt(m.Amount); err == nil {
			out[i].Value = &v
		}
	}
	render.JSON(w, r, out)
}

func (s *Server) archive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="dataset.zip"`)
	if err := dataset.Archive(s.reader.Root(), w, ""); err != nil {
		s.logger.WithError(err).Error("Failed to stream dataset archive")
	}
}

// countryCtx rejects unknown country codes before the handler runs
func (s *Server) countryCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := strings.ToUpper(chi.URLParam(r, "code"))
		if !s.reader.HasCountry(code) {
			render.Render(w, r, newProblem(r, http.StatusNotFound, TypeNotFound, "Not Found",
				fmt.Sprintf("no data for country %s", code)))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, code)))
	})
}

func countryCode(r *http.Request) string {
	code, _ := r.Context().Value(ctxKey{}).(string)
	return code
}

func (s *Server) normalizeSummaries(summaries []models.CountrySummary) {
	stats := money.NormalizeRecords(s.normalizer, summaries, func(c *models.CountrySummary) (*decimal.Decimal, *string) {
		return &c.ExportAmount, &c.ExportValue
	})
	if stats.Unrecognized > 0 {
		s.logger.Warnf("Unrecognized units left unscaled: %v", stats.UnrecognizedLabels)
	}
}

// topParam parses ?top=N; 0 means no limit
func topParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("top")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("top must be a positive integer, got %q", raw)
	}
	return n, nil
}
