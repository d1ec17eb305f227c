package api

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang-export-scraper/internal/dataset"
	"golang-export-scraper/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, writeSummary bool) *httptest.Server {
	t.Helper()
	root := t.TempDir()
	w, err := dataset.NewWriter(root)
	require.NoError(t, err)

	countries := []models.CountryRecord{
		{CountryCode: "SAU", CountryName: "السعودية", TotalExportAmount: decimal.RequireFromString("2.5"), TotalExportValue: "مليار دولار"},
		{CountryCode: "ARE", CountryName: "الإمارات", TotalExportAmount: decimal.NewFromInt(950), TotalExportValue: "مليون دولار"},
		{CountryCode: "JOR", CountryName: "الأردن", TotalExportAmount: decimal.NewFromInt(40), TotalExportValue: "مليون دولار"},
	}
	for _, c := range countries {
		require.NoError(t, w.WriteMetadata(c))
		require.NoError(t, w.WriteItems(c.CountryCode, []models.ItemRecord{
			{Item: "حديد", Amount: decimal.NewFromInt(850), Value: "ألف دولار"},
			{Item: "برتقال", Amount: decimal.NewFromInt(12), Value: "مليون دولار"},
			{Item: "قطن", Amount: decimal.NewFromInt(1), Value: "مليار دولار"},
		}))
		require.NoError(t, w.WriteYearly(c.CountryCode, []models.YearlyRecord{
			{Year: "2019", Amount: decimal.NewFromInt(500), Value: "ألف دولار"},
			{Year: "2020", Amount: decimal.NewFromInt(15), Value: "مليون دولار"},
		}))
		require.NoError(t, w.WriteMonthly(c.CountryCode, []models.MonthlyRecord{
			{Year: "2020", Month: "يناير", Amount: "543,354"},
			{Year: "2020", Month: "فبراير", Amount: "-"},
		}))
	}

	if writeSummary {
		_, err := dataset.NewAggregator(dataset.NewReader(root), w, nil).Write([]string{"SAU", "ARE", "JOR"})
		require.NoError(t, err)
	}

	srv := httptest.NewServer(NewServer(dataset.NewReader(root), nil, nil).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, true)
	var body map[string]string
	resp := getJSON(t, srv.URL+"/api/health", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "مليون", body["unit"])
}

func TestListCountries(t *testing.T) {
	srv := newTestServer(t, true)

	var all []models.CountrySummary
	resp := getJSON(t, srv.URL+"/api/countries", &all)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, all, 3)
	assert.Equal(t, "SAU", all[0].CountryCode)
	assert.True(t, all[0].ExportAmount.Equal(decimal.NewFromInt(2500)), "got %s", all[0].ExportAmount)
	assert.Equal(t, "مليار دولار", all[0].ExportValue)
	assert.NotEmpty(t, all[0].Color)

	var top []models.CountrySummary
	getJSON(t, srv.URL+"/api/countries?top=2", &top)
	require.Len(t, top, 2)
	assert.Equal(t, "SAU", top[0].CountryCode)
	assert.Equal(t, "ARE", top[1].CountryCode)
}

func TestListCountriesWithoutSummaryFile(t *testing.T) {
	srv := newTestServer(t, false)

	var all []models.CountrySummary
	resp := getJSON(t, srv.URL+"/api/countries", &all)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, all, 3)
}

func TestInvalidTop(t *testing.T) {
	srv := newTestServer(t, true)

	for _, path := range []string{"/api/countries?top=0", "/api/countries?top=abc", "/api/countries/SAU/items?top=-1"} {
		var problem ProblemDetails
		resp := getJSON(t, srv.URL+path, &problem)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		assert.Equal(t, TypeValidation, problem.Type)
	}
}

func TestCountryRoutes(t *testing.T) {
	srv := newTestServer(t, true)

	var country models.CountrySummary
	resp := getJSON(t, srv.URL+"/api/countries/are", &country)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ARE", country.CountryCode)
	assert.Equal(t, "الإمارات", country.CountryName)

	var items []ItemResponse
	getJSON(t, srv.URL+"/api/countries/SAU/items?top=2", &items)
	require.Len(t, items, 2)
	assert.Equal(t, "حديد", items[0].Item)
	assert.Equal(t, "0.85", items[0].Amount.String())
	assert.Equal(t, "12", items[1].Amount.String())

	var yearly []YearlyResponse
	getJSON(t, srv.URL+"/api/countries/SAU/yearly", &yearly)
	require.Len(t, yearly, 2)
	assert.Equal(t, "0.5", yearly[0].Amount.String())
	assert.Equal(t, "2020", yearly[1].Year)

	var monthly []MonthlyResponse
	getJSON(t, srv.URL+"/api/countries/SAU/monthly", &monthly)
	require.Len(t, monthly, 2)
	assert.Equal(t, "543,354", monthly[0].Amount)
	require.NotNil(t, monthly[0].Value)
	assert.Equal(t, int64(543354), *monthly[0].Value)
	assert.Nil(t, monthly[1].Value)
}

func TestUnknownCountry(t *testing.T) {
	srv := newTestServer(t, true)

	var problem ProblemDetails
	resp := getJSON(t, srv.URL+"/api/countries/XYZ/yearly", &problem)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, TypeNotFound, problem.Type)
	assert.Contains(t, problem.Detail, "XYZ")
}

func TestDatasetArchive(t *testing.T) {
	srv := newTestServer(t, true)

	resp, err := http.Get(srv.URL + "/api/dataset.zip")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Len(t, zr.File, 13)
}
