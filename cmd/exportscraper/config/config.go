package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"golang-export-scraper/internal/money"
	"golang-export-scraper/internal/scraper"
	"golang-export-scraper/pkg/errors"
	"golang-export-scraper/pkg/logger"

	"github.com/spf13/viper"
)

// Viper keys. Flag names match these so that flags, config files and
// EXPORTSCRAPER_* variables address the same setting.
const (
	KeyDatasetDir    = "dataset-dir"
	KeyURLTemplate   = "url-template"
	KeyCountries     = "countries"
	KeyCountriesFile = "countries-file"
	KeyLimit         = "limit"
	KeyRate          = "rate"
	KeyTimeout       = "timeout"
	KeyUserAgent     = "user-agent"
	KeySkipClean     = "skip-clean"
	KeyReportFormat  = "report-format"
	KeyReportFile    = "report-file"
	KeyUnits         = "units"
	KeyTargetUnit    = "target-unit"
	KeyAddr          = "addr"
	KeyDB            = "db"
	KeyLogLevel      = "log-level"
	KeyLogFormat     = "log-format"
	KeyLogFile       = "log-file"
	KeyVerbose       = "verbose"
)

// DefaultDatasetDir is where collect writes when no directory is given
const DefaultDatasetDir = "dataset"

// ScraperConfig holds the collect settings
type ScraperConfig struct {
	DatasetDir    string        `mapstructure:"dataset-dir"`
	URLTemplate   string        `mapstructure:"url-template"`
	Countries     []string      `mapstructure:"countries"`
	CountriesFile string        `mapstructure:"countries-file"`
	Limit         int           `mapstructure:"limit"`
	Rate          float64       `mapstructure:"rate"`
	Timeout       time.Duration `mapstructure:"timeout"`
	UserAgent     string        `mapstructure:"user-agent"`
	SkipClean     bool          `mapstructure:"skip-clean"`
}

// NormalizerConfig holds the unit vocabulary used by publish and serve
type NormalizerConfig struct {
	Units      map[string]float64 `mapstructure:"units"`
	TargetUnit string             `mapstructure:"target-unit"`
}

// ServerConfig holds the serve settings
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatasetDir, DefaultDatasetDir)
	v.SetDefault(KeyURLTemplate, scraper.DefaultURLTemplate)
	v.SetDefault(KeyTimeout, 30*time.Second)
	v.SetDefault(KeyUserAgent, scraper.DefaultUserAgent)
	v.SetDefault(KeyReportFormat, "console")
	v.SetDefault(KeyTargetUnit, money.LabelMillion)
	v.SetDefault(KeyAddr, ":8080")
	v.SetDefault(KeyDB, "exports.db")
	v.SetDefault(KeyLogLevel, string(logger.InfoLevel))
	v.SetDefault(KeyLogFormat, string(logger.TextFormat))
}

// LoadScraperConfig reads and validates the collect settings. Countries come
// from the countries list, then the countries file, then the built-in list.
func LoadScraperConfig(v *viper.Viper) (*ScraperConfig, error) {
	cfg := &ScraperConfig{
		DatasetDir:    v.GetString(KeyDatasetDir),
		URLTemplate:   v.GetString(KeyURLTemplate),
		Countries:     v.GetStringSlice(KeyCountries),
		CountriesFile: v.GetString(KeyCountriesFile),
		Limit:         v.GetInt(KeyLimit),
		Rate:          v.GetFloat64(KeyRate),
		Timeout:       v.GetDuration(KeyTimeout),
		UserAgent:     v.GetString(KeyUserAgent),
		SkipClean:     v.GetBool(KeySkipClean),
	}

	if len(cfg.Countries) == 0 && cfg.CountriesFile != "" {
		codes, err := ReadCountriesFile(cfg.CountriesFile)
		if err != nil {
			return nil, err
		}
		cfg.Countries = codes
	}
	if len(cfg.Countries) == 0 {
		cfg.Countries = append([]string(nil), scraper.DefaultCountryCodes...)
	}
	cfg.Countries = scraper.NormalizeCountryCodes(cfg.Countries)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the collect settings
func (c *ScraperConfig) Validate() error {
	if strings.TrimSpace(c.DatasetDir) == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, KeyDatasetDir, c.DatasetDir, nil)
	}
	if c.Rate < 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, KeyRate, c.Rate,
			fmt.Errorf("rate cannot be negative"))
	}
	if c.Timeout <= 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, KeyTimeout, c.Timeout,
			fmt.Errorf("timeout must be positive"))
	}
	return c.DriverConfig().Validate()
}

// DriverConfig converts the settings for scraper.NewDriver
func (c *ScraperConfig) DriverConfig() *scraper.Config {
	cfg := scraper.DefaultConfig()
	cfg.URLTemplate = c.URLTemplate
	cfg.CountryCodes = c.Countries
	cfg.Limit = c.Limit
	return cfg
}

// FetcherConfig converts the settings for scraper.NewHTTPFetcher
func (c *ScraperConfig) FetcherConfig() scraper.FetcherConfig {
	cfg := scraper.DefaultFetcherConfig()
	cfg.Timeout = c.Timeout
	cfg.RatePerSecond = c.Rate
	if c.UserAgent != "" {
		cfg.UserAgent = c.UserAgent
	}
	return cfg
}

// ReadCountriesFile reads one country code per line. Blank lines and lines
// starting with # are ignored.
func ReadCountriesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		return nil, errors.FileError(errors.CodeFilePermission, path, err)
	}
	defer f.Close()

	var codes []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		codes = append(codes, strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})...)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, path, err)
	}
	return codes, nil
}

// LoadNormalizerConfig reads the unit vocabulary. An empty units map keeps
// the built-in vocabulary.
func LoadNormalizerConfig(v *viper.Viper) (*NormalizerConfig, error) {
	cfg := &NormalizerConfig{TargetUnit: v.GetString(KeyTargetUnit)}
	if v.IsSet(KeyUnits) {
		if err := v.UnmarshalKey(KeyUnits, &cfg.Units); err != nil {
			return nil, errors.ConfigurationError(errors.CodeInvalidConfig, KeyUnits, v.Get(KeyUnits), err)
		}
	}
	if _, err := cfg.Build(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Build creates the Normalizer
func (c *NormalizerConfig) Build() (*money.Normalizer, error) {
	units := money.DefaultVocabulary()
	if len(c.Units) > 0 {
		units = money.VocabularyFromMap(c.Units)
	}
	n, err := money.NewNormalizer(units, c.TargetUnit)
	if err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, KeyUnits, c.Units, err)
	}
	return n, nil
}

// LoadServerConfig reads the serve settings
func LoadServerConfig(v *viper.Viper) (*ServerConfig, error) {
	cfg := &ServerConfig{
		Addr:         v.GetString(KeyAddr),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.ConfigurationError(errors.CodeMissingConfig, KeyAddr, cfg.Addr, nil)
	}
	return cfg, nil
}

// LoggerConfig builds the logger configuration. verbose forces debug level.
func LoggerConfig(v *viper.Viper) (*logger.Config, error) {
	cfg := logger.DefaultConfig()
	cfg.Level = logger.Level(strings.ToLower(v.GetString(KeyLogLevel)))
	cfg.Format = logger.Format(strings.ToLower(v.GetString(KeyLogFormat)))
	if v.GetBool(KeyVerbose) {
		cfg.Level = logger.DebugLevel
	}
	if file := v.GetString(KeyLogFile); file != "" {
		cfg.Output = logger.FileOutput
		cfg.File = file
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "logging", cfg, err)
	}
	return cfg, nil
}
