package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile          ErrorCategory = "file"
	CategoryParse         ErrorCategory = "parse"
	CategoryStructure     ErrorCategory = "structure"
	CategoryNetwork       ErrorCategory = "network"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeFileCorrupted  ErrorCode = "file_corrupted"
	CodeDirectoryError ErrorCode = "directory_error"
	CodeWriteFailed    ErrorCode = "write_failed"

	// Parse errors
	CodeNoNumericToken ErrorCode = "no_numeric_token"
	CodeInvalidData    ErrorCode = "invalid_data"
	CodeOutOfRange     ErrorCode = "out_of_range"

	// Structure errors
	CodeStructuralMismatch ErrorCode = "structural_mismatch"
	CodeMissingField       ErrorCode = "missing_field"
	CodeIncompleteDataset  ErrorCode = "incomplete_dataset"

	// Network errors
	CodeFetchFailed        ErrorCode = "fetch_failed"
	CodeUnexpectedStatus   ErrorCode = "unexpected_status"
	CodeUnparseableContent ErrorCode = "unparseable_content"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// ScraperError is the base error type for all application errors
type ScraperError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *ScraperError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *ScraperError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *ScraperError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryStructure:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryInternal:
		return 5
	case CategoryNetwork:
		return 6
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *ScraperError) WithContext(key string, value interface{}) *ScraperError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *ScraperError) WithSuggestion(suggestion string) *ScraperError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ScraperError
func New(category ErrorCategory, code ErrorCode, message string) *ScraperError {
	return &ScraperError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with ScraperError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *ScraperError {
	if err == nil {
		return nil
	}

	return &ScraperError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func build(category ErrorCategory, code ErrorCode, message string, err error) *ScraperError {
	if err != nil {
		return Wrap(err, category, code, message)
	}
	return New(category, code, message)
}

// NoNumericTokenFound reports text that holds no integer or decimal substring.
func NoNumericTokenFound(text string) *ScraperError {
	return New(CategoryParse, CodeNoNumericToken, fmt.Sprintf("no numeric token found in %q", text)).
		WithSuggestion("the amount cell must contain a number such as '2.5 مليون دولار'").
		WithContext("value", text)
}

// ParseError creates a parsing-related error for a single cell value
func ParseError(code ErrorCode, field string, value string, err error) *ScraperError {
	var message string

	switch code {
	case CodeNoNumericToken:
		message = fmt.Sprintf("no numeric token in field '%s': %q", field, value)
	case CodeOutOfRange:
		message = fmt.Sprintf("value out of range in field '%s': %q", field, value)
	default:
		message = fmt.Sprintf("invalid data in field '%s': %q", field, value)
	}

	return build(CategoryParse, code, message, err).
		WithContext("field", field).
		WithContext("value", value)
}

// StructuralMismatch reports a page whose layout deviates from the fixed
// positions an extractor expects.
func StructuralMismatch(countryCode, extractor, detail string) *ScraperError {
	return New(CategoryStructure, CodeStructuralMismatch,
		fmt.Sprintf("structural mismatch in %s extractor for %s: %s", extractor, countryCode, detail)).
		WithSuggestion("the source page layout may have changed; inspect the page manually").
		WithContext("country_code", countryCode).
		WithContext("extractor", extractor)
}

// MissingField reports a load-bearing page field that could not be located.
func MissingField(countryCode, field string) *ScraperError {
	return New(CategoryStructure, CodeMissingField,
		fmt.Sprintf("required field '%s' not found for %s", field, countryCode)).
		WithContext("country_code", countryCode).
		WithContext("field", field)
}

// IncompleteDataset describes a country directory that lacks part of its
// artifact set.
func IncompleteDataset(dir string, files int, expected int) *ScraperError {
	return New(CategoryStructure, CodeIncompleteDataset,
		fmt.Sprintf("incomplete dataset in %s: %d of %d files", dir, files, expected)).
		WithContext("directory", dir).
		WithContext("files", files)
}

// FetchFailure creates a network-related error for a source page
func FetchFailure(code ErrorCode, url string, err error) *ScraperError {
	var message string
	var suggestion string

	switch code {
	case CodeUnexpectedStatus:
		message = fmt.Sprintf("unexpected response status from %s", url)
		suggestion = "the page may not exist for this country code"
	case CodeUnparseableContent:
		message = fmt.Sprintf("response body from %s could not be parsed", url)
		suggestion = "check that the URL template points to an HTML page"
	default:
		message = fmt.Sprintf("fetch failed for %s", url)
		suggestion = "check network connectivity and the source availability"
	}

	return build(CategoryNetwork, code, message, err).
		WithSuggestion(suggestion).
		WithContext("url", url)
}

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *ScraperError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions"
	case CodeFileCorrupted:
		message = fmt.Sprintf("file appears to be corrupted: %s", path)
		suggestion = "re-run the collect command for this country"
	case CodeWriteFailed:
		message = fmt.Sprintf("failed to write file: %s", path)
		suggestion = "check available disk space and directory permissions"
	case CodeDirectoryError:
		message = fmt.Sprintf("directory error: %s", path)
		suggestion = "ensure the directory exists and is accessible"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	return build(CategoryFile, code, message, err).
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *ScraperError {
	var message string
	var suggestion string

	switch code {
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this setting with a flag, config file or environment variable"
	default:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the command help for valid values"
	}

	return build(CategoryConfiguration, code, message, err).
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// InternalError creates an internal error
func InternalError(operation string, err error) *ScraperError {
	return build(CategoryInternal, CodeUnexpectedError, fmt.Sprintf("unexpected error during %s", operation), err).
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

// ErrorSummary provides a summary of multiple errors
type ErrorSummary struct {
	Total      int                   `json:"total"`
	ByCategory map[ErrorCategory]int `json:"by_category"`
	ByCode     map[ErrorCode]int     `json:"by_code"`
	Errors     []*ScraperError       `json:"errors"`
}

// NewErrorSummary creates a new error summary
func NewErrorSummary(errs []*ScraperError) *ErrorSummary {
	summary := &ErrorSummary{
		Total:      len(errs),
		ByCategory: make(map[ErrorCategory]int),
		ByCode:     make(map[ErrorCode]int),
		Errors:     errs,
	}
	for _, err := range errs {
		summary.ByCategory[err.Category]++
		summary.ByCode[err.Code]++
	}
	return summary
}

// Error returns a formatted error message for the summary
func (es *ErrorSummary) Error() string {
	if es.Total == 0 {
		return "no errors"
	}
	if es.Total == 1 {
		return es.Errors[0].Error()
	}

	var categories []string
	for category, count := range es.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}
	sort.Strings(categories)

	return fmt.Sprintf("%d errors occurred (%s)", es.Total, strings.Join(categories, ", "))
}

// HasCode checks if the summary contains errors with the given code
func (es *ErrorSummary) HasCode(code ErrorCode) bool {
	return es.ByCode[code] > 0
}

// AsScraperError extracts a ScraperError from an error chain
func AsScraperError(err error) (*ScraperError, bool) {
	var scraperErr *ScraperError
	if errors.As(err, &scraperErr) {
		return scraperErr, true
	}
	return nil, false
}

// HasCode reports whether any ScraperError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if se, ok := err.(*ScraperError); ok && se.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// WrapIfNeeded wraps an error if it's not already a ScraperError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *ScraperError {
	if err == nil {
		return nil
	}
	if scraperErr, ok := AsScraperError(err); ok {
		return scraperErr
	}
	return Wrap(err, category, code, message)
}
