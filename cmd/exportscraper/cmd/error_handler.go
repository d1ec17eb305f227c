package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"syscall"

	"golang-export-scraper/pkg/errors"
	"golang-export-scraper/pkg/logger"

	"github.com/spf13/viper"
)

// CLIErrorHandler turns command-level failures into messages and exit codes.
// Per-country failures never reach it; the driver logs and skips those.
type CLIErrorHandler struct {
	logger  logger.Logger
	out     io.Writer
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		out:     os.Stderr,
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError prints err and returns the process exit code
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Debug("Command failed")

	if se, ok := errors.AsScraperError(err); ok {
		return h.handleScraperError(se)
	}
	return h.handleGenericError(err)
}

func (h *CLIErrorHandler) handleScraperError(err *errors.ScraperError) int {
	fmt.Fprintf(h.out, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		keys := make([]string, 0, len(err.Context))
		for key := range err.Context {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fmt.Fprintf(h.out, "\nContext:\n")
		for _, key := range keys {
			fmt.Fprintf(h.out, "  %s: %v\n", key, err.Context[key])
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(h.out, "\nSuggestion: %s\n", err.Suggestion)
	}

	fmt.Fprintf(h.out, "\n%s\n", categoryHelp(err.Category))

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(h.out, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

func (h *CLIErrorHandler) handleGenericError(err error) int {
	switch {
	case isFileNotFoundError(err):
		fmt.Fprintf(h.out, "Error: File not found\n")
		fmt.Fprintf(h.out, "Suggestion: Check if the path is correct and exists\n")
		return 2
	case isPermissionError(err):
		fmt.Fprintf(h.out, "Error: Permission denied\n")
		fmt.Fprintf(h.out, "Suggestion: Check permissions on the dataset directory\n")
		return 2
	case isDiskFullError(err):
		fmt.Fprintf(h.out, "Error: Insufficient disk space\n")
		fmt.Fprintf(h.out, "Suggestion: Free up disk space and try again\n")
		return 2
	}

	// cobra argument and flag errors land here
	fmt.Fprintf(h.out, "Error: %v\n", err)
	fmt.Fprintf(h.out, "Run 'exportscraper --help' for usage.\n")
	return 1
}

func categoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryFile:
		return `File error help:
• Check that the dataset directory exists and is writable
• Use an absolute path with --dataset-dir if needed
• Re-run collect to regenerate missing or corrupted files`

	case errors.CategoryParse, errors.CategoryStructure:
		return `Data error help:
• The source page layout may have changed
• Run with --verbose to see the offending country and URL
• Re-run collect for the affected countries with --countries`

	case errors.CategoryNetwork:
		return `Network error help:
• Check connectivity to the source site
• Increase --timeout or lower --rate
• Verify --url-template points at the country page`

	case errors.CategoryConfiguration:
		return `Configuration error help:
• Check your command-line flags and EXPORTSCRAPER_* variables
• Verify configuration file syntax if using --config
• Use 'exportscraper <command> --help' to see all available options`

	default:
		return `For more help:
• Use 'exportscraper --help' for general help
• Run with --verbose for the underlying error`
	}
}

func isFileNotFoundError(err error) bool {
	return os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory")
}

func isPermissionError(err error) bool {
	return os.IsPermission(err) || strings.Contains(err.Error(), "permission denied")
}

func isDiskFullError(err error) bool {
	if err == syscall.ENOSPC {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no space left") || strings.Contains(msg, "disk full")
}
