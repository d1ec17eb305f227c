package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-export-scraper/cmd/exportscraper/config"
	"golang-export-scraper/internal/api"
	"golang-export-scraper/internal/dataset"
	"golang-export-scraper/pkg/errors"
	"golang-export-scraper/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dataset over a read-only JSON API",
	Long: `Serve exposes the dataset directory under /api. Amounts are converted to
the target unit when served; files on disk are not modified.

Routes:
  GET /api/health
  GET /api/countries?top=N
  GET /api/countries/{code}
  GET /api/countries/{code}/items?top=N
  GET /api/countries/{code}/yearly
  GET /api/countries/{code}/monthly
  GET /api/dataset.zip

Examples:
  exportscraper serve --dataset-dir dataset --addr :8080`,

	PreRunE: bindFlags,
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String(config.KeyAddr, ":8080", "listen address")
	serveCmd.Flags().String(config.KeyTargetUnit, "", "unit label amounts are converted to (default: مليون)")
}

func runServe(cmd *cobra.Command, args []string) error {
	srvCfg, err := config.LoadServerConfig(viper.GetViper())
	if err != nil {
		return err
	}
	normCfg, err := config.LoadNormalizerConfig(viper.GetViper())
	if err != nil {
		return err
	}
	normalizer, err := normCfg.Build()
	if err != nil {
		return err
	}

	root := viper.GetString(config.KeyDatasetDir)
	if _, err := os.Stat(root); err != nil {
		return errors.FileError(errors.CodeFileNotFound, root, err)
	}

	log := logger.GetGlobalLogger().WithComponent("serve")
	handler := api.NewServer(dataset.NewReader(root), normalizer, log).Routes()
	srv := &http.Server{
		Addr:         srvCfg.Addr,
		Handler:      handler,
		ReadTimeout:  srvCfg.ReadTimeout,
		WriteTimeout: srvCfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.WithFields(logger.Fields{"addr": srvCfg.Addr, "dataset_dir": root}).Info("API listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, errors.CategoryNetwork, errors.CodeUnexpectedError, "API server failed").
				WithContext("addr", srvCfg.Addr)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
