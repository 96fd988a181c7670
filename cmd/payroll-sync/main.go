package main

import (
	"fmt"
	"os"

	"github.com/fleetops/payroll-sync/internal/auth"
	"github.com/fleetops/payroll-sync/internal/config"
	"github.com/fleetops/payroll-sync/internal/db"
	httphandler "github.com/fleetops/payroll-sync/internal/http"
	"github.com/fleetops/payroll-sync/internal/http/middleware"
	"github.com/fleetops/payroll-sync/internal/logger"
	"github.com/fleetops/payroll-sync/internal/report"
	"github.com/fleetops/payroll-sync/internal/repository"
	"github.com/fleetops/payroll-sync/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	entryRepo := repository.NewEntryRepository(database)
	settingsRepo := repository.NewSettingsRepository(database)

	settingsService := service.NewSettingsService(settingsRepo, cfg)
	syncService := service.NewSyncService(entryRepo, settingsService, service.NewDeelClient, log)
	submitService := service.NewSubmitService(entryRepo, settingsService, service.NewDeelClient, log)
	reportService := service.NewReportService(entryRepo, report.NewExcelGenerator(), report.NewPDFGenerator())

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(syncService, submitService, settingsService, reportService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting payroll sync service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
