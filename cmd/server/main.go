package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"einvoice-tracker/internal/infrastructure/config"
	"einvoice-tracker/internal/infrastructure/persistence"
	"einvoice-tracker/internal/interface/document"
	"einvoice-tracker/internal/interface/portal"
	"einvoice-tracker/internal/interface/repository"
	"einvoice-tracker/internal/interface/rest"
	"einvoice-tracker/internal/usecase"
	"einvoice-tracker/pkg/logger"
	"einvoice-tracker/pkg/metrics"
	"einvoice-tracker/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	// Create logger
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting E-Invoice Tracker", "version", cfg.AppVersion)

	m := metrics.NewMetrics("einvoice")

	// Open the airline catalog database and seed the known issuers
	log.Info("Opening airline catalog", "path", cfg.AirlineDBPath)
	db, err := persistence.NewSQLiteDB(cfg.AirlineDBPath)
	if err != nil {
		log.Fatal("Failed to open airline catalog", "error", err)
	}
	if err := persistence.SeedAirlines(db); err != nil {
		log.Fatal("Failed to seed airline catalog", "error", err)
	}

	// Set up repositories
	airlineRepository := repository.NewGormAirlineRepository(db)
	passengerRepository := repository.NewFilePassengerRepository(cfg.DataFile, cfg.RosterFile, log, m)

	// Set up the acquisition agent and the extraction engine
	fallbackWriter := portal.NewFallbackWriter(log)
	agent := portal.NewAgent(portal.Config{
		PortalURL:          cfg.PortalURL,
		UploadsDir:         cfg.UploadsDir,
		NavigationTimeout:  cfg.NavigationTimeout,
		ElementTimeout:     cfg.ElementTimeout,
		ResultPollInterval: cfg.ResultPollInterval,
		ResultPollAttempts: cfg.ResultPollAttempts,
	}, fallbackWriter, log, m)

	invoiceParser := utils.NewInvoiceParser(airlineRepository, log)
	pdfReader := document.NewPDFReader()

	// Set up usecases
	workflow := usecase.NewInvoiceWorkflow(passengerRepository, agent, invoiceParser, pdfReader, log, m)
	aggregator := usecase.NewInvoiceAggregator(passengerRepository, cfg.HighValueThreshold, log)

	// Set up HTTP server
	handler := rest.NewHandler(workflow, aggregator, log)
	router := rest.NewRouter(handler, cfg.UploadsDir)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	log.Info("E-Invoice Tracker stopped")
}
