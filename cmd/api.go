package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/psds-microservice/license-tracker/internal/config"
	"github.com/psds-microservice/license-tracker/internal/database"
	"github.com/psds-microservice/license-tracker/internal/handler"
	"github.com/psds-microservice/license-tracker/internal/kafka"
	"github.com/psds-microservice/license-tracker/internal/router"
	"github.com/psds-microservice/license-tracker/internal/service"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Run the HTTP API server",
	RunE:  runAPI,
}

func runAPI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	setupLogging(cfg.LogLevel)

	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicAudit)
	defer producer.Close()

	licenseSvc := service.NewLicenseService(db)
	ticketSvc := service.NewTicketService(db)
	userSvc := service.NewUserService(db)

	mux := router.New(
		handler.NewAuthHandler(userSvc),
		handler.NewLicenseHandler(licenseSvc, producer),
		handler.NewTicketHandler(ticketSvc, producer),
	)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		log.Info().Msgf("  Swagger UI:   http://%s/swagger", srv.Addr)
		log.Info().Msgf("  Health:       http://%s/health", srv.Addr)
		log.Info().Msgf("  API:          http://%s/api/", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
