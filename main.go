package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/academic-portfolio-backend/api"
	"github.com/rpupo63/academic-portfolio-backend/config"
	"github.com/rpupo63/academic-portfolio-backend/content"
	"github.com/rpupo63/academic-portfolio-backend/database"
	"github.com/rpupo63/academic-portfolio-backend/elapsed"
	"github.com/rpupo63/academic-portfolio-backend/models"
	"github.com/rpupo63/academic-portfolio-backend/services"
	"github.com/rpupo63/academic-portfolio-backend/storage"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	c := config.New()
	setupLogging(c)
	log.Info().Msg("Initializing app...")

	if path := config.GetString(c, "SSM_PARAMETER_PATH", ""); path != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := config.LoadSSM(ctx, c, path)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Error loading SSM parameters")
		}
		log.Info().Str("path", path).Msg("Loaded SSM parameters")
	}

	db, err := database.Open(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// If generating models, run generation and exit
	if config.GetBool(c, "GENERATE_MODELS", false) {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
		log.Info().Msg("Generating column mismatch report...")
		if n := models.GenerateColumnMismatchReport(db); n > 0 {
			os.Exit(1)
		}
		return
	}

	if config.GetBool(c, "AUTO_MIGRATE", false) {
		if err := database.AutoMigrate(db); err != nil {
			log.Fatal().Err(err).Msg("Error migrating database")
		}
	}

	currentDB := database.New(db)
	bootstrapAdmin(c, currentDB)

	store, err := storage.New(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error configuring storage")
	}
	var uploader content.Uploader
	if store != nil {
		uploader = store
	} else {
		log.Warn().Msg("Storage is not configured; uploads are disabled")
	}

	site := content.NewSite(currentDB, uploader, content.OptionsFromConfig(c))
	defer site.Close()

	start, err := elapsed.StartFromConfig(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid CAREER_START_DATE")
	}
	tracker := elapsed.NewTracker(start, time.Local)
	if err := tracker.Start(); err != nil {
		log.Fatal().Err(err).Msg("Error starting elapsed tracker")
	}
	defer tracker.Stop()

	server, err := api.NewServer(c, api.Deps{
		Site:        site,
		Credentials: api.NewCredentialStore(currentDB.AdminUserRepo()),
		Mailer:      services.NewMailer(c),
		Elapsed:     tracker,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	errChannel := make(chan error, 2)
	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Err(fatalErr).Msg("Closing server")

	server.ShutdownGracefully(30 * time.Second)
}

// setupLogging applies LOG_LEVEL and switches to console output when
// LOG_FORMAT is "console".
func setupLogging(c map[string]string) {
	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(strings.ToLower(config.GetString(c, "LOG_LEVEL", "info")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.GetString(c, "LOG_FORMAT", "json") == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// bootstrapAdmin creates the admin account named by ADMIN_USERNAME when
// ADMIN_PASSWORD is also set.
func bootstrapAdmin(c map[string]string, db database.Database) {
	username := config.GetString(c, "ADMIN_USERNAME", "")
	password := config.GetString(c, "ADMIN_PASSWORD", "")
	if username == "" || password == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := api.EnsureAdmin(ctx, db.AdminUserRepo(), username, password)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating admin account")
	}
	if created {
		log.Info().Str("username", username).Msg("Created admin account")
	}
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- errors.New((<-c).String())
}
