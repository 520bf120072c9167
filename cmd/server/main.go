package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/campus-events/eventhub-api/internal/auth"
	"github.com/campus-events/eventhub-api/internal/config"
	"github.com/campus-events/eventhub-api/internal/database"
	"github.com/campus-events/eventhub-api/internal/handlers"
	"github.com/campus-events/eventhub-api/internal/mailer"
	"github.com/campus-events/eventhub-api/internal/notifier"
	"github.com/campus-events/eventhub-api/internal/scheduler"
	"github.com/campus-events/eventhub-api/internal/tasks"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load Configuration
	cfg := config.LoadConfig()

	// Connect to Database
	db := database.Connect(cfg)

	// Mail sender: Resend when configured, log-only otherwise
	var sender mailer.Sender
	if cfg.ResendAPIKey != "" {
		sender = mailer.NewResendSender(cfg.ResendAPIKey, cfg.MailFrom)
	} else {
		log.Warn().Msg("RESEND_API_KEY not set; outgoing mail will only be logged")
		sender = mailer.NewNoopSender()
	}

	// Staff channel notifier (optional)
	var staffNotifier notifier.Notifier
	if dn, err := notifier.NewDiscordNotifier(cfg.DiscordBotToken, cfg.DiscordNotificationsChannelID); err != nil {
		log.Warn().Err(err).Msg("Discord notifier not initialized")
	} else {
		staffNotifier = dn
	}

	// Background engine: one scheduler instance for the whole process,
	// firing the completion pass followed by the feedback pass.
	runner := tasks.NewRunner(db, sender, cfg)
	sched := scheduler.New(cfg.PollInterval(), runner.RunPass)
	sched.Start()
	defer sched.Stop()

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db)
	eventHandler := handlers.NewEventHandler(db, staffNotifier, sender, cfg, authHandler)
	registrationHandler := handlers.NewRegistrationHandler(db, sender, cfg, authHandler)
	feedbackHandler := handlers.NewFeedbackHandler(db, authHandler)
	apiKeyHandler := handlers.NewAPIKeyHandler(db, authHandler)

	// Initialize Router
	r := chi.NewRouter()
	handlers.RegisterRoutes(r, authHandler, eventHandler, registrationHandler, feedbackHandler, apiKeyHandler)

	// Start Server
	log.Info().Str("port", cfg.Port).Msg("Starting server")
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
