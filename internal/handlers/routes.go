package handlers

import (
	"net/http"

	"github.com/campus-events/eventhub-api/internal/auth"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func RegisterRoutes(r *chi.Mux, authHandler *auth.AuthHandler, eventHandler *EventHandler, registrationHandler *RegistrationHandler, feedbackHandler *FeedbackHandler, apiKeyHandler *APIKeyHandler) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(authHandler.SessionRefresh)

	config := huma.DefaultConfig("EventHub API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: "auth_token",
		},
		"apiKeyAuth": {
			Type: "apiKey",
			In:   "header",
			Name: "X-API-KEY",
		},
	}
	api := humachi.New(r, config)

	cookieAuth := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}}
	}
	cookieOrKeyAuth := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}, {"apiKeyAuth": {}}}
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Auth
	huma.Post(api, "/auth/signup", authHandler.HandleSignup)
	huma.Post(api, "/auth/login", authHandler.HandleLogin)
	huma.Post(api, "/auth/logout", authHandler.HandleLogout)
	huma.Get(api, "/me", authHandler.HandleMe, cookieAuth)

	// Events (browse is public)
	huma.Get(api, "/events", eventHandler.HandleListEvents)
	huma.Get(api, "/events/{id}", eventHandler.HandleGetEvent)
	huma.Post(api, "/events", eventHandler.HandleCreateEvent, cookieAuth)
	huma.Put(api, "/events/{id}", eventHandler.HandleUpdateEvent, cookieAuth)
	huma.Delete(api, "/events/{id}", eventHandler.HandleDeleteEvent, cookieAuth)
	huma.Get(api, "/my/events", eventHandler.HandleMyEvents, cookieAuth)

	// Review (staff)
	huma.Get(api, "/review/pending", eventHandler.HandlePendingEvents, cookieAuth)
	huma.Post(api, "/events/{id}/approve", eventHandler.HandleApproveEvent, cookieAuth)
	huma.Post(api, "/events/{id}/reject", eventHandler.HandleRejectEvent, cookieAuth)

	// Registrations & check-in
	huma.Post(api, "/events/{id}/register", registrationHandler.HandleRegister, cookieAuth)
	huma.Get(api, "/my/registrations", registrationHandler.HandleMyRegistrations, cookieAuth)
	huma.Get(api, "/events/{id}/participants", registrationHandler.HandleParticipants, cookieAuth)
	huma.Post(api, "/checkin", registrationHandler.HandleCheckIn, cookieOrKeyAuth)

	// Feedback
	huma.Post(api, "/events/{id}/feedback", feedbackHandler.HandleSubmitFeedback, cookieAuth)
	huma.Get(api, "/events/{id}/analytics", feedbackHandler.HandleAnalytics, cookieAuth)

	// API keys for scanner stations
	huma.Post(api, "/api-keys", apiKeyHandler.HandleCreate, cookieAuth)
	huma.Get(api, "/api-keys", apiKeyHandler.HandleList, cookieAuth)
	huma.Delete(api, "/api-keys/{id}", apiKeyHandler.HandleDelete, cookieAuth)
}
