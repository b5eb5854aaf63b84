package routes

import (
	"fmt"
	"net/http"

	"tutorgo-backend/internal/config"
	"tutorgo-backend/internal/handlers"
	"tutorgo-backend/internal/middleware"
)

// SetupRoutes configures all application routes
func SetupRoutes(
	authHandler *handlers.AuthHandler,
	sessionsHandler *handlers.SessionsHandler,
	healthHandler *handlers.HealthHandler,
	jwtCfg *config.JWTConfig,
	users middleware.UserSource,
) {
	// Health check routes
	http.HandleFunc("/health", healthHandler.HealthCheck)
	http.HandleFunc("/readyz", healthHandler.ReadinessCheck)

	// Authentication routes
	http.HandleFunc("/auth/register", authHandler.Register)
	http.HandleFunc("/auth/login", authHandler.Login)

	// Session routes (bearer token required)
	http.HandleFunc("/sessions", middleware.AuthMiddleware(sessionsHandler.Sessions, jwtCfg, users))
	http.HandleFunc("/sessions/", middleware.AuthMiddleware(sessionsHandler.Sessions, jwtCfg, users))

	// Root route, personalized when a valid token is presented
	http.HandleFunc("/", middleware.OptionalAuthMiddleware(rootHandler, jwtCfg, users))
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		fmt.Fprintf(w, "TutorGo backend is running. Welcome back, %s.", user.Name)
		return
	}
	w.Write([]byte("TutorGo backend is running."))
}
