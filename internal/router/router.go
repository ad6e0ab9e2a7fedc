package router

import (
	"net/http"

	"github.com/aarshiv/grader-api/internal/auth"
	"github.com/aarshiv/grader-api/internal/handlers"
	"github.com/aarshiv/grader-api/internal/middleware"
	"github.com/aarshiv/grader-api/internal/services"
	"github.com/aarshiv/grader-api/internal/utils"

	"github.com/gorilla/mux"
)

func NewRouter(evalService services.EvaluationService, authManager *auth.Manager, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Recovery(logger))

	evalHandler := handlers.NewEvaluationHandler(evalService, logger)
	authHandler := handlers.NewAuthHandler(authManager, logger)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	// Public endpoints
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/config/status", evalHandler.ConfigStatus).Methods(http.MethodGet)

	// Session-scoped endpoints
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.Auth(authManager, logger))

	protected.HandleFunc("/evaluations", evalHandler.CreateEvaluation).Methods(http.MethodPost)
	protected.HandleFunc("/evaluations", evalHandler.ListEvaluations).Methods(http.MethodGet)
	protected.HandleFunc("/evaluations/{id}", evalHandler.GetEvaluation).Methods(http.MethodGet)
	protected.HandleFunc("/evaluations/{id}", evalHandler.DeleteEvaluation).Methods(http.MethodDelete)
	protected.HandleFunc("/billing", evalHandler.GetBilling).Methods(http.MethodGet)
	protected.HandleFunc("/dashboard", evalHandler.GetDashboard).Methods(http.MethodGet)

	return r
}
