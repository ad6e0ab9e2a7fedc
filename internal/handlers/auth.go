package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aarshiv/grader-api/internal/auth"
	"github.com/aarshiv/grader-api/internal/models"
	"github.com/aarshiv/grader-api/internal/utils"
)

type AuthHandler struct {
	manager *auth.Manager
	logger  *utils.Logger
}

func NewAuthHandler(manager *auth.Manager, logger *utils.Logger) *AuthHandler {
	return &AuthHandler{
		manager: manager,
		logger:  logger,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("Invalid request body"))
		return
	}

	user, token, err := h.manager.Login(req.Email, req.Name)
	if err != nil {
		respondError(w, h.logger, utils.NewBadRequestError(err.Error()))
		return
	}

	h.logger.Info("Session established", "user_id", user.ID, "email", user.Email)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(models.LoginResponse{Token: token, User: user}); err != nil {
		h.logger.Error("Failed to encode JSON response", "error", err)
	}
}
