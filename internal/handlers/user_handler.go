package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"tool-market/internal/apperrors"
	"tool-market/internal/middleware"
	"tool-market/internal/models"
	"tool-market/internal/services"
)

type UserHandler struct {
	userService *services.UserService
	logger      zerolog.Logger
}

func NewUserHandler(userService *services.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, users)
}

// UpsertUser creates or updates the profile for :email and returns a fresh token.
func (h *UserHandler) UpsertUser(w http.ResponseWriter, r *http.Request) {
	var profile models.UserProfile
	if err := decodeJSON(w, r, &profile); err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}

	res, err := h.userService.Upsert(r.Context(), mux.Vars(r)["email"], &profile)
	if err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (h *UserHandler) AdminStatus(w http.ResponseWriter, r *http.Request) {
	isAdmin, err := h.userService.IsAdmin(r.Context(), mux.Vars(r)["email"])
	if err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, models.AdminStatus{Admin: isAdmin})
}

func (h *UserHandler) MakeAdmin(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithAppError(w, r, h.logger, apperrors.New(apperrors.CodeUnauthenticated, "User not authenticated"))
		return
	}

	res, err := h.userService.MakeAdmin(r.Context(), requester, mux.Vars(r)["email"])
	if err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}
