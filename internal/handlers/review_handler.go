package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"tool-market/internal/models"
	"tool-market/internal/services"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
	logger        zerolog.Logger
}

func NewReviewHandler(reviewService *services.ReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		logger:        logger,
	}
}

func (h *ReviewHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	var review models.Review
	if err := decodeJSON(w, r, &review); err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}

	res, err := h.reviewService.Add(r.Context(), &review)
	if err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviewService.List(r.Context())
	if err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, reviews)
}
