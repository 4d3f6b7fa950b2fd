package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"tool-market/internal/models"
	"tool-market/internal/services"
)

const idempotencyHeader = "Idempotency-Key"

type PaymentHandler struct {
	paymentService *services.PaymentService
	logger         zerolog.Logger
}

func NewPaymentHandler(paymentService *services.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

func (h *PaymentHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentIntentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}

	res, err := h.paymentService.CreateIntent(r.Context(), &req, r.Header.Get(idempotencyHeader))
	if err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}
