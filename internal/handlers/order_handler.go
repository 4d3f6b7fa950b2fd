package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"tool-market/internal/middleware"
	"tool-market/internal/models"
	"tool-market/internal/services"
)

type OrderHandler struct {
	orderService *services.OrderService
	roles        middleware.RoleLookup
	logger       zerolog.Logger
}

func NewOrderHandler(orderService *services.OrderService, roles middleware.RoleLookup, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		roles:        roles,
		logger:       logger,
	}
}

func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req models.PlaceOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}

	res, err := h.orderService.Place(r.Context(), &req)
	if err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

// ListOrders serves GET /orders?email=; a caller only ever sees their own orders.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())

	orders, err := h.orderService.ListByPurchaser(r.Context(), identity, r.URL.Query().Get("email"))
	if err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req models.ConfirmPaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}

	requester, err := h.requester(r)
	if err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}

	order, err := h.orderService.ConfirmPayment(r.Context(), requester, mux.Vars(r)["id"], req.TransactionID)
	if err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) ManageOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListAll(r.Context())
	if err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) DeleteOrders(w http.ResponseWriter, r *http.Request) {
	res, err := h.orderService.Remove(r.Context(), mux.Vars(r)["email"])
	if err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

// requester is nil when the route carries no AuthGate.
func (h *OrderHandler) requester(r *http.Request) (*services.Requester, error) {
	email, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return nil, nil
	}
	role, err := h.roles.RoleOf(r.Context(), email)
	if err != nil {
		return nil, err
	}
	return &services.Requester{Email: email, Admin: role == models.RoleAdmin}, nil
}
