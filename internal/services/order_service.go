package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"tool-market/internal/apperrors"
	"tool-market/internal/metrics"
	"tool-market/internal/models"
	"tool-market/internal/repository"
)

// ChargeVerifier confirms with the payment processor that a charge was captured.
type ChargeVerifier interface {
	VerifyCharge(ctx context.Context, intentID string) error
}

// Requester identifies who asks for an order mutation. A nil *Requester means
// the route carries no guard and ownership is not checked.
type Requester struct {
	Email string
	Admin bool
}

// OrderService owns the placed -> paid transition. Placement does not consult
// the catalog: tool, price and quantity are stored as submitted.
type OrderService struct {
	store    OrderStore
	verifier ChargeVerifier
	logger   zerolog.Logger
}

// NewOrderService builds the lifecycle. A nil verifier trusts the caller-supplied transaction id.
func NewOrderService(store OrderStore, verifier ChargeVerifier, logger zerolog.Logger) *OrderService {
	return &OrderService{
		store:    store,
		verifier: verifier,
		logger:   logger,
	}
}

func (s *OrderService) Place(ctx context.Context, req *models.PlaceOrderRequest) (*models.InsertResult, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	order := &models.Order{
		Tool:     req.Tool,
		ToolName: req.ToolName,
		Email:    req.Email,
		Name:     req.Name,
		Quantity: req.Quantity,
		Price:    req.Price,
		Address:  req.Address,
		Phone:    req.Phone,
	}

	res, err := s.store.Insert(ctx, order)
	if err != nil {
		s.logger.Error().Err(err).Str("email", req.Email).Msg("Error placing order")
		return nil, storeError(err, "order")
	}

	metrics.OrdersPlaced.Inc()
	s.logger.Info().Str("order_id", res.InsertedID).Str("email", req.Email).Str("tool", req.Tool).Msg("Order placed")
	return res, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "order")
	}
	return order, nil
}

// ConfirmPayment marks order id paid with transactionID. Repeating the call
// with the same transactionID returns the paid order unchanged; a different
// transactionID on a paid order is a conflict.
func (s *OrderService) ConfirmPayment(ctx context.Context, requester *Requester, id, transactionID string) (*models.Order, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "transactionId is required")
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if requester != nil && !requester.Admin && requester.Email != order.Email {
		metrics.GuardRejections.WithLabelValues("owner", string(apperrors.CodeForbidden)).Inc()
		return nil, apperrors.New(apperrors.CodeForbidden, "order belongs to another purchaser")
	}

	if order.Paid {
		return s.settled(order, transactionID)
	}

	if s.verifier != nil {
		if err := s.verifier.VerifyCharge(ctx, transactionID); err != nil {
			outcome := "error"
			if apperrors.Is(err, apperrors.CodePaymentRequired) {
				outcome = "unverified"
			}
			metrics.PaymentConfirmations.WithLabelValues(outcome).Inc()
			return nil, err
		}
	}

	paid, err := s.store.MarkPaid(ctx, id, transactionID)
	if errors.Is(err, repository.ErrNotFound) {
		// Lost a race with a concurrent confirmation; judge against what won.
		current, getErr := s.Get(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return s.settled(current, transactionID)
	}
	if err != nil {
		metrics.PaymentConfirmations.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Str("order_id", id).Msg("Error marking order paid")
		return nil, storeError(err, "order")
	}

	metrics.PaymentConfirmations.WithLabelValues("paid").Inc()
	s.logger.Info().Str("order_id", id).Str("transaction_id", transactionID).Msg("Order paid")
	return paid, nil
}

func (s *OrderService) settled(order *models.Order, transactionID string) (*models.Order, error) {
	if order.TransactionID != nil && *order.TransactionID == transactionID {
		metrics.PaymentConfirmations.WithLabelValues("replayed").Inc()
		return order, nil
	}
	metrics.PaymentConfirmations.WithLabelValues("conflict").Inc()
	s.logger.Warn().Str("order_id", order.ID.Hex()).Str("transaction_id", transactionID).Msg("Order already paid with another transaction")
	return nil, apperrors.Newf(apperrors.CodeConflict, "order %s is already paid", order.ID.Hex())
}

// ListByPurchaser returns email's orders when identity is email and nothing otherwise.
func (s *OrderService) ListByPurchaser(ctx context.Context, identity, email string) ([]models.Order, error) {
	if identity == "" || identity != email {
		s.logger.Debug().Str("identity", identity).Str("email", email).Msg("Order listing identity mismatch")
		return []models.Order{}, nil
	}
	orders, err := s.store.ListByEmail(ctx, email)
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("Error listing orders")
		return nil, storeError(err, "order")
	}
	return orders, nil
}

func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	orders, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing orders")
		return nil, storeError(err, "order")
	}
	return orders, nil
}

// Remove deletes every order placed by email.
func (s *OrderService) Remove(ctx context.Context, email string) (*models.DeleteResult, error) {
	if strings.TrimSpace(email) == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "email is required")
	}
	res, err := s.store.DeleteByEmail(ctx, email)
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("Error removing orders")
		return nil, storeError(err, "order")
	}
	s.logger.Info().Str("email", email).Int64("deleted", res.DeletedCount).Msg("Orders removed")
	return res, nil
}
