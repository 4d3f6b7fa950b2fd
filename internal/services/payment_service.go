package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"tool-market/internal/apperrors"
	"tool-market/internal/metrics"
	"tool-market/internal/models"
)

// PaymentProcessor is the external charge API.
type PaymentProcessor interface {
	CreateIntent(ctx context.Context, amount int64, currency, idempotencyKey string) (*models.PaymentIntent, error)
	RetrieveIntent(ctx context.Context, id string) (*models.PaymentIntent, error)
}

// IdempotencyCache remembers the client secret handed out for an idempotency key.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// PaymentService brokers charge intents with the processor. Processor calls are never retried.
type PaymentService struct {
	processor PaymentProcessor
	cache     IdempotencyCache
	cacheTTL  time.Duration
	currency  string
	logger    zerolog.Logger
}

func NewPaymentService(processor PaymentProcessor, cache IdempotencyCache, cacheTTL time.Duration, currency string, logger zerolog.Logger) *PaymentService {
	return &PaymentService{
		processor: processor,
		cache:     cache,
		cacheTTL:  cacheTTL,
		currency:  currency,
		logger:    logger,
	}
}

var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// ToMinorUnits converts a whole-unit price to minor units, rounding half away
// from zero. Amounts outside int64 are a validation error.
func ToMinorUnits(price float64) (int64, error) {
	minor := decimal.NewFromFloat(price).Shift(2).Round(0)
	if minor.Abs().GreaterThan(maxMinorUnits) {
		return 0, apperrors.Newf(apperrors.CodeValidation, "toolPrice %v is out of range", price)
	}
	return minor.IntPart(), nil
}

// CreateIntent opens a charge intent for toolPrice and returns its client secret.
// A non-empty idempotencyKey makes repeated calls return the same secret.
func (s *PaymentService) CreateIntent(ctx context.Context, req *models.PaymentIntentRequest, idempotencyKey string) (*models.PaymentIntentResponse, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	amount, err := ToMinorUnits(req.ToolPrice)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "toolPrice is below the smallest chargeable amount")
	}

	cacheKey := ""
	if idempotencyKey != "" && s.cache != nil {
		cacheKey = fmt.Sprintf("payment_intent:%s:%d", idempotencyKey, amount)
		secret, ok, err := s.cache.Get(ctx, cacheKey)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Idempotency cache lookup failed")
		} else if ok {
			metrics.PaymentIntents.WithLabelValues("cached").Inc()
			return &models.PaymentIntentResponse{ClientSecret: secret}, nil
		}
	}

	processorKey := idempotencyKey
	if processorKey == "" {
		processorKey = uuid.NewString()
	}

	intent, err := s.processor.CreateIntent(ctx, amount, s.currency, processorKey)
	if err != nil {
		metrics.PaymentIntents.WithLabelValues("failed").Inc()
		s.logger.Error().Err(err).Int64("amount", amount).Msg("Error creating payment intent")
		return nil, apperrors.Wrap(apperrors.CodePaymentProvider, err, "create payment intent")
	}

	if cacheKey != "" {
		if err := s.cache.Set(ctx, cacheKey, intent.ClientSecret, s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Str("intent_id", intent.ID).Msg("Idempotency cache write failed")
		}
	}

	metrics.PaymentIntents.WithLabelValues("created").Inc()
	s.logger.Info().Str("intent_id", intent.ID).Int64("amount", amount).Str("currency", s.currency).Msg("Payment intent created")
	return &models.PaymentIntentResponse{ClientSecret: intent.ClientSecret}, nil
}

// VerifyCharge confirms with the processor that intentID was captured.
func (s *PaymentService) VerifyCharge(ctx context.Context, intentID string) error {
	intent, err := s.processor.RetrieveIntent(ctx, intentID)
	if errors.Is(err, models.ErrUnknownIntent) {
		s.logger.Warn().Str("intent_id", intentID).Msg("Unknown payment intent")
		return apperrors.Newf(apperrors.CodePaymentRequired, "payment %s not found", intentID)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("intent_id", intentID).Msg("Error retrieving payment intent")
		return apperrors.Wrap(apperrors.CodePaymentProvider, err, "retrieve payment intent")
	}
	if intent.Status != models.PaymentIntentSucceeded {
		s.logger.Warn().Str("intent_id", intentID).Str("status", string(intent.Status)).Msg("Payment intent not captured")
		return apperrors.Newf(apperrors.CodePaymentRequired, "payment %s has status %s", intentID, intent.Status)
	}
	return nil
}
