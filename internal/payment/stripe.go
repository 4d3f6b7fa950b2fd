// Package payment adapts Stripe PaymentIntents to the services.PaymentProcessor contract.
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v84"

	"tool-market/internal/models"
)

var errAPIKeyRequired = errors.New("stripe api key is required")

// StripeProcessor creates and inspects card PaymentIntents.
type StripeProcessor struct {
	api    *stripe.Client
	live   bool
	logger zerolog.Logger
}

// NewStripeProcessor validates apiKey and builds a client for it. Extra options
// are passed through to stripe.NewClient.
func NewStripeProcessor(apiKey string, logger zerolog.Logger, opts ...stripe.ClientOption) (*StripeProcessor, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	live, err := keyMode(apiKey)
	if err != nil {
		return nil, err
	}

	mode := "test"
	if live {
		mode = "live"
	}
	logger.Info().Str("mode", mode).Msg("Stripe client initialized")

	return &StripeProcessor{
		api:    stripe.NewClient(apiKey, opts...),
		live:   live,
		logger: logger,
	}, nil
}

// Live reports whether the processor charges real cards.
func (p *StripeProcessor) Live() bool {
	return p.live
}

func (p *StripeProcessor) CreateIntent(ctx context.Context, amount int64, currency, idempotencyKey string) (*models.PaymentIntent, error) {
	params := &stripe.PaymentIntentCreateParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}

	pi, err := p.api.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("stripe create payment intent: %w", err)
	}
	return toIntent(pi), nil
}

func (p *StripeProcessor) RetrieveIntent(ctx context.Context, id string) (*models.PaymentIntent, error) {
	pi, err := p.api.V1PaymentIntents.Retrieve(ctx, id, &stripe.PaymentIntentRetrieveParams{})
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) &&
			(stripeErr.HTTPStatusCode == http.StatusNotFound || stripeErr.Code == stripe.ErrorCodeResourceMissing) {
			return nil, fmt.Errorf("%w: %s", models.ErrUnknownIntent, id)
		}
		return nil, fmt.Errorf("stripe retrieve payment intent: %w", err)
	}
	return toIntent(pi), nil
}

func toIntent(pi *stripe.PaymentIntent) *models.PaymentIntent {
	return &models.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       models.PaymentIntentStatus(pi.Status),
	}
}

func keyMode(key string) (bool, error) {
	switch {
	case strings.HasPrefix(key, "sk_test"), strings.HasPrefix(key, "rk_test"):
		return false, nil
	case strings.HasPrefix(key, "sk_live"), strings.HasPrefix(key, "rk_live"):
		return true, nil
	default:
		return false, errors.New("stripe api key must be a secret or restricted key (sk_/rk_)")
	}
}
