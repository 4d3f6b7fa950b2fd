package payment

import (
	"context"
	"errors"

	"tool-market/internal/models"
)

var ErrNotConfigured = errors.New("payment processor not configured")

// Unconfigured stands in when no Stripe key is set; every call fails.
type Unconfigured struct{}

func (Unconfigured) CreateIntent(context.Context, int64, string, string) (*models.PaymentIntent, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) RetrieveIntent(context.Context, string) (*models.PaymentIntent, error) {
	return nil, ErrNotConfigured
}
