package models

import "errors"

// ErrUnknownIntent is returned by processors when no intent has the requested id.
var ErrUnknownIntent = errors.New("unknown payment intent")

type PaymentIntentStatus string

const (
	PaymentIntentSucceeded PaymentIntentStatus = "succeeded"
)

// PaymentIntent is the processor-side charge handle as far as this service cares.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       PaymentIntentStatus
}

type PaymentIntentRequest struct {
	ToolPrice float64 `json:"toolPrice" validate:"gt=0,lte=999999.99"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}
