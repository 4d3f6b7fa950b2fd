package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Order is placed unpaid and flips to paid exactly once.
// TransactionID is nil while Paid is false and set once Paid is true.
type Order struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Tool          string             `json:"tool" bson:"tool"`
	ToolName      string             `json:"toolName,omitempty" bson:"toolName,omitempty"`
	Email         string             `json:"email" bson:"email"`
	Name          string             `json:"name,omitempty" bson:"name,omitempty"`
	Quantity      int                `json:"quantity" bson:"quantity"`
	Price         float64            `json:"price,omitempty" bson:"price,omitempty"`
	Address       string             `json:"address,omitempty" bson:"address,omitempty"`
	Phone         string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Paid          bool               `json:"paid" bson:"paid"`
	TransactionID *string            `json:"transactionId" bson:"transactionId"`
}

type PlaceOrderRequest struct {
	Tool     string  `json:"tool" validate:"required"`
	ToolName string  `json:"toolName"`
	Email    string  `json:"email" validate:"required,email"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity" validate:"gte=1"`
	Price    float64 `json:"price" validate:"gte=0"`
	Address  string  `json:"address"`
	Phone    string  `json:"phone"`
}

type ConfirmPaymentRequest struct {
	TransactionID string `json:"transactionId" validate:"required"`
}
