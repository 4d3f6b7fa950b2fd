package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Tool struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name,omitempty" validate:"required"`
	Description  string             `json:"description,omitempty" bson:"description,omitempty"`
	Image        string             `json:"image,omitempty" bson:"image,omitempty"`
	Price        float64            `json:"price" bson:"price,omitempty" validate:"gte=0"`
	Quantity     int                `json:"quantity" bson:"quantity,omitempty" validate:"gte=0"`
	MinimumOrder int                `json:"minimumOrder,omitempty" bson:"minimumOrder,omitempty" validate:"gte=0"`
	Supplier     string             `json:"supplier,omitempty" bson:"supplier,omitempty"`
}
