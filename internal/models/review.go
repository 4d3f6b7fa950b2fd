package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Review struct {
	ID     primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email  string             `json:"email" bson:"email" validate:"omitempty,email"`
	Name   string             `json:"name,omitempty" bson:"name,omitempty"`
	Text   string             `json:"review" bson:"review" validate:"required"`
	Rating int                `json:"rating,omitempty" bson:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}
