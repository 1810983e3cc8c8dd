package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product mirrors the 'products' collection.  AverageRating is derived from
// reviews and written only by the rating service; it is nil until the first
// rated review exists and becomes nil again if all rated reviews disappear.
type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Price         *int               `bson:"price,omitempty" json:"price,omitempty"`
	Stock         *int               `bson:"stock,omitempty" json:"stock,omitempty"`
	Category      string             `bson:"category,omitempty" json:"category,omitempty"`
	AverageRating *int               `bson:"average_rating" json:"average_rating"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
