package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review mirrors the 'reviews' collection.  ProductName and ReviewerName are
// snapshots taken at creation time so listings never need joins.  IsEditable
// is computed per request against the caller and is never stored.
type Review struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID    string             `bson:"product_id" json:"product_id"`
	ProductName  string             `bson:"product_name" json:"product_name"`
	ReviewerID   string             `bson:"reviewer_id" json:"-"`
	ReviewerName string             `bson:"reviewer_name" json:"reviewer_name"`
	Rating       *int               `bson:"rating" json:"rating"`
	Comment      string             `bson:"comment,omitempty" json:"comment,omitempty"`
	IsEditable   bool               `bson:"-" json:"isEditable"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
