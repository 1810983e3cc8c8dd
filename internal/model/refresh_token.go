package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RefreshToken mirrors the 'refresh_tokens' collection.  Only a SHA-256
// digest of the raw token is stored; the raw value exists solely in the
// client's hands.  A non-nil RevokedAt makes the record permanently dead
// regardless of ExpiresAt.
type RefreshToken struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	TokenHash string             `bson:"tokenHash"`
	ExpiresAt time.Time          `bson:"expiresAt"`
	CreatedAt time.Time          `bson:"createdAt"`
	RevokedAt *time.Time         `bson:"revokedAt"`
}
