package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aprizalabyan/shop-api/internal/model"
	"github.com/aprizalabyan/shop-api/internal/utils"
)

// TokenRepo persists refresh tokens (single 'tokenHash' digest column).
// The collection is the sole serialization point for rotation: consuming a
// token is one conditional update keyed on revokedAt=null, so of several
// racing rotations at most one succeeds.
type TokenRepo struct{ col *mongo.Collection }

func NewTokenRepo(db *mongo.Database) *TokenRepo {
	return &TokenRepo{col: db.Collection("refresh_tokens")}
}

// Issue mints a fresh random token expiring at the given absolute instant,
// stores its digest and returns the raw value. The raw string is the only
// copy; it cannot be recovered from the database.
func (r *TokenRepo) Issue(ctx context.Context, userID string, expiresAt time.Time) (string, error) {
	raw, err := utils.NewRefreshRaw()
	if err != nil {
		return "", err
	}
	rec := model.RefreshToken{
		UserID:    userID,
		TokenHash: utils.HashRefreshRaw(raw),
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, rec); err != nil {
		return "", fmt.Errorf("%w: %v", utils.ErrTokenGeneration, err)
	}
	return raw, nil
}

// Consume atomically revokes the live record matching the presented token
// and returns its pre-revocation state. Absent or already-revoked tokens
// yield ErrRefreshTokenNotFound, which is what a losing racer observes.
// An expired record yields ErrRefreshTokenExpired after being revoked by
// the same update.
func (r *TokenRepo) Consume(ctx context.Context, raw string) (model.RefreshToken, error) {
	now := time.Now().UTC()
	var rec model.RefreshToken
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"tokenHash": utils.HashRefreshRaw(raw), "revokedAt": nil},
		bson.M{"$set": bson.M{"revokedAt": now}},
	).Decode(&rec) // default return is the pre-update document
	if err == mongo.ErrNoDocuments {
		return model.RefreshToken{}, ErrRefreshTokenNotFound
	}
	if err != nil {
		return model.RefreshToken{}, fmt.Errorf("%w: %v", utils.ErrTokenGeneration, err)
	}
	if !rec.ExpiresAt.After(now) {
		return model.RefreshToken{}, ErrRefreshTokenExpired
	}
	return rec, nil
}

// Revoke marks one live record matching the presented token as revoked and
// reports whether anything changed.
func (r *TokenRepo) Revoke(ctx context.Context, raw string) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"tokenHash": utils.HashRefreshRaw(raw), "revokedAt": nil},
		bson.M{"$set": bson.M{"revokedAt": time.Now().UTC()}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// RevokeAll revokes every live token of a user ("log out everywhere") and
// returns how many records were affected.
func (r *TokenRepo) RevokeAll(ctx context.Context, userID string) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"userId": userID, "revokedAt": nil},
		bson.M{"$set": bson.M{"revokedAt": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
