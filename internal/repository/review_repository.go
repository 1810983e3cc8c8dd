package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aprizalabyan/shop-api/internal/model"
)

// ReviewRepo persists reviews in the 'reviews' collection.
type ReviewRepo struct{ col *mongo.Collection }

func NewReviewRepo(db *mongo.Database) *ReviewRepo {
	return &ReviewRepo{col: db.Collection("reviews")}
}

// ListAll returns every review.
func (r *ReviewRepo) ListAll(ctx context.Context) ([]model.Review, error) {
	return r.list(ctx, bson.M{})
}

// ListByProduct returns all reviews for one product.
func (r *ReviewRepo) ListByProduct(ctx context.Context, productID string) ([]model.Review, error) {
	return r.list(ctx, bson.M{"product_id": productID})
}

func (r *ReviewRepo) list(ctx context.Context, filter bson.M) ([]model.Review, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	reviews := []model.Review{}
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// Create inserts a review and fills in its id and timestamps. Product and
// reviewer names are expected to be snapshotted by the caller.
func (r *ReviewRepo) Create(ctx context.Context, rev *model.Review) error {
	now := time.Now().UTC()
	rev.CreatedAt = now
	rev.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, rev)
	if err != nil {
		return err
	}
	rev.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// ReviewUpdate carries the optional fields of a review update.
type ReviewUpdate struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

// Update applies a partial update on behalf of reviewerID and returns the
// post-update document. A review owned by someone else yields ErrForbidden
// and is left unchanged.
func (r *ReviewRepo) Update(ctx context.Context, id, reviewerID string, upd ReviewUpdate) (model.Review, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Review{}, ErrNotFound
	}
	var existing model.Review
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&existing); err != nil {
		if err == mongo.ErrNoDocuments {
			return model.Review{}, ErrNotFound
		}
		return model.Review{}, err
	}
	if existing.ReviewerID != reviewerID {
		return model.Review{}, ErrForbidden
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Rating != nil {
		set["rating"] = *upd.Rating
	}
	if upd.Comment != nil {
		set["comment"] = *upd.Comment
	}
	var rev model.Review
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "reviewer_id": reviewerID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&rev)
	if err == mongo.ErrNoDocuments {
		return model.Review{}, ErrNotFound
	}
	return rev, err
}

// Delete removes a review on behalf of reviewerID and returns the deleted
// document so callers can recompute the parent product's rating.
func (r *ReviewRepo) Delete(ctx context.Context, id, reviewerID string) (model.Review, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Review{}, ErrNotFound
	}
	var existing model.Review
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&existing); err != nil {
		if err == mongo.ErrNoDocuments {
			return model.Review{}, ErrNotFound
		}
		return model.Review{}, err
	}
	if existing.ReviewerID != reviewerID {
		return model.Review{}, ErrForbidden
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid, "reviewer_id": reviewerID})
	if err != nil {
		return model.Review{}, err
	}
	if res.DeletedCount == 0 {
		return model.Review{}, ErrNotFound
	}
	return existing, nil
}

// AverageRating computes the arithmetic mean over all non-null ratings for
// a product. The second return value is false when no rated reviews exist.
func (r *ReviewRepo) AverageRating(ctx context.Context, productID string) (float64, bool, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"product_id": productID, "rating": bson.M{"$ne": nil}}},
		{"$group": bson.M{"_id": nil, "average_rating": bson.M{"$avg": "$rating"}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, false, err
	}
	defer cur.Close(ctx)
	var out []struct {
		AverageRating *float64 `bson:"average_rating"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return 0, false, err
	}
	if len(out) == 0 || out[0].AverageRating == nil {
		return 0, false, nil
	}
	return *out[0].AverageRating, true, nil
}
