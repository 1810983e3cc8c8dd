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

// ProductRepo persists products in the 'products' collection.
type ProductRepo struct{ col *mongo.Collection }

func NewProductRepo(db *mongo.Database) *ProductRepo {
	return &ProductRepo{col: db.Collection("products")}
}

// List returns products, optionally filtered by case-insensitive substring
// match on name and category.
func (r *ProductRepo) List(ctx context.Context, name, category string) ([]model.Product, error) {
	filter := bson.M{}
	if name != "" {
		filter["name"] = primitive.Regex{Pattern: name, Options: "i"}
	}
	if category != "" {
		filter["category"] = primitive.Regex{Pattern: category, Options: "i"}
	}
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	products := []model.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Create inserts a product and fills in its id and timestamps.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.AverageRating = nil // derived field, never client-writable
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetByID fetches a product by its hex id.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (model.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Product{}, ErrNotFound
	}
	var p model.Product
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return model.Product{}, ErrNotFound
	}
	return p, err
}

// ProductUpdate carries the optional client-writable fields of a product
// update. The derived average_rating is deliberately absent.
type ProductUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int    `json:"price"`
	Stock       *int    `json:"stock"`
	Category    *string `json:"category"`
}

// Update applies a partial update and returns the post-update document.
func (r *ProductRepo) Update(ctx context.Context, id string, upd ProductUpdate) (model.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Product{}, ErrNotFound
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Price != nil {
		set["price"] = *upd.Price
	}
	if upd.Stock != nil {
		set["stock"] = *upd.Stock
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	var p model.Product
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return model.Product{}, ErrNotFound
	}
	return p, err
}

// Delete removes a product by id.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAverageRating writes the derived rating (nil clears it) together with
// an updated timestamp. Only the rating service calls this.
func (r *ProductRepo) SetAverageRating(ctx context.Context, id string, rating *int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = r.col.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"average_rating": rating, "updatedAt": time.Now().UTC()}},
	)
	return err
}
