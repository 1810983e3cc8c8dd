package service

import (
	"context"
	"math"
)

// ReviewRatings is the slice of the review repository the aggregator needs.
type ReviewRatings interface {
	AverageRating(ctx context.Context, productID string) (float64, bool, error)
}

// ProductRatings is the slice of the product repository the aggregator needs.
type ProductRatings interface {
	SetAverageRating(ctx context.Context, productID string, rating *int) error
}

// RatingService recomputes a product's derived average rating from its
// reviews. It runs synchronously after each review mutation but outside the
// triggering write, so the derived field is eventually consistent: a crash
// between the two leaves it stale until the next mutation.
type RatingService struct {
	reviews  ReviewRatings
	products ProductRatings
}

func NewRatingService(reviews ReviewRatings, products ProductRatings) *RatingService {
	return &RatingService{reviews: reviews, products: products}
}

// Recompute averages all non-null ratings for the product, rounds half away
// from zero (4.5 rounds to 5) and writes the result. Zero rated reviews
// clear the field to null.
func (s *RatingService) Recompute(ctx context.Context, productID string) error {
	avg, ok, err := s.reviews.AverageRating(ctx, productID)
	if err != nil {
		return err
	}
	var rounded *int
	if ok {
		v := roundRating(avg)
		rounded = &v
	}
	return s.products.SetAverageRating(ctx, productID, rounded)
}

// roundRating fixes the rounding convention for the derived field:
// arithmetic rounding, halves away from zero (math.Round semantics).
func roundRating(avg float64) int {
	return int(math.Round(avg))
}
