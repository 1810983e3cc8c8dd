package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aprizalabyan/shop-api/internal/config"
	"github.com/aprizalabyan/shop-api/internal/middleware"
	"github.com/aprizalabyan/shop-api/internal/model"
	"github.com/aprizalabyan/shop-api/internal/repository"
	"github.com/aprizalabyan/shop-api/internal/service"
)

// ReviewStore is the slice of the review repository the handler needs.
// Update and Delete enforce ownership: a review belonging to another
// reviewer yields repository.ErrForbidden and stays unchanged.
type ReviewStore interface {
	ListAll(ctx context.Context) ([]model.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]model.Review, error)
	Create(ctx context.Context, rev *model.Review) error
	Update(ctx context.Context, id, reviewerID string, upd repository.ReviewUpdate) (model.Review, error)
	Delete(ctx context.Context, id, reviewerID string) (model.Review, error)
}

// ProductStore is the slice of the product repository the handler needs.
type ProductStore interface {
	GetByID(ctx context.Context, id string) (model.Product, error)
}

// ReviewHandler bundles dependencies for review endpoints. Every mutation
// triggers a synchronous recompute of the parent product's average rating.
type ReviewHandler struct {
	Cfg      config.Config
	Reviews  ReviewStore
	Products ProductStore
	Rating   *service.RatingService
}

func NewReviewHandler(cfg config.Config, reviews ReviewStore, products ProductStore, rating *service.RatingService) *ReviewHandler {
	return &ReviewHandler{Cfg: cfg, Reviews: reviews, Products: products, Rating: rating}
}

type reviewReq struct {
	Rating  *int   `json:"rating"`
	Comment string `json:"comment"`
}

// List returns every review with isEditable computed against the caller.
func (h *ReviewHandler) List(c echo.Context) error {
	cur, _ := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reviews, err := h.Reviews.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, markEditable(reviews, cur.ID))
}

// ListByProduct returns all reviews of one product, 404 when there are none.
func (h *ReviewHandler) ListByProduct(c echo.Context) error {
	cur, _ := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reviews, err := h.Reviews.ListByProduct(ctx, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if len(reviews) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "review for this product not found"})
	}
	return c.JSON(http.StatusOK, markEditable(reviews, cur.ID))
}

// Create adds a review to a product, snapshotting the product and reviewer
// names at creation time, then recomputes the product's rating.
func (h *ReviewHandler) Create(c echo.Context) error {
	cur, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	productID := c.Param("id")
	p, err := h.Products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	reviewerName := cur.Name
	if reviewerName == "" {
		reviewerName = "Anonymous"
	}
	rev := &model.Review{
		ProductID:    productID,
		ProductName:  p.Name,
		ReviewerID:   cur.ID,
		ReviewerName: reviewerName,
		Rating:       req.Rating,
		Comment:      req.Comment,
	}
	if err := h.Reviews.Create(ctx, rev); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create review failed"})
	}
	h.recompute(c, productID)

	rev.IsEditable = true
	return c.JSON(http.StatusCreated, rev)
}

// Update modifies the caller's own review and recomputes the product's
// rating. Non-owners get 403 and the review stays unchanged.
func (h *ReviewHandler) Update(c echo.Context) error {
	cur, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	var upd repository.ReviewUpdate
	if err := c.Bind(&upd); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if upd.Rating == nil && upd.Comment == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rev, err := h.Reviews.Update(ctx, c.Param("id"), cur.ID, upd)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only update your own review"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	h.recompute(c, rev.ProductID)

	rev.IsEditable = true
	return c.JSON(http.StatusOK, rev)
}

// Delete removes the caller's own review and recomputes the product's
// rating.
func (h *ReviewHandler) Delete(c echo.Context) error {
	cur, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rev, err := h.Reviews.Delete(ctx, c.Param("id"), cur.ID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only delete your own review"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	h.recompute(c, rev.ProductID)

	return c.JSON(http.StatusOK, echo.Map{"message": "review deleted successfully"})
}

// recompute refreshes the product's derived rating. The review write has
// already committed, so a failure here only leaves the aggregate stale
// until the next mutation; it is logged, not surfaced.
func (h *ReviewHandler) recompute(c echo.Context, productID string) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Rating.Recompute(ctx, productID); err != nil {
		c.Logger().Errorf("recompute rating for product %s: %v", productID, err)
	}
}

// markEditable flags the reviews owned by the given reviewer.
func markEditable(reviews []model.Review, reviewerID string) []model.Review {
	for i := range reviews {
		reviews[i].IsEditable = reviews[i].ReviewerID == reviewerID
	}
	return reviews
}
