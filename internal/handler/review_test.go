package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aprizalabyan/shop-api/internal/config"
	"github.com/aprizalabyan/shop-api/internal/middleware"
	"github.com/aprizalabyan/shop-api/internal/model"
	"github.com/aprizalabyan/shop-api/internal/repository"
	"github.com/aprizalabyan/shop-api/internal/service"
	"github.com/aprizalabyan/shop-api/internal/utils"
)

// memReviewStore keeps reviews in a map and mirrors the repository's
// ownership contract: Update and Delete touch nothing and return
// ErrForbidden when the review belongs to another reviewer. It also
// serves as the rating service's aggregation source so the handler
// tests exercise the real recompute path.
type memReviewStore struct {
	mu   sync.Mutex
	recs map[string]*model.Review
}

func newMemReviewStore() *memReviewStore {
	return &memReviewStore{recs: map[string]*model.Review{}}
}

func (s *memReviewStore) ListAll(context.Context) ([]model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Review{}
	for _, rec := range s.recs {
		out = append(out, *rec)
	}
	return out, nil
}

func (s *memReviewStore) ListByProduct(_ context.Context, productID string) ([]model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Review{}
	for _, rec := range s.recs {
		if rec.ProductID == productID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (s *memReviewStore) Create(_ context.Context, rev *model.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rev.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	rev.CreatedAt = now
	rev.UpdatedAt = now
	cp := *rev
	s.recs[rev.ID.Hex()] = &cp
	return nil
}

func (s *memReviewStore) Update(_ context.Context, id, reviewerID string, upd repository.ReviewUpdate) (model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return model.Review{}, repository.ErrNotFound
	}
	if rec.ReviewerID != reviewerID {
		return model.Review{}, repository.ErrForbidden
	}
	if upd.Rating != nil {
		rec.Rating = upd.Rating
	}
	if upd.Comment != nil {
		rec.Comment = *upd.Comment
	}
	rec.UpdatedAt = time.Now().UTC()
	return *rec, nil
}

func (s *memReviewStore) Delete(_ context.Context, id, reviewerID string) (model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return model.Review{}, repository.ErrNotFound
	}
	if rec.ReviewerID != reviewerID {
		return model.Review{}, repository.ErrForbidden
	}
	delete(s.recs, id)
	return *rec, nil
}

func (s *memReviewStore) AverageRating(_ context.Context, productID string) (float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum, n int
	for _, rec := range s.recs {
		if rec.ProductID == productID && rec.Rating != nil {
			sum += *rec.Rating
			n++
		}
	}
	if n == 0 {
		return 0, false, nil
	}
	return float64(sum) / float64(n), true, nil
}

func (s *memReviewStore) get(id string) (model.Review, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return model.Review{}, false
	}
	return *rec, true
}

// memProductStore records every derived-rating write so tests can assert
// which mutations triggered a recompute and what it produced.
type memProductStore struct {
	mu       sync.Mutex
	products map[string]model.Product
	written  []*int
	lastID   string
}

func (s *memProductStore) GetByID(_ context.Context, id string) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return model.Product{}, repository.ErrNotFound
}

func (s *memProductStore) SetAverageRating(_ context.Context, id string, rating *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written = append(s.written, rating)
	s.lastID = id
	return nil
}

func (s *memProductStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.written)
}

func (s *memProductStore) lastWrite() *int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.written) == 0 {
		return nil
	}
	return s.written[len(s.written)-1]
}

type reviewFixture struct {
	e        *echo.Echo
	reviews  *memReviewStore
	products *memProductStore
	product  model.Product

	owner    model.User
	intruder model.User
	tokens   map[string]string
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	owner := model.User{ID: primitive.NewObjectID(), Email: "dana@example.com", Name: "Dana"}
	intruder := model.User{ID: primitive.NewObjectID(), Email: "eve@example.com", Name: "Eve"}
	users := &fakeUserStore{users: []model.User{owner, intruder}}

	product := model.Product{ID: primitive.NewObjectID(), Name: "Mechanical Keyboard"}
	reviews := newMemReviewStore()
	products := &memProductStore{products: map[string]model.Product{product.ID.Hex(): product}}

	cfg := config.Config{Env: "test", JWTSecret: testSecret}
	h := NewReviewHandler(cfg, reviews, products, service.NewRatingService(reviews, products))

	e := echo.New()
	authed := e.Group("/api/v1", middleware.Auth(cfg.JWTSecret, users))
	authed.GET("/reviews", h.List)
	authed.GET("/reviews/:id", h.ListByProduct)
	authed.POST("/reviews/:id", h.Create)
	authed.PUT("/reviews/:id", h.Update)
	authed.DELETE("/reviews/:id", h.Delete)

	tokens := map[string]string{}
	for _, u := range []model.User{owner, intruder} {
		tok, err := utils.NewAccessToken(testSecret, u.ID.Hex(), time.Minute)
		require.NoError(t, err)
		tokens[u.ID.Hex()] = tok.Token
	}
	return &reviewFixture{
		e: e, reviews: reviews, products: products, product: product,
		owner: owner, intruder: intruder, tokens: tokens,
	}
}

func (f *reviewFixture) do(method, path, body string, as model.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+f.tokens[as.ID.Hex()])
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

// seed inserts a review owned by the given user directly into the store,
// bypassing the handler so write counters start at zero.
func (f *reviewFixture) seed(t *testing.T, u model.User, rating *int, comment string) model.Review {
	t.Helper()
	rev := &model.Review{
		ProductID:    f.product.ID.Hex(),
		ProductName:  f.product.Name,
		ReviewerID:   u.ID.Hex(),
		ReviewerName: u.Name,
		Rating:       rating,
		Comment:      comment,
	}
	require.NoError(t, f.reviews.Create(context.Background(), rev))
	return *rev
}

func intp(v int) *int { return &v }

func TestCreateReviewRecomputesRating(t *testing.T) {
	f := newReviewFixture(t)

	rec := f.do(http.MethodPost, "/api/v1/reviews/"+f.product.ID.Hex(),
		`{"rating":4,"comment":"solid"}`, f.owner)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isEditable":true`)

	require.Equal(t, 1, f.products.writes())
	assert.Equal(t, f.product.ID.Hex(), f.products.lastID)
	require.NotNil(t, f.products.lastWrite())
	assert.Equal(t, 4, *f.products.lastWrite())

	// A second rating of 5 moves the mean to 4.5, stored rounded up.
	rec = f.do(http.MethodPost, "/api/v1/reviews/"+f.product.ID.Hex(),
		`{"rating":5}`, f.intruder)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, f.products.lastWrite())
	assert.Equal(t, 5, *f.products.lastWrite())

	// A comment-only review still recomputes but the mean ignores it.
	rec = f.do(http.MethodPost, "/api/v1/reviews/"+f.product.ID.Hex(),
		`{"comment":"no stars from me"}`, f.owner)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 3, f.products.writes())
	require.NotNil(t, f.products.lastWrite())
	assert.Equal(t, 5, *f.products.lastWrite())
}

func TestCreateReviewUnknownProduct(t *testing.T) {
	f := newReviewFixture(t)

	rec := f.do(http.MethodPost, "/api/v1/reviews/"+primitive.NewObjectID().Hex(),
		`{"rating":3}`, f.owner)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, f.products.writes())
}

func TestUpdateReviewRejectsNonOwner(t *testing.T) {
	f := newReviewFixture(t)
	rev := f.seed(t, f.owner, intp(4), "great")

	rec := f.do(http.MethodPut, "/api/v1/reviews/"+rev.ID.Hex(),
		`{"rating":1,"comment":"vandalized"}`, f.intruder)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "your own review")

	// The review is untouched and no recompute fired.
	got, ok := f.reviews.get(rev.ID.Hex())
	require.True(t, ok)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 4, *got.Rating)
	assert.Equal(t, "great", got.Comment)
	assert.Equal(t, 0, f.products.writes())
}

func TestDeleteReviewRejectsNonOwner(t *testing.T) {
	f := newReviewFixture(t)
	rev := f.seed(t, f.owner, intp(5), "keep this")

	rec := f.do(http.MethodDelete, "/api/v1/reviews/"+rev.ID.Hex(), "", f.intruder)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "your own review")

	_, ok := f.reviews.get(rev.ID.Hex())
	assert.True(t, ok)
	assert.Equal(t, 0, f.products.writes())
}

func TestUpdateReviewByOwnerRecomputes(t *testing.T) {
	f := newReviewFixture(t)
	rev := f.seed(t, f.owner, intp(4), "fine")

	rec := f.do(http.MethodPut, "/api/v1/reviews/"+rev.ID.Hex(),
		`{"rating":2}`, f.owner)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Equal(t, 1, f.products.writes())
	assert.Equal(t, f.product.ID.Hex(), f.products.lastID)
	require.NotNil(t, f.products.lastWrite())
	assert.Equal(t, 2, *f.products.lastWrite())
}

func TestDeleteLastRatedReviewClearsAverage(t *testing.T) {
	f := newReviewFixture(t)
	rev := f.seed(t, f.owner, intp(4), "")

	rec := f.do(http.MethodDelete, "/api/v1/reviews/"+rev.ID.Hex(), "", f.owner)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Equal(t, 1, f.products.writes())
	assert.Nil(t, f.products.lastWrite())
}

func TestUpdateReviewUnknownID(t *testing.T) {
	f := newReviewFixture(t)

	rec := f.do(http.MethodPut, "/api/v1/reviews/"+primitive.NewObjectID().Hex(),
		`{"rating":3}`, f.owner)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
