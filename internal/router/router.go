package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/aprizalabyan/shop-api/internal/config"
	"github.com/aprizalabyan/shop-api/internal/handler"
	"github.com/aprizalabyan/shop-api/internal/middleware"
)

// Handlers groups every handler the API exposes so RegisterRoutes has a
// single wiring point.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Products *handler.ProductHandler
	Reviews  *handler.ReviewHandler
}

// RegisterRoutes wires the full HTTP surface.  Unauthenticated routes are
// the health check, registration and the token endpoints; everything else
// sits behind the bearer-token gate.
func RegisterRoutes(e *echo.Echo, cfg config.Config, users middleware.UserLoader, h Handlers) {
	// Health check for load balancers and monitoring, outside the API prefix.
	e.GET("/healthz", handler.Health)

	api := e.Group("/api/v1")

	// Session endpoints.  Login and refresh exchange credentials for token
	// pairs; logout revokes either one refresh token (body) or every
	// session of the caller (bearer).  None of them require a live access
	// token, so an expired session can still be refreshed or terminated.
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh-token", h.Auth.Refresh)
	api.POST("/auth/logout", h.Auth.Logout)

	// Registration is the only open user route: accounts must be creatable
	// before a token exists.
	api.POST("/users", h.Users.Register)

	// Everything below requires a valid access token; the middleware
	// resolves the subject to a live identity and stores its public
	// summary in the request context.
	authed := api.Group("", middleware.Auth(cfg.JWTSecret, users))

	authed.GET("/auth/me", h.Auth.Me)

	authed.GET("/users", h.Users.List)
	authed.GET("/users/:id", h.Users.Get)
	authed.PUT("/users/:id", h.Users.Update)
	authed.DELETE("/users/:id", h.Users.Delete)

	authed.GET("/products", h.Products.List)
	authed.POST("/products", h.Products.Create)
	authed.GET("/products/:id", h.Products.Get)
	authed.PUT("/products/:id", h.Products.Update)
	authed.DELETE("/products/:id", h.Products.Delete)

	// The :id segment is overloaded across review routes because Echo allows
	// one param name per path position: GET and POST take a product id,
	// PUT and DELETE a review id.
	authed.GET("/reviews", h.Reviews.List)
	authed.GET("/reviews/:id", h.Reviews.ListByProduct)
	authed.POST("/reviews/:id", h.Reviews.Create)
	authed.PUT("/reviews/:id", h.Reviews.Update)
	authed.DELETE("/reviews/:id", h.Reviews.Delete)
}
