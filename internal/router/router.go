package router // route registration for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auction-market/internal/handler"
	"github.com/iliyamo/auction-market/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication and
// carry no domain state. Currently that is only the health check used by
// load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. Register, login,
// refresh and logout live under /v1/auth and need no existing session; the
// logout handler inspects its own Authorization header so it works with
// either a bearer token or a refresh token in the body.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
}

// RegisterPublic registers the unauthenticated browse endpoints. cache is
// the redis response cache middleware; pass nil middleware by giving a
// pass-through when caching is disabled.
func RegisterPublic(e *echo.Echo, h *handler.AuctionHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/auctions", h.List, cache)
	e.GET("/v1/auctions/:id", h.Detail)
	e.GET("/v1/categories", h.ListCategories, cache)
}

// RegisterProtected registers everything behind JWT auth. The rate limiter
// wraps only the write paths that move money: bids and purchases.
func RegisterProtected(e *echo.Echo, h *handler.AuctionHandler, likes *handler.LikeHandler, jwtSecret string, ratelimit echo.MiddlewareFunc) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))

	auth.POST("/auctions", h.Create)
	auth.POST("/auctions/:id/bids", h.PlaceBid, ratelimit)
	auth.POST("/auctions/:id/purchase", h.Purchase, ratelimit)
	auth.GET("/me/dashboard", h.Dashboard)

	auth.POST("/likes", likes.Add)
	auth.DELETE("/likes", likes.Remove)
	auth.GET("/me/likes", likes.List)
}
