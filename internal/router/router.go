// Package router wires the request pipeline: for every protected route the
// order is rate limiter -> auth gate -> validator -> handler. Rate limiting
// runs before authentication so unauthenticated floods are throttled too;
// public auth routes validate immediately, protected routes validate after
// the gate.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/soniahiltner/finance-tracker-sub001/internal/config"
	"github.com/soniahiltner/finance-tracker-sub001/internal/handler"
	"github.com/soniahiltner/finance-tracker-sub001/internal/middleware"
	"github.com/soniahiltner/finance-tracker-sub001/internal/ratelimit"
	"github.com/soniahiltner/finance-tracker-sub001/internal/validate"
)

// Deps carries everything route registration needs.
type Deps struct {
	Cfg   config.Config
	Auth  *handler.AuthHandler
	Tx    *handler.TransactionHandler
	Cats  *handler.CategoryHandler
	Goals *handler.SavingsGoalHandler
	Docs  *handler.DocumentHandler

	Users middleware.UserFinder // auth gate collaborator

	GeneralLimiter *ratelimit.Limiter
	AuthLimiter    *ratelimit.Limiter
	AILimiter      *ratelimit.Limiter
}

// Register mounts all routes on the Echo instance.
func Register(e *echo.Echo, d Deps) {
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	// Strict origin allowlist. Disallowed origins are rejected outright;
	// there is no permissive development fallback.
	if len(d.Cfg.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: d.Cfg.CORSOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
		}))
	}

	e.GET("/healthz", handler.Health)

	gate := middleware.Auth(d.Auth.Codec, d.Users)
	general := middleware.RateLimit(d.GeneralLimiter, "Too many requests, please try again later")
	aiLimit := middleware.RateLimit(d.AILimiter, "Too many AI requests, please try again later")
	authLimit := middleware.AuthRateLimit(d.AuthLimiter)

	api := e.Group("/api", general)

	// Public auth endpoints: throttle (failures only), then validate.
	authGroup := api.Group("/auth")
	authGroup.POST("/register", d.Auth.Register, authLimit, middleware.Validate(&validate.Register))
	authGroup.POST("/login", d.Auth.Login, authLimit, middleware.Validate(&validate.Login))

	// Protected auth endpoints: gate first, then validate.
	authGroup.GET("/me", d.Auth.Me, gate)
	authGroup.PUT("/profile", d.Auth.UpdateProfile, gate, middleware.Validate(&validate.UpdateProfile))
	authGroup.PUT("/password", d.Auth.UpdatePassword, gate, middleware.Validate(&validate.UpdatePassword))

	// Transactions. The stats route is registered before /:id so "stats"
	// is never captured as a document id.
	tx := api.Group("/transactions", gate)
	tx.GET("/stats", d.Tx.Stats, middleware.Validate(&validate.TransactionStats))
	tx.GET("", d.Tx.List, middleware.Validate(&validate.TransactionList))
	tx.POST("", d.Tx.Create, middleware.Validate(&validate.TransactionCreate))
	tx.GET("/:id", d.Tx.Get, middleware.Validate(&validate.IDParam))
	tx.PUT("/:id", d.Tx.Update, middleware.Validate(&validate.TransactionUpdate))
	tx.DELETE("/:id", d.Tx.Delete, middleware.Validate(&validate.IDParam))

	cats := api.Group("/categories", gate)
	cats.GET("", d.Cats.List)
	cats.POST("", d.Cats.Create, middleware.Validate(&validate.CategoryCreate))
	cats.PUT("/:id", d.Cats.Update, middleware.Validate(&validate.CategoryUpdate))
	cats.DELETE("/:id", d.Cats.Delete, middleware.Validate(&validate.IDParam))

	goals := api.Group("/savings-goals", gate)
	goals.GET("", d.Goals.List)
	goals.POST("", d.Goals.Create, middleware.Validate(&validate.SavingsGoalCreate))
	goals.GET("/:id", d.Goals.Get, middleware.Validate(&validate.IDParam))
	goals.PUT("/:id", d.Goals.Update, middleware.Validate(&validate.SavingsGoalUpdate))
	goals.PATCH("/:id/progress", d.Goals.Progress, middleware.Validate(&validate.SavingsGoalProgress))
	goals.DELETE("/:id", d.Goals.Delete, middleware.Validate(&validate.IDParam))

	// AI import sits behind its own, tighter policy in addition to the
	// general one.
	docs := api.Group("/documents", aiLimit, gate)
	docs.POST("/import", d.Docs.Import, middleware.Validate(&validate.DocumentImport))
}
