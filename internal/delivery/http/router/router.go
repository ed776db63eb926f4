// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"watchtower/internal/delivery/http/middleware"
	"watchtower/internal/delivery/http/router/handler"
)

type RouterParams struct {
	fx.In

	AuthHandler        *handler.AuthHandler
	AnalysisHandler    *handler.AnalysisHandler
	StreamHandler      *handler.StreamHandler
	IdentityMiddleware *middleware.IdentityMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler        *handler.AuthHandler
	analysisHandler    *handler.AnalysisHandler
	streamHandler      *handler.StreamHandler
	identityMiddleware *middleware.IdentityMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:        params.AuthHandler,
		analysisHandler:    params.AnalysisHandler,
		streamHandler:      params.StreamHandler,
		identityMiddleware: params.IdentityMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Every route resolves the session cookie; anonymous is a valid outcome.
	e.Use(r.identityMiddleware.Resolve)

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/signup", r.authHandler.Signup)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/google", r.authHandler.FederatedLogin)
		authGroup.GET("/logout", r.authHandler.Logout)
	}

	// Identity routes; /me serves anonymous callers, profile edits do not.
	e.GET("/me", r.authHandler.Me)
	e.PUT("/users/:id", r.authHandler.UpdateProfile, r.identityMiddleware.RequireAuthenticated)

	// Analysis routes
	analysisGroup := e.Group("/analysis")
	{
		analysisGroup.POST("/ask", r.analysisHandler.Ask)
		analysisGroup.POST("/auto", r.analysisHandler.AutoAnalyze)
	}

	// Video relay routes
	videoGroup := e.Group("/video")
	{
		videoGroup.GET("/feed", r.streamHandler.Feed)
		videoGroup.POST("/stream/start", r.streamHandler.StartStream)
	}
}
