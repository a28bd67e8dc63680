// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"reportshare/config"
	"reportshare/internal/delivery/api/middleware"
	"reportshare/internal/delivery/api/router/handler"
	"reportshare/internal/domain/constants"
	"reportshare/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	ShareHandler   *handler.ShareHandler
	WebhookHandler *handler.WebhookHandler
	ReportHandler  *handler.ReportHandler
	AuthMiddleware *middleware.AuthMiddleware
	Config         *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	shareHandler   *handler.ShareHandler
	webhookHandler *handler.WebhookHandler
	reportHandler  *handler.ReportHandler
	authMiddleware *middleware.AuthMiddleware
	config         *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		shareHandler:   params.ShareHandler,
		webhookHandler: params.WebhookHandler,
		reportHandler:  params.ReportHandler,
		authMiddleware: params.AuthMiddleware,
		config:         params.Config,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	// Public magic link verification
	shareGroup := e.Group(constants.ShareLinkPathPrefix)
	{
		shareGroup.POST(":subjectId/access", r.shareHandler.VerifyAccess)
	}

	// CRM webhooks authenticate with a shared secret
	webhookGroup := e.Group("/webhooks")
	webhookGroup.Use(r.authMiddleware.RequireWebhookSecret)
	{
		webhookGroup.POST("/crm", r.webhookHandler.HandleCRMTrigger)
	}

	// API v1 routes
	apiV1 := e.Group("/api/v1")
	apiV1.Use(r.authMiddleware.Authenticate) // All API v1 routes require authentication

	reportsGroup := apiV1.Group("/reports")
	{
		reportsGroup.POST("", r.reportHandler.GenerateReport)
		reportsGroup.GET("/:id", r.reportHandler.GetReport)
		reportsGroup.POST("/:id/links", r.reportHandler.RotateLink)
		reportsGroup.GET("/:id/links", r.reportHandler.ListLinks)
		reportsGroup.POST("/:id/links/revoke", r.reportHandler.RevokeLinks, r.authMiddleware.RequireRole(entity.RoleAdmin))
	}
}
