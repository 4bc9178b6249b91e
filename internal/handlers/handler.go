package handlers

import (
	"chickencoop_bridge/internal/logger"
	"chickencoop_bridge/internal/metrics"
	"chickencoop_bridge/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// Live state stream, same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerCoopRoutes(api)
		h.registerHistoryRoutes(api)
	}
}

func (h *Handler) registerCoopRoutes(api *gin.RouterGroup) {
	coop := api.Group("/coop")
	{
		coop.GET("/state", h.getState)
		coop.GET("/status", h.getStatus)
		coop.GET("/statuses", h.getStatuses)

		// Commands are forwarded to the device; state changes only on its echo.
		coop.POST("/mode", h.setMode)
		coop.POST("/field", h.setField)
		coop.POST("/manual", h.manualControl)
		coop.POST("/feeder", h.feederControl)

		coop.POST("/stats", h.recordCoopStats)
		coop.POST("/sales", h.recordSales)
	}
}

func (h *Handler) registerHistoryRoutes(api *gin.RouterGroup) {
	history := api.Group("/history")
	{
		history.GET("/readings", h.listReadings)
		history.GET("/coop-stats", h.listCoopStats)
		history.GET("/sales", h.listSales)
	}
}
