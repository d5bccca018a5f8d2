package handlers

import (
	"microwave/internal/logger"
	"microwave/internal/service"

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

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// live snapshot stream on the same port
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
	api := r.Group("/api/v1", h.operatorMiddleware)
	{
		api.GET("/operators/me", h.whoAmI)
		h.registerOvenRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerOvenRoutes(api *gin.RouterGroup) {
	oven := api.Group("/oven")
	{
		oven.GET("/state", h.getState)
		oven.GET("/foods", h.getFoods)

		oven.PUT("/time", h.setTime)
		oven.POST("/time/add", h.addTime)
		oven.POST("/time/subtract", h.subtractTime)
		oven.PUT("/food", h.selectFood)

		oven.POST("/start", h.start)
		oven.POST("/stop", h.stop)

		door := oven.Group("/door")
		door.POST("/open", h.openDoor)
		door.POST("/close", h.closeDoor)
		door.POST("/toggle", h.toggleDoor)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
