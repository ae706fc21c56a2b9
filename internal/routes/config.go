package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/itzRohit45/Student-Progress-Management/internal/handlers"
)

func RegisterConfigRoutes(r gin.IRouter) {
	cfg := r.Group("/config")
	{
		cfg.GET("", handlers.GetAllConfigs)
		cfg.GET("/:name", handlers.GetConfig)
		cfg.PUT("/:name", handlers.UpdateConfig)
	}
}
