package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/schedule")
	group.Use(authMiddleware)
	{
		group.GET("/resources/:id/rules", h.ListRules)
		group.GET("/resources/:id/blackouts", h.ListBlackouts)
	}

	admin := group.Group("")
	admin.Use(adminMiddleware)
	{
		admin.POST("/rules", h.CreateRule)
		admin.DELETE("/rules/:id", h.DeleteRule)
		admin.POST("/blackouts", h.CreateBlackout)
		admin.DELETE("/blackouts/:id", h.DeleteBlackout)
	}
}
