package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/resources")
	group.Use(authMiddleware)
	{
		group.GET("/:id/slots", h.ListByResource)
	}

	admin := group.Group("")
	admin.Use(adminMiddleware)
	{
		admin.POST("/:id/materialize", h.Materialize)
	}
}
