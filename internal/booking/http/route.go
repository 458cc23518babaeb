package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	bookings := g.Group("/bookings")
	bookings.Use(authMiddleware)
	{
		bookings.GET("", h.List)
		bookings.GET("/:id", h.Get)
		bookings.POST("", h.Create)
		bookings.DELETE("/:id", h.Cancel)
	}

	slots := g.Group("/slots")
	slots.Use(authMiddleware)
	{
		slots.GET("/:id", h.SlotStatus)
		slots.GET("/:id/waitlist", h.SlotWaitlist)
	}
}
