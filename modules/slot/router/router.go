package router

import (
	"slotswap-api/core/middleware"
	"slotswap-api/modules/slot/controller"

	"github.com/labstack/echo/v4"
)

type SlotRouter struct {
	controller *controller.SlotController
}

func NewSlotRouter(controller *controller.SlotController) *SlotRouter {
	return &SlotRouter{controller: controller}
}

func (r *SlotRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	events := g.Group("/events")
	events.Use(mw.AuthMiddleware())

	events.GET("", r.controller.GetMySlots)
	events.POST("", r.controller.CreateSlot)
	events.PUT("/:id", r.controller.UpdateSlot)
	events.PATCH("/:id/status", r.controller.ToggleStatus)
	events.DELETE("/:id", r.controller.DeleteSlot)
}
