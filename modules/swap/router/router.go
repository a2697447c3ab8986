package router

import (
	"slotswap-api/core/middleware"
	"slotswap-api/modules/swap/controller"

	"github.com/labstack/echo/v4"
)

type SwapRouter struct {
	controller *controller.SwapController
}

func NewSwapRouter(controller *controller.SwapController) *SwapRouter {
	return &SwapRouter{controller: controller}
}

func (r *SwapRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	swaps := g.Group("/swaps")
	swaps.Use(mw.AuthMiddleware())

	swaps.GET("/swappable-slots", r.controller.GetSwappableSlots)
	swaps.GET("/my-requests", r.controller.GetMyRequests)
	swaps.POST("/requests", r.controller.ProposeSwap)
	swaps.POST("/requests/:id/respond", r.controller.RespondToSwap)
	swaps.DELETE("/requests/:id", r.controller.CancelSwap)
}
