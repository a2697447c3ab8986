package router

import (
	"slotswap-api/core/middleware"
	"slotswap-api/modules/auth/controller"

	"github.com/labstack/echo/v4"
)

type AuthRouter struct {
	controller *controller.AuthController
}

func NewAuthRouter(controller *controller.AuthController) *AuthRouter {
	return &AuthRouter{controller: controller}
}

func (r *AuthRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	auth := g.Group("/auth")

	auth.POST("/register", r.controller.Register)
	auth.POST("/login", r.controller.Login)

	auth.GET("/me", r.controller.Me, mw.AuthMiddleware())
	auth.POST("/logout", r.controller.Logout, mw.AuthMiddleware())
	auth.POST("/avatar", r.controller.UploadAvatar, mw.AuthMiddleware())
}
