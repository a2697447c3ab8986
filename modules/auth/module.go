package auth

import (
	"slotswap-api/core/cache"
	"slotswap-api/core/database"
	"slotswap-api/core/middleware"
	"slotswap-api/core/storage"
	"slotswap-api/modules/auth/controller"
	"slotswap-api/modules/auth/repository"
	"slotswap-api/modules/auth/router"
	"slotswap-api/modules/auth/service"

	"github.com/labstack/echo/v4"
)

func Init(g *echo.Group, db database.IDatabase, c cache.Cache, store storage.ObjectStorage, mw *middleware.Middleware) repository.AuthRepositoryInterface {
	repo := repository.NewAuthRepository(db)
	svc := service.NewAuthService(repo, c, store)
	ctrl := controller.NewAuthController(svc)

	router.NewAuthRouter(ctrl).Register(g, mw)

	return repo
}
