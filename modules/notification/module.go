package notification

import (
	"slotswap-api/core/database"
	"slotswap-api/core/middleware"
	"slotswap-api/core/queue"
	"slotswap-api/modules/notification/controller"
	"slotswap-api/modules/notification/repository"
	"slotswap-api/modules/notification/router"
	"slotswap-api/modules/notification/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Group, db database.IDatabase, q queue.Enqueuer, mw *middleware.Middleware) *service.NotificationService {
	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo, q)
	ctrl := controller.NewNotificationController(svc)

	router.NewNotificationRouter(ctrl).Register(e, mw)

	return svc
}
