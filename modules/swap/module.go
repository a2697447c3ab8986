package swap

import (
	"slotswap-api/core/database"
	"slotswap-api/core/middleware"
	slotrepo "slotswap-api/modules/slot/repository"
	"slotswap-api/modules/swap/controller"
	"slotswap-api/modules/swap/repository"
	"slotswap-api/modules/swap/router"
	"slotswap-api/modules/swap/service"

	"github.com/labstack/echo/v4"
)

// Init wires the swap module. It borrows the slot repository so slot rows are
// locked and updated inside the swap transaction, and the user directory and
// notifier from the auth and notification modules.
func Init(g *echo.Group, db database.IDatabase, slots slotrepo.SlotRepositoryInterface, users service.UserDirectory, notifier service.Notifier, mw *middleware.Middleware) {
	repo := repository.NewSwapRepository(db)
	svc := service.NewNegotiationService(repo, slots, users, notifier)
	ctrl := controller.NewSwapController(svc)

	router.NewSwapRouter(ctrl).Register(g, mw)
}
