package main

import (
	"slotswap-api/core/logger"
	"slotswap-api/core/server"

	_ "slotswap-api/docs" // Swagger docs
)

// @title SlotSwap API
// @version 1.0
// @description Calendar slot swapping backend: offer your busy slots and negotiate trades with other users

// @contact.name API Support
// @contact.email support@slotswap.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:7070
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", err)
	}
}
