package controller

import (
	"slotswap-api/core/constants"
	"slotswap-api/core/controller"
	"slotswap-api/core/errors"
	"slotswap-api/core/utils"
	"slotswap-api/modules/slot/dto"
	"slotswap-api/modules/slot/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type SlotController struct {
	controller.BaseController
	service service.SlotServiceInterface
}

func NewSlotController(svc service.SlotServiceInterface) *SlotController {
	return &SlotController{
		BaseController: controller.NewBaseController(),
		service:        svc,
	}
}

func (c *SlotController) userID(ctx echo.Context) (uuid.UUID, error) {
	tokenData := ctx.Get(constants.ContextTokenData)
	claims, ok := tokenData.(*utils.TokenClaims)
	if !ok || claims == nil {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "token data not found in context", nil)
	}
	return claims.UserID, nil
}

// GetMySlots godoc
// @Summary List my slots
// @Tags events
// @Security BearerAuth
// @Produce json
// @Success 200 {object} controller.SuccessResponse{data=dto.SlotListResponse}
// @Router /events [get]
func (c *SlotController) GetMySlots(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	result, appErr := c.service.GetMySlots(ctx.Request().Context(), userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Slots retrieved")
}

// CreateSlot godoc
// @Summary Create a slot
// @Tags events
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateSlotRequest true "slot"
// @Success 201 {object} controller.SuccessResponse{data=dto.SlotResponse}
// @Router /events [post]
func (c *SlotController) CreateSlot(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	var req dto.CreateSlotRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, appErr := c.service.CreateSlot(ctx.Request().Context(), userID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.CreatedResponse(ctx, result, "Slot created")
}

// UpdateSlot godoc
// @Summary Update a slot's title and times
// @Tags events
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "slot id"
// @Param request body dto.UpdateSlotRequest true "slot"
// @Success 200 {object} controller.SuccessResponse{data=dto.SlotResponse}
// @Router /events/{id} [put]
func (c *SlotController) UpdateSlot(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	slotID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid slot ID")
	}

	var req dto.UpdateSlotRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, appErr := c.service.UpdateSlot(ctx.Request().Context(), slotID, userID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Slot updated")
}

// ToggleStatus godoc
// @Summary Toggle a slot between BUSY and SWAPPABLE
// @Tags events
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "slot id"
// @Param request body dto.ToggleStatusRequest true "new status"
// @Success 200 {object} controller.SuccessResponse{data=dto.SlotResponse}
// @Router /events/{id}/status [patch]
func (c *SlotController) ToggleStatus(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	slotID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid slot ID")
	}

	var req dto.ToggleStatusRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, appErr := c.service.ToggleAvailability(ctx.Request().Context(), slotID, userID, req.Status)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Slot status updated")
}

// DeleteSlot godoc
// @Summary Delete a slot
// @Tags events
// @Security BearerAuth
// @Produce json
// @Param id path string true "slot id"
// @Success 200 {object} controller.SuccessResponse
// @Router /events/{id} [delete]
func (c *SlotController) DeleteSlot(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	slotID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid slot ID")
	}

	if appErr := c.service.DeleteSlot(ctx.Request().Context(), slotID, userID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Slot deleted")
}
