package controller

import (
	"net/http"

	"slotswap-api/core/constants"
	"slotswap-api/core/controller"
	"slotswap-api/core/errors"
	"slotswap-api/core/utils"
	"slotswap-api/modules/swap/dto"
	"slotswap-api/modules/swap/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type SwapController struct {
	controller.BaseController
	service service.NegotiationServiceInterface
}

func NewSwapController(svc service.NegotiationServiceInterface) *SwapController {
	return &SwapController{
		BaseController: controller.NewBaseController(),
		service:        svc,
	}
}

func (c *SwapController) userID(ctx echo.Context) (uuid.UUID, error) {
	tokenData := ctx.Get(constants.ContextTokenData)
	claims, ok := tokenData.(*utils.TokenClaims)
	if !ok || claims == nil {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "token data not found in context", nil)
	}
	return claims.UserID, nil
}

// GetSwappableSlots godoc
// @Summary List swappable slots
// @Description Lists every slot currently offered for swapping by other users
// @Tags swaps
// @Security BearerAuth
// @Produce json
// @Success 200 {object} controller.SuccessResponse{data=dto.SwappableSlotsResponse}
// @Router /swaps/swappable-slots [get]
func (c *SwapController) GetSwappableSlots(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	result, appErr := c.service.GetSwappableSlots(ctx.Request().Context(), userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Swappable slots retrieved")
}

// ProposeSwap godoc
// @Summary Propose a swap
// @Description Offers one of your swappable slots in exchange for someone else's
// @Tags swaps
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ProposeSwapRequest true "offered and target slot ids"
// @Success 201 {object} controller.SuccessResponse{data=dto.SwapRequestResponse}
// @Failure 400 {object} controller.ErrorResponse
// @Router /swaps/requests [post]
func (c *SwapController) ProposeSwap(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	var req dto.ProposeSwapRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, appErr := c.service.ProposeSwap(ctx.Request().Context(), userID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.CreatedResponse(ctx, result, "Swap request created")
}

// RespondToSwap godoc
// @Summary Respond to a swap request
// @Description Accepts or rejects a pending swap request addressed to you
// @Tags swaps
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "swap request id"
// @Param request body dto.RespondSwapRequest true "accept or reject"
// @Success 200 {object} controller.SuccessResponse{data=dto.SwapRequestResponse}
// @Failure 403 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Failure 409 {object} controller.ErrorResponse
// @Router /swaps/requests/{id}/respond [post]
func (c *SwapController) RespondToSwap(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	requestID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request id")
	}

	var req dto.RespondSwapRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, appErr := c.service.RespondToSwap(ctx.Request().Context(), requestID, userID, req.Accept)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Swap request resolved")
}

// CancelSwap godoc
// @Summary Cancel a swap request
// @Description Withdraws one of your own pending swap requests
// @Tags swaps
// @Security BearerAuth
// @Produce json
// @Param id path string true "swap request id"
// @Success 204 "No Content"
// @Failure 403 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Failure 409 {object} controller.ErrorResponse
// @Router /swaps/requests/{id} [delete]
func (c *SwapController) CancelSwap(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	requestID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request id")
	}

	if appErr := c.service.CancelSwap(ctx.Request().Context(), requestID, userID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// GetMyRequests godoc
// @Summary List my swap requests
// @Description Lists swap requests involving the current user
// @Tags swaps
// @Security BearerAuth
// @Produce json
// @Param type query string false "direction filter" Enums(incoming, outgoing, all)
// @Success 200 {object} controller.SuccessResponse{data=dto.SwapRequestListResponse}
// @Router /swaps/my-requests [get]
func (c *SwapController) GetMyRequests(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	result, appErr := c.service.GetMyRequests(ctx.Request().Context(), userID, ctx.QueryParam("type"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Swap requests retrieved")
}
