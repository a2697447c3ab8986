package controller

import (
	"io"

	"slotswap-api/core/constants"
	"slotswap-api/core/controller"
	"slotswap-api/core/errors"
	"slotswap-api/core/utils"
	"slotswap-api/modules/auth/dto"
	"slotswap-api/modules/auth/service"

	"github.com/labstack/echo/v4"
)

const maxAvatarBytes = 2 << 20 // 2 MiB

type AuthController struct {
	controller.BaseController
	service service.AuthServiceInterface
}

func NewAuthController(svc service.AuthServiceInterface) *AuthController {
	return &AuthController{
		BaseController: controller.NewBaseController(),
		service:        svc,
	}
}

func (c *AuthController) claims(ctx echo.Context) (*utils.TokenClaims, error) {
	tokenData := ctx.Get(constants.ContextTokenData)
	claims, ok := tokenData.(*utils.TokenClaims)
	if !ok || claims == nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "token data not found in context", nil)
	}
	return claims, nil
}

// Register godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "account"
// @Success 201 {object} controller.SuccessResponse{data=dto.AuthResponse}
// @Router /auth/register [post]
func (c *AuthController) Register(ctx echo.Context) error {
	var req dto.RegisterRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, appErr := c.service.Register(ctx.Request().Context(), &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.CreatedResponse(ctx, result, "Account created")
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "credentials"
// @Success 200 {object} controller.SuccessResponse{data=dto.AuthResponse}
// @Router /auth/login [post]
func (c *AuthController) Login(ctx echo.Context) error {
	var req dto.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, appErr := c.service.Login(ctx.Request().Context(), &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Logged in")
}

// Me godoc
// @Summary Current user profile
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} controller.SuccessResponse{data=dto.UserResponse}
// @Router /auth/me [get]
func (c *AuthController) Me(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	result, appErr := c.service.Me(ctx.Request().Context(), claims.UserID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Profile retrieved")
}

// Logout godoc
// @Summary Revoke the current access token
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} controller.SuccessResponse
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	token, _ := ctx.Get("access_token").(string)
	if appErr := c.service.Logout(ctx.Request().Context(), token, claims.ExpiresAt.Time); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Logged out")
}

// UploadAvatar godoc
// @Summary Upload an avatar image
// @Tags auth
// @Security BearerAuth
// @Accept mpfd
// @Produce json
// @Param file formData file true "image"
// @Success 200 {object} controller.SuccessResponse{data=dto.AvatarResponse}
// @Router /auth/avatar [post]
func (c *AuthController) UploadAvatar(ctx echo.Context) error {
	claims, err := c.claims(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Missing avatar file")
	}
	if fileHeader.Size > maxAvatarBytes {
		return c.BadRequest(errors.ErrInvalidInput, "Avatar must be smaller than 2 MiB")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return c.InternalServerError(errors.ErrInternalServer, "Failed to read file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxAvatarBytes))
	if err != nil {
		return c.InternalServerError(errors.ErrInternalServer, "Failed to read file")
	}

	result, appErr := c.service.UploadAvatar(ctx.Request().Context(), claims.UserID, fileHeader.Header.Get("Content-Type"), data)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Avatar updated")
}
