package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/ownership"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Signup(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return writeServiceError(c, "signup", err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Signin(c *fiber.Ctx) error {
	var req dto.SigninRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Signin(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return writeServiceError(c, "signin", err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Refresh(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return writeServiceError(c, "refresh", err)
	}

	return c.JSON(resp)
}

// Signout revokes the given refresh token, or all of the caller's tokens when
// the body is empty.
func (h *AuthHandler) Signout(c *fiber.Ctx) error {
	userID, err := ownership.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.SignoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	if err := h.authService.Signout(c.UserContext(), userID, &req); err != nil {
		return writeServiceError(c, "signout", err)
	}

	return c.JSON(fiber.Map{"message": "Signed out successfully"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := ownership.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	user, err := h.authService.GetUser(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		return writeServiceError(c, "get user", err)
	}

	return c.JSON(user)
}
