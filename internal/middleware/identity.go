package middleware

import (
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/ownership"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity turns the verified token left by JWTProtected into an
// ownership.Identity. Requests whose subject is not a user id are rejected.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := identityFromToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		ownership.SetIdentity(c, id)
		return c.Next()
	}
}

func identityFromToken(c *fiber.Ctx) (ownership.Identity, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return ownership.Identity{}, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ownership.Identity{}, false
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil || userID == uuid.Nil {
		return ownership.Identity{}, false
	}

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	return ownership.Identity{ID: userID, Email: email, Name: name}, true
}
