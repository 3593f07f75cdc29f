package ownership

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const identityKey = "identity"

// Identity is the caller resolved from a verified bearer token.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

var ErrNoIdentity = errors.New("no authenticated identity in context")

// SetIdentity stores the resolved caller on the request.
func SetIdentity(c *fiber.Ctx, id Identity) {
	c.Locals(identityKey, id)
}

// GetIdentity returns the caller stored by SetIdentity.
func GetIdentity(c *fiber.Ctx) (Identity, error) {
	id, ok := c.Locals(identityKey).(Identity)
	if !ok || id.ID == uuid.Nil {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}

// GetUserID extracts the caller's user id.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := GetIdentity(c)
	if err != nil {
		return uuid.Nil, err
	}
	return id.ID, nil
}
