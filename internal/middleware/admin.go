package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/ownership"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminRequired lets a request through when any of these hold:
//  1. X-Admin-Token matches ADMIN_TOKEN
//  2. the caller's e-mail or id is in ADMIN_EMAILS / ADMIN_USER_IDS
//  3. the caller's user row has role "admin"
//
// It must run after Identity for checks 2 and 3.
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)
	adminUserIDs := parseCSV(cfg.AdminUserIDs)

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
			return c.Next()
		}

		id, err := ownership.GetIdentity(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if contains(adminEmails, strings.ToLower(id.Email)) || contains(adminUserIDs, id.ID.String()) {
			return c.Next()
		}

		var user models.User
		err = db.WithContext(c.UserContext()).Select("role").Where("id = ?", id.ID).Take(&user).Error
		if err == nil && user.Role == "admin" {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
