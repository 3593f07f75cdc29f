package handlers

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/ownership"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ApplianceHandler struct {
	appliances *services.ApplianceService
}

func NewApplianceHandler(appliances *services.ApplianceService) *ApplianceHandler {
	return &ApplianceHandler{appliances: appliances}
}

func (h *ApplianceHandler) List(c *fiber.Ctx) error {
	actor, err := ownership.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	return h.list(c, &actor)
}

func (h *ApplianceHandler) Stats(c *fiber.Ctx) error {
	actor, err := ownership.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	return h.stats(c, &actor)
}

func (h *ApplianceHandler) Get(c *fiber.Ctx) error {
	actor, err := ownership.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return writeServiceError(c, "get appliance", services.ErrApplianceNotFound)
	}

	appliance, err := h.appliances.GetByID(c.UserContext(), &actor, id)
	if err != nil {
		return writeServiceError(c, "get appliance", err)
	}
	return c.JSON(appliance)
}

func (h *ApplianceHandler) Create(c *fiber.Ctx) error {
	actor, err := ownership.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateApplianceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	appliance, err := h.appliances.Create(c.UserContext(), &actor, req)
	if err != nil {
		return writeServiceError(c, "create appliance", err)
	}
	return c.Status(fiber.StatusCreated).JSON(appliance)
}

func (h *ApplianceHandler) Update(c *fiber.Ctx) error {
	actor, err := ownership.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return writeServiceError(c, "update appliance", services.ErrApplianceNotFound)
	}

	var req dto.UpdateApplianceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	appliance, err := h.appliances.Update(c.UserContext(), &actor, id, req)
	if err != nil {
		return writeServiceError(c, "update appliance", err)
	}
	return c.JSON(appliance)
}

func (h *ApplianceHandler) Delete(c *fiber.Ctx) error {
	actor, err := ownership.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	return h.delete(c, &actor)
}

// --- Child records ---

func (h *ApplianceHandler) AddSupportContact(c *fiber.Ctx) error {
	var req dto.CreateSupportContactRequest
	return h.addChild(c, "add support contact", &req, func(actor, id uuid.UUID) (*dto.Appliance, error) {
		return h.appliances.AddSupportContact(c.UserContext(), &actor, id, req)
	})
}

func (h *ApplianceHandler) AddMaintenanceTask(c *fiber.Ctx) error {
	var req dto.CreateMaintenanceTaskRequest
	return h.addChild(c, "add maintenance task", &req, func(actor, id uuid.UUID) (*dto.Appliance, error) {
		return h.appliances.AddMaintenanceTask(c.UserContext(), &actor, id, req)
	})
}

func (h *ApplianceHandler) AddLinkedDocument(c *fiber.Ctx) error {
	var req dto.CreateLinkedDocumentRequest
	return h.addChild(c, "add linked document", &req, func(actor, id uuid.UUID) (*dto.Appliance, error) {
		return h.appliances.AddLinkedDocument(c.UserContext(), &actor, id, req)
	})
}

// CompleteMaintenanceTask accepts an empty body, in which case the task is
// completed now.
func (h *ApplianceHandler) CompleteMaintenanceTask(c *fiber.Ctx) error {
	actor, err := ownership.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return writeServiceError(c, "complete maintenance task", services.ErrApplianceNotFound)
	}
	taskID, ok := pathID(c, "childId")
	if !ok {
		return writeServiceError(c, "complete maintenance task", services.ErrChildNotFound)
	}

	var req dto.CompleteMaintenanceTaskRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	appliance, err := h.appliances.CompleteMaintenanceTask(c.UserContext(), &actor, id, taskID, req)
	if err != nil {
		return writeServiceError(c, "complete maintenance task", err)
	}
	return c.JSON(appliance)
}

func (h *ApplianceHandler) RemoveSupportContact(c *fiber.Ctx) error {
	return h.removeChild(c, "remove support contact", h.appliances.RemoveSupportContact)
}

func (h *ApplianceHandler) RemoveMaintenanceTask(c *fiber.Ctx) error {
	return h.removeChild(c, "remove maintenance task", h.appliances.RemoveMaintenanceTask)
}

func (h *ApplianceHandler) RemoveLinkedDocument(c *fiber.Ctx) error {
	return h.removeChild(c, "remove linked document", h.appliances.RemoveLinkedDocument)
}

// --- Admin (unscoped) ---

func (h *ApplianceHandler) AdminList(c *fiber.Ctx) error {
	return h.list(c, nil)
}

func (h *ApplianceHandler) AdminStats(c *fiber.Ctx) error {
	return h.stats(c, nil)
}

func (h *ApplianceHandler) AdminDelete(c *fiber.Ctx) error {
	return h.delete(c, nil)
}

func (h *ApplianceHandler) list(c *fiber.Ctx, actor *uuid.UUID) error {
	appliances, err := h.appliances.List(c.UserContext(), actor, services.ListOptions{
		Search: c.Query("search"),
		Filter: c.Query("filter"),
	})
	if err != nil {
		return writeServiceError(c, "list appliances", err)
	}
	return c.JSON(appliances)
}

func (h *ApplianceHandler) stats(c *fiber.Ctx, actor *uuid.UUID) error {
	stats, err := h.appliances.Stats(c.UserContext(), actor)
	if err != nil {
		return writeServiceError(c, "appliance stats", err)
	}
	return c.JSON(stats)
}

func (h *ApplianceHandler) delete(c *fiber.Ctx, actor *uuid.UUID) error {
	id, ok := pathID(c, "id")
	if !ok {
		return writeServiceError(c, "delete appliance", services.ErrApplianceNotFound)
	}

	deleted, err := h.appliances.Delete(c.UserContext(), actor, id)
	if err != nil {
		return writeServiceError(c, "delete appliance", err)
	}
	if !deleted {
		return writeServiceError(c, "delete appliance", services.ErrApplianceNotFound)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ApplianceHandler) addChild(c *fiber.Ctx, op string, req interface{}, add func(actor, id uuid.UUID) (*dto.Appliance, error)) error {
	actor, err := ownership.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return writeServiceError(c, op, services.ErrApplianceNotFound)
	}
	if err := c.BodyParser(req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	appliance, err := add(actor, id)
	if err != nil {
		return writeServiceError(c, op, err)
	}
	return c.Status(fiber.StatusCreated).JSON(appliance)
}

type removeFunc func(ctx context.Context, actor *uuid.UUID, applianceID, childID uuid.UUID) (*dto.Appliance, error)

func (h *ApplianceHandler) removeChild(c *fiber.Ctx, op string, remove removeFunc) error {
	actor, err := ownership.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return writeServiceError(c, op, services.ErrApplianceNotFound)
	}
	childID, ok := pathID(c, "childId")
	if !ok {
		return writeServiceError(c, op, services.ErrChildNotFound)
	}

	appliance, err := remove(c.UserContext(), &actor, id, childID)
	if err != nil {
		return writeServiceError(c, op, err)
	}
	return c.JSON(appliance)
}

// pathID parses a uuid route parameter. Malformed ids cannot match any row,
// so callers treat them as not found.
func pathID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
