package handlers

import (
	"groupbuy/internal/models"
	"groupbuy/internal/services"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler exposes the notification read model.
type NotificationHandler struct {
	service *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		service: service,
	}
}

// RegisterRoutes registers the notification routes with the Fiber app.
func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	routes := router.Group("/notifications")
	routes.Get("/", h.HandleList)
	routes.Patch("/read-all", h.HandleMarkAllRead)
	routes.Patch("/:id/read", h.HandleMarkRead)
	routes.Delete("/:id", h.HandleDelete)
}

// recipient resolves who the caller reads notifications as: admins share the
// admin inbox, customers see their own.
func recipient(c *fiber.Ctx) string {
	if role, _ := c.Locals("role").(string); role == "admin" {
		return models.RecipientAdmins
	}
	userID, _ := c.Locals("user_id").(string)
	return userID
}

// HandleList returns the caller's notifications, newest first.
func (h *NotificationHandler) HandleList(c *fiber.Ctx) error {
	notifications, err := h.service.ListForRecipient(recipient(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(notifications)
}

// HandleMarkRead flags one notification as read.
func (h *NotificationHandler) HandleMarkRead(c *fiber.Ctx) error {
	if err := h.service.MarkRead(c.Params("id"), recipient(c)); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Notification not found",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

// HandleMarkAllRead flags all of the caller's notifications as read.
func (h *NotificationHandler) HandleMarkAllRead(c *fiber.Ctx) error {
	updated, err := h.service.MarkAllRead(recipient(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"updated": updated})
}

// HandleDelete removes one notification.
func (h *NotificationHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Params("id"), recipient(c)); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Notification not found",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Notification deleted"})
}
