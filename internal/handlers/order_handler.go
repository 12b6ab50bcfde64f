package handlers

import (
	"fmt"
	"log"

	"groupbuy/internal/middleware"
	"groupbuy/internal/models"
	"groupbuy/internal/repositories"
	"groupbuy/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders, including the admin payment
// verification endpoint.
type OrderHandler struct {
	orderService *services.OrderService
	verification *services.VerificationService
	validate     *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService, verification *services.VerificationService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		verification: verification,
		validate:     validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleListOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Post("/:id/payments/:round/submit", h.HandleSubmitProof)

	admin := orderRoutes.Group("", middleware.AdminRequired())
	admin.Put("/:id", h.HandleUpdateShipping)
	admin.Put("/:id/payments/:round", h.HandleVerifyRound)
	admin.Delete("/:id", h.HandleDeleteOrder)
	admin.Delete("/", h.HandleBulkDeleteOrders)
}

// HandleListOrders lists orders matching the status/paymentStatus/search filters.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	filter := repositories.OrderFilter{
		Status:        models.OrderStatus(c.Query("status")),
		PaymentStatus: c.Query("paymentStatus"),
		Search:        c.Query("search"),
	}

	orders, err := h.orderService.ListOrders(filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.orderService.GetOrderByID(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// HandleCreateOrder places a new order against a campaign.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing order request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	// The order belongs to the authenticated user, not whatever the body says.
	if userID, ok := c.Locals("user_id").(string); ok && userID != "" {
		req.UserID = userID
	}

	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	order, err := h.orderService.CreateOrder(req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleUpdateShipping mutates an order's shipping status / tracking number.
func (h *OrderHandler) HandleUpdateShipping(c *fiber.Ctx) error {
	var req services.ShippingRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing shipping update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	order, err := h.orderService.UpdateShipping(c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// VerifyRoundRequest is the admin decision payload.
type VerifyRoundRequest struct {
	Status models.RoundStatus `json:"status" validate:"required,oneof=verified rejected"`
	Notes  string             `json:"notes"`
}

// HandleVerifyRound applies an admin verify/reject decision to one payment round.
func (h *OrderHandler) HandleVerifyRound(c *fiber.Ctx) error {
	var req VerifyRoundRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing verification body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	order, err := h.verification.VerifyRound(
		c.Params("id"),
		models.RoundName(c.Params("round")),
		req.Status,
		req.Notes,
	)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// HandleSubmitProof stores the customer's payment proof for one round.
func (h *OrderHandler) HandleSubmitProof(c *fiber.Ctx) error {
	var details models.PaymentDetails
	if err := c.BodyParser(&details); err != nil {
		log.Printf("Error parsing submission body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(details); err != nil {
		return respondValidationErrors(c, err)
	}

	order, err := h.orderService.SubmitRoundProof(
		c.Params("id"),
		models.RoundName(c.Params("round")),
		details,
	)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// HandleDeleteOrder removes a single order.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	if err := h.orderService.DeleteOrder(c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s deleted", c.Params("id")),
		"deleted": 1,
	})
}

// HandleBulkDeleteOrders removes every order in the given status.
func (h *OrderHandler) HandleBulkDeleteOrders(c *fiber.Ctx) error {
	count, err := h.orderService.BulkDeleteOrders(models.OrderStatus(c.Query("status")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"deleted": count,
	})
}

// respondValidationErrors renders validator failures field by field.
func respondValidationErrors(c *fiber.Ctx, err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code":    services.CodeValidation,
			"message": err.Error(),
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"code":    services.CodeValidation,
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
