package handlers

import (
	"fmt"
	"log"
	"strings"

	"groupbuy/internal/middleware"
	"groupbuy/internal/models"
	"groupbuy/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CampaignHandler handles HTTP requests for campaigns.
type CampaignHandler struct {
	service  *services.CampaignService
	validate *validator.Validate
}

// NewCampaignHandler creates a new CampaignHandler.
func NewCampaignHandler(service *services.CampaignService) *CampaignHandler {
	return &CampaignHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the campaign routes with the Fiber app.
func (h *CampaignHandler) RegisterRoutes(router fiber.Router) {
	routes := router.Group("/campaigns")
	routes.Get("/", h.HandleGetCampaigns)
	routes.Get("/:id", h.HandleGetCampaignByID)

	admin := routes.Group("", middleware.AdminRequired())
	admin.Post("/", h.HandleCreateCampaign)
	admin.Put("/:id", h.HandleUpdateCampaign)
	admin.Delete("/:id", h.HandleDeleteCampaign)
}

// HandleGetCampaigns retrieves all campaigns.
func (h *CampaignHandler) HandleGetCampaigns(c *fiber.Ctx) error {
	campaigns, err := h.service.GetAllCampaigns()
	if err != nil {
		log.Printf("Error getting all campaigns: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve campaigns",
			"error":   err.Error(),
		})
	}
	return c.JSON(campaigns)
}

// HandleGetCampaignByID retrieves a single campaign by its ID.
func (h *CampaignHandler) HandleGetCampaignByID(c *fiber.Ctx) error {
	campaignID := c.Params("id")
	campaign, err := h.service.GetCampaignByID(campaignID)
	if err != nil {
		log.Printf("Error getting campaign by ID %s: %v", campaignID, err)
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Campaign with ID %s not found", campaignID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve campaign",
			"error":   err.Error(),
		})
	}
	return c.JSON(campaign)
}

// HandleCreateCampaign creates a new campaign.
func (h *CampaignHandler) HandleCreateCampaign(c *fiber.Ctx) error {
	var campaign models.Campaign
	if err := c.BodyParser(&campaign); err != nil {
		log.Printf("Error parsing campaign body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(campaign); err != nil {
		return respondValidationErrors(c, err)
	}

	if err := h.service.CreateCampaign(&campaign); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(campaign)
}

// HandleUpdateCampaign updates an existing campaign.
func (h *CampaignHandler) HandleUpdateCampaign(c *fiber.Ctx) error {
	var campaign models.Campaign
	if err := c.BodyParser(&campaign); err != nil {
		log.Printf("Error parsing campaign body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	campaign.ID = c.Params("id")
	if err := h.validate.Struct(campaign); err != nil {
		return respondValidationErrors(c, err)
	}

	if err := h.service.UpdateCampaign(&campaign); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Campaign with ID %s not found", campaign.ID),
			})
		}
		return respondError(c, err)
	}
	return c.JSON(campaign)
}

// HandleDeleteCampaign deletes a campaign by its ID.
func (h *CampaignHandler) HandleDeleteCampaign(c *fiber.Ctx) error {
	campaignID := c.Params("id")
	if err := h.service.DeleteCampaign(campaignID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Campaign with ID %s not found", campaignID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete campaign",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Campaign %s deleted successfully", campaignID),
	})
}
