package repositories

import "groupbuy/internal/models"

// CampaignRepository defines the interface for campaign data access.
type CampaignRepository interface {
	GetAll() ([]models.Campaign, error)
	GetByID(id string) (*models.Campaign, error)
	Create(campaign *models.Campaign) error
	Update(campaign *models.Campaign) error
	Delete(id string) error

	// AdjustStock changes available stock by delta (negative to reserve),
	// failing if the result would go below zero.
	AdjustStock(id string, delta int) error
}
