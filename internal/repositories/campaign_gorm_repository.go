package repositories

import (
	"fmt"

	"groupbuy/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCampaignRepository is a GORM implementation of CampaignRepository.
type GORMCampaignRepository struct {
	db *gorm.DB
}

// NewGORMCampaignRepository creates a new instance of GORMCampaignRepository.
func NewGORMCampaignRepository(db *gorm.DB) *GORMCampaignRepository {
	return &GORMCampaignRepository{
		db: db,
	}
}

// GetAll retrieves all campaigns from the database.
func (r *GORMCampaignRepository) GetAll() ([]models.Campaign, error) {
	var campaigns []models.Campaign
	if err := r.db.Find(&campaigns).Error; err != nil {
		return nil, fmt.Errorf("failed to get all campaigns: %w", err)
	}
	return campaigns, nil
}

// GetByID retrieves a single campaign by its ID from the database.
func (r *GORMCampaignRepository) GetByID(id string) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.db.First(&campaign, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("campaign with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get campaign by ID %s: %w", id, err)
	}
	return &campaign, nil
}

// Create creates a new campaign in the database.
func (r *GORMCampaignRepository) Create(campaign *models.Campaign) error {
	if campaign.ID == "" {
		campaign.ID = uuid.New().String()
	}
	if err := r.db.Create(campaign).Error; err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

// Update updates an existing campaign in the database.
func (r *GORMCampaignRepository) Update(campaign *models.Campaign) error {
	res := r.db.Save(campaign)
	if res.Error != nil {
		return fmt.Errorf("failed to update campaign: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("campaign with ID %s not found for update", campaign.ID)
	}
	return nil
}

// Delete deletes a campaign by its ID from the database.
func (r *GORMCampaignRepository) Delete(id string) error {
	res := r.db.Delete(&models.Campaign{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete campaign: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("campaign with ID %s not found for deletion", id)
	}
	return nil
}

// AdjustStock changes available stock by delta, guarded against going negative.
func (r *GORMCampaignRepository) AdjustStock(id string, delta int) error {
	res := r.db.Model(&models.Campaign{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("failed to adjust stock for campaign %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("insufficient stock for campaign %s", id)
	}
	return nil
}
