package services

import (
	"groupbuy/internal/models"
	"groupbuy/internal/repositories"
)

// CampaignService handles business logic related to campaigns.
type CampaignService struct {
	repo repositories.CampaignRepository
}

// NewCampaignService creates a new CampaignService.
func NewCampaignService(repo repositories.CampaignRepository) *CampaignService {
	return &CampaignService{
		repo: repo,
	}
}

// GetAllCampaigns retrieves all campaigns.
func (s *CampaignService) GetAllCampaigns() ([]models.Campaign, error) {
	return s.repo.GetAll()
}

// GetCampaignByID retrieves a single campaign by its ID.
func (s *CampaignService) GetCampaignByID(id string) (*models.Campaign, error) {
	return s.repo.GetByID(id)
}

// CreateCampaign creates a new campaign.
func (s *CampaignService) CreateCampaign(campaign *models.Campaign) error {
	if campaign.Price <= 0 {
		return NewDomainError(CodeValidation, "campaign price must be positive")
	}
	if !campaign.Deadline.Before(campaign.ShippingDeadline) {
		return NewDomainError(CodeValidation, "shipping deadline must come after the order deadline")
	}
	return s.repo.Create(campaign)
}

// UpdateCampaign updates an existing campaign.
func (s *CampaignService) UpdateCampaign(campaign *models.Campaign) error {
	return s.repo.Update(campaign)
}

// DeleteCampaign deletes a campaign by its ID.
func (s *CampaignService) DeleteCampaign(id string) error {
	return s.repo.Delete(id)
}
