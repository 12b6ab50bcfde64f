package repositories

import (
	"fmt"
	"sync"

	"groupbuy/internal/models"

	"github.com/google/uuid"
)

// MockCampaignRepository is an in-memory implementation of CampaignRepository.
type MockCampaignRepository struct {
	campaigns map[string]models.Campaign
	mu        sync.RWMutex
}

// NewMockCampaignRepository creates a new instance of MockCampaignRepository.
func NewMockCampaignRepository() *MockCampaignRepository {
	return &MockCampaignRepository{
		campaigns: make(map[string]models.Campaign),
	}
}

// GetAll returns all campaigns.
func (r *MockCampaignRepository) GetAll() ([]models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Campaign, 0, len(r.campaigns))
	for _, c := range r.campaigns {
		list = append(list, c)
	}
	return list, nil
}

// GetByID returns a campaign by its ID.
func (r *MockCampaignRepository) GetByID(id string) (*models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.campaigns[id]
	if !ok {
		return nil, fmt.Errorf("campaign with ID %s not found", id)
	}
	return &c, nil
}

// Create adds a new campaign.
func (r *MockCampaignRepository) Create(campaign *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if campaign.ID == "" {
		campaign.ID = uuid.New().String()
	}
	r.campaigns[campaign.ID] = *campaign
	return nil
}

// Update replaces an existing campaign.
func (r *MockCampaignRepository) Update(campaign *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.campaigns[campaign.ID]; !ok {
		return fmt.Errorf("campaign with ID %s not found for update", campaign.ID)
	}
	r.campaigns[campaign.ID] = *campaign
	return nil
}

// Delete removes a campaign.
func (r *MockCampaignRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.campaigns[id]; !ok {
		return fmt.Errorf("campaign with ID %s not found for deletion", id)
	}
	delete(r.campaigns, id)
	return nil
}

// AdjustStock changes available stock by delta, guarded against going negative.
func (r *MockCampaignRepository) AdjustStock(id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.campaigns[id]
	if !ok {
		return fmt.Errorf("campaign with ID %s not found", id)
	}
	if c.Stock+delta < 0 {
		return fmt.Errorf("insufficient stock for campaign %s", id)
	}
	c.Stock += delta
	r.campaigns[id] = c
	return nil
}
