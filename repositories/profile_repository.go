package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/torquepoint/autoshop-api/models"
)

// GormProfileRepository implements ProfileRepository over GORM.
type GormProfileRepository struct {
	db *gorm.DB
}

func (r *GormProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *GormProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (r *GormProfileRepository) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, id).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

// Update applies updates and returns the committed record.
func (r *GormProfileRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.Profile, error) {
	if err := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, translate(err)
	}
	return r.GetByID(ctx, id)
}

func (r *GormProfileRepository) ListByRole(ctx context.Context, role string) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := r.db.WithContext(ctx).Where("role = ?", role).Order("created_at").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}
