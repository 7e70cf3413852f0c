package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/xtopay/checkout-backend/models"
)

// BusinessRepository defines data access for merchant accounts.
type BusinessRepository interface {
	FindByBusinessID(ctx context.Context, businessID string) (*models.Business, error)
	Create(ctx context.Context, business *models.Business) error
}

// GormBusinessRepository implements BusinessRepository using GORM.
type GormBusinessRepository struct {
	db *gorm.DB
}

// NewGormBusinessRepository creates a new GormBusinessRepository.
func NewGormBusinessRepository(db *gorm.DB) BusinessRepository {
	return &GormBusinessRepository{db: db}
}

// FindByBusinessID returns gorm.ErrRecordNotFound when no row matches.
func (r *GormBusinessRepository) FindByBusinessID(ctx context.Context, businessID string) (*models.Business, error) {
	var business models.Business
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		First(&business).Error
	if err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *GormBusinessRepository) Create(ctx context.Context, business *models.Business) error {
	return r.db.WithContext(ctx).Create(business).Error
}
