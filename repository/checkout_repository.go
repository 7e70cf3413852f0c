package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/xtopay/checkout-backend/models"
)

// CheckoutRepository defines data access for checkouts.
type CheckoutRepository interface {
	Create(ctx context.Context, checkout *models.Checkout) error
	FindByClientReference(ctx context.Context, clientReference string) (*models.Checkout, error)
	Cancel(ctx context.Context, clientReference string, at time.Time) (int64, error)
}

// GormCheckoutRepository implements CheckoutRepository using GORM.
type GormCheckoutRepository struct {
	db *gorm.DB
}

// NewGormCheckoutRepository creates a new GormCheckoutRepository.
func NewGormCheckoutRepository(db *gorm.DB) CheckoutRepository {
	return &GormCheckoutRepository{db: db}
}

func (r *GormCheckoutRepository) Create(ctx context.Context, checkout *models.Checkout) error {
	return r.db.WithContext(ctx).Omit("Payments").Create(checkout).Error
}

// FindByClientReference loads the checkout together with its payments,
// oldest first, so Payments[0] is the first payment made.
func (r *GormCheckoutRepository) FindByClientReference(ctx context.Context, clientReference string) (*models.Checkout, error) {
	var checkout models.Checkout
	err := r.db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("paid_at ASC, id ASC")
		}).
		Where("client_reference = ?", clientReference).
		First(&checkout).Error
	if err != nil {
		return nil, err
	}
	return &checkout, nil
}

// Cancel marks every checkout with the reference as cancelled regardless of
// its current status and reports how many rows matched.
func (r *GormCheckoutRepository) Cancel(ctx context.Context, clientReference string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Checkout{}).
		Where("client_reference = ?", clientReference).
		Updates(map[string]interface{}{
			"status":       models.CheckoutStatusCancelled,
			"cancelled_at": at,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
