package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/xtopay/checkout-backend/models"
)

// PaymentRepository writes payment rows. The API never calls it; payments
// arrive from the settlement side or the seed tool.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
}

// GormPaymentRepository implements PaymentRepository using GORM.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository.
func NewGormPaymentRepository(db *gorm.DB) PaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}
