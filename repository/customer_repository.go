package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xtopay/checkout-backend/models"
)

// CustomerRepository defines data access for payers.
type CustomerRepository interface {
	UpsertByPhone(ctx context.Context, customer *models.Customer) error
}

// GormCustomerRepository implements CustomerRepository using GORM.
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository.
func NewGormCustomerRepository(db *gorm.DB) CustomerRepository {
	return &GormCustomerRepository{db: db}
}

// UpsertByPhone inserts the customer or, when the phone already exists,
// overwrites name and email. Runs as a single statement so concurrent
// upserts of one phone converge on one row; customer.ID is set from
// RETURNING either way.
func (r *GormCustomerRepository) UpsertByPhone(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "phone"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "email", "updated_at"}),
		}).
		Create(customer).Error
}
