package repositories

import (
	"context"
	"fmt"

	gormModels "skyline/opsboard/internal/models/gorm"

	"gorm.io/gorm"
)

// customerWriteColumns are the columns an import may change. is_active and
// created_at are owned elsewhere.
var customerWriteColumns = []string{"name", "short_name", "color", "sp_id", "guid", "source", "updated_at"}

type CustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new GORM-based customer repository
func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// WithTx binds the repository to an open transaction
func (r *CustomerRepository) WithTx(tx *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: tx}
}

// ListAll fetches every customer, inactive ones included, in id order
func (r *CustomerRepository) ListAll(ctx context.Context) ([]gormModels.Customer, error) {
	var customers []gormModels.Customer

	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&customers).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch customers: %w", err)
	}

	return customers, nil
}

// CreateBatch inserts new customers one row at a time so a failing row
// reports which name it was.
func (r *CustomerRepository) CreateBatch(ctx context.Context, customers []gormModels.Customer) error {
	for i := range customers {
		if err := r.db.WithContext(ctx).Create(&customers[i]).Error; err != nil {
			return fmt.Errorf("failed to create customer %q: %w", customers[i].Name, err)
		}
	}
	return nil
}

// Update writes the import-owned columns of an existing customer
func (r *CustomerRepository) Update(ctx context.Context, customer *gormModels.Customer) error {
	err := r.db.WithContext(ctx).
		Model(customer).
		Select(customerWriteColumns).
		Updates(customer).Error

	if err != nil {
		return fmt.Errorf("failed to update customer %d: %w", customer.ID, err)
	}

	return nil
}
