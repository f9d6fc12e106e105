package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/threadbazaar/threadbazaar-backend/pkg/db/models"
)

// Repository covers the reference reads checkout needs before and
// during the transaction.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindOrganization loads an organization row.
func (r *Repository) FindOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// ProductsByID loads products for the given ids, keyed by id.
func (r *Repository) ProductsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.Product, len(rows))
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// OrganizationsByID loads organizations for the given ids, keyed by id.
func (r *Repository) OrganizationsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Organization, error) {
	var rows []models.Organization
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.Organization, len(rows))
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// SizesByName resolves size rows by their display names.
func (r *Repository) SizesByName(ctx context.Context, names []string) (map[string]models.Size, error) {
	var rows []models.Size
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]models.Size, len(rows))
	for _, row := range rows {
		out[row.Name] = row
	}
	return out, nil
}
