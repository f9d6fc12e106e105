package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/threadbazaar/threadbazaar-backend/internal/inventory"
	"github.com/threadbazaar/threadbazaar-backend/pkg/db/models"
	"github.com/threadbazaar/threadbazaar-backend/pkg/enums"
	pkgerrors "github.com/threadbazaar/threadbazaar-backend/pkg/errors"
	"github.com/threadbazaar/threadbazaar-backend/pkg/packs"
	"github.com/threadbazaar/threadbazaar-backend/pkg/pagination"
	"github.com/threadbazaar/threadbazaar-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes catalog management for wholesalers plus the public
// read surface.
type Service interface {
	CreateProduct(ctx context.Context, ownerOrgID uuid.UUID, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, ownerOrgID, productID uuid.UUID, input UpdateProductInput) (*models.Product, error)
	ArchiveProduct(ctx context.Context, ownerOrgID, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDetail, error)
	ListOwnerProducts(ctx context.Context, ownerOrgID uuid.UUID, params pagination.Params, filters ProductListFilters) (*ProductListResult, error)
	ListPublicProducts(ctx context.Context, params pagination.Params, filters ProductListFilters) (*ProductListResult, error)
	AddStock(ctx context.Context, ownerOrgID, productID uuid.UUID, intake StockIntake) error
	ReplaceMoqOptions(ctx context.Context, ownerOrgID, productID uuid.UUID, configs []types.PackConfig) error
	ListAvailablePacks(ctx context.Context, productID uuid.UUID) ([]PackOption, error)
	Dashboard(ctx context.Context, ownerOrgID uuid.UUID) (*DashboardCounts, error)
}

type service struct {
	tx     txRunner
	repo   *Repository
	ledger inventory.Repository
}

// NewService builds the catalog service.
func NewService(tx txRunner, repo *Repository, ledger inventory.Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	return &service{tx: tx, repo: repo, ledger: ledger}, nil
}

func (s *service) CreateProduct(ctx context.Context, ownerOrgID uuid.UUID, input CreateProductInput) (*models.Product, error) {
	if ownerOrgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner organization id required")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if !input.WholesalePrice.IsPositive() || !input.RetailPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices must be positive")
	}

	owner, err := s.repo.FindOrganization(ctx, ownerOrgID)
	if err != nil {
		return nil, notFoundOr(err, "organization not found")
	}
	if owner.OrgType != enums.OrgTypeWholesaler {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only wholesalers can list products")
	}

	category, err := s.repo.FindCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, notFoundOr(err, "category not found")
	}

	var created *models.Product
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		sku, err := NextSKU(ctx, tx, owner.Name, category.Name)
		if err != nil {
			return err
		}

		product := &models.Product{
			ID:             uuid.New(),
			OwnerOrgID:     ownerOrgID,
			CategoryID:     category.ID,
			SKU:            sku,
			Name:           input.Name,
			Description:    input.Description,
			WholesalePrice: input.WholesalePrice,
			RetailPrice:    input.RetailPrice,
			IsActive:       true,
		}
		created, err = repo.CreateProduct(ctx, product)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) UpdateProduct(ctx context.Context, ownerOrgID, productID uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.ownedProduct(ctx, ownerOrgID, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be blank")
		}
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.WholesalePrice != nil {
		if !input.WholesalePrice.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "wholesale price must be positive")
		}
		product.WholesalePrice = *input.WholesalePrice
	}
	if input.RetailPrice != nil {
		if !input.RetailPrice.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "retail price must be positive")
		}
		product.RetailPrice = *input.RetailPrice
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	return s.repo.UpdateProduct(ctx, product)
}

func (s *service) ArchiveProduct(ctx context.Context, ownerOrgID, productID uuid.UUID) error {
	if _, err := s.ownedProduct(ctx, ownerOrgID, productID); err != nil {
		return err
	}
	return s.repo.ArchiveProduct(ctx, productID)
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDetail, error) {
	product, err := s.repo.FindDetail(ctx, productID)
	if err != nil {
		return nil, notFoundOr(err, "product not found")
	}

	stock, err := s.ledger.AggregateStock(ctx, productID)
	if err != nil {
		return nil, err
	}

	available, err := s.ListAvailablePacks(ctx, productID)
	if err != nil {
		return nil, err
	}

	return &ProductDetail{
		Product:        product,
		Stock:          stock,
		AvailablePacks: available,
	}, nil
}

func (s *service) ListOwnerProducts(ctx context.Context, ownerOrgID uuid.UUID, params pagination.Params, filters ProductListFilters) (*ProductListResult, error) {
	if ownerOrgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner organization id required")
	}
	return s.repo.ListByOwner(ctx, ownerOrgID, params, filters)
}

func (s *service) ListPublicProducts(ctx context.Context, params pagination.Params, filters ProductListFilters) (*ProductListResult, error) {
	return s.repo.ListPublic(ctx, params, filters)
}

func (s *service) AddStock(ctx context.Context, ownerOrgID, productID uuid.UUID, intake StockIntake) error {
	if len(intake.Quantities) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock intake requires at least one size")
	}
	if _, err := s.ownedProduct(ctx, ownerOrgID, productID); err != nil {
		return err
	}

	sizeIDs := make([]uuid.UUID, 0, len(intake.Quantities))
	for sizeID, qty := range intake.Quantities {
		if qty < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "batch quantities must be at least 1")
		}
		sizeIDs = append(sizeIDs, sizeID)
	}

	sizes, err := s.repo.SizesByID(ctx, sizeIDs)
	if err != nil {
		return err
	}

	batches := make([]models.SizeStock, 0, len(intake.Quantities))
	for sizeID, qty := range intake.Quantities {
		if _, ok := sizes[sizeID]; !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("size %s not found", sizeID))
		}
		batches = append(batches, models.SizeStock{
			ID:        uuid.New(),
			ProductID: productID,
			SizeID:    sizeID,
			Quantity:  qty,
			BatchRef:  intake.BatchRef,
		})
	}

	return s.repo.AddStockBatches(ctx, batches)
}

// ReplaceMoqOptions swaps the product's pack set. All-zero
// configurations are dropped rather than persisted.
func (s *service) ReplaceMoqOptions(ctx context.Context, ownerOrgID, productID uuid.UUID, configs []types.PackConfig) error {
	if _, err := s.ownedProduct(ctx, ownerOrgID, productID); err != nil {
		return err
	}

	options := make([]models.MoqOption, 0, len(configs))
	for _, cfg := range configs {
		for size, count := range cfg {
			if count < 0 {
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("pack count for size %s cannot be negative", size))
			}
		}
		if cfg.IsEmpty() {
			continue
		}
		options = append(options, models.MoqOption{
			ID:        uuid.New(),
			ProductID: productID,
			Config:    cfg,
		})
	}

	return s.repo.ReplaceMoqOptions(ctx, productID, options)
}

// ListAvailablePacks returns the packs current stock can cover, in
// configuration creation order.
func (s *service) ListAvailablePacks(ctx context.Context, productID uuid.UUID) ([]PackOption, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, notFoundOr(err, "product not found")
	}

	options, err := s.repo.ListMoqOptions(ctx, productID)
	if err != nil {
		return nil, err
	}

	sizeOrder, err := s.repo.CategorySizeOrder(ctx, product.CategoryID)
	if err != nil {
		return nil, err
	}

	result := make([]PackOption, 0, len(options))
	for _, option := range options {
		ok, err := s.ledger.CanFulfill(ctx, productID, option.Config)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		result = append(result, PackOption{
			ID:            option.ID,
			Label:         packs.FormatLabel(option.Config, sizeOrder),
			TotalQuantity: option.Config.TotalPieces(),
			Ratio:         option.Config,
		})
	}
	return result, nil
}

func (s *service) Dashboard(ctx context.Context, ownerOrgID uuid.UUID) (*DashboardCounts, error) {
	if ownerOrgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner organization id required")
	}
	return s.repo.CountDashboard(ctx, ownerOrgID)
}

func (s *service) ownedProduct(ctx context.Context, ownerOrgID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, notFoundOr(err, "product not found")
	}
	if product.OwnerOrgID != ownerOrgID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to a different organization")
	}
	return product, nil
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, msg)
	}
	return err
}
