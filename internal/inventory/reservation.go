package inventory

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/threadbazaar/threadbazaar-backend/pkg/db/models"
	pkgerrors "github.com/threadbazaar/threadbazaar-backend/pkg/errors"
)

// ReservationRequest asks for qty units of one size of one product.
type ReservationRequest struct {
	ProductID uuid.UUID
	SizeID    uuid.UUID
	SizeName  string
	Qty       int
}

// Shortfall describes one size that could not be covered.
type Shortfall struct {
	ProductID uuid.UUID `json:"product_id"`
	SizeName  string    `json:"size"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

type sizeKey struct {
	productID uuid.UUID
	sizeID    uuid.UUID
}

type sizeNeed struct {
	key      sizeKey
	sizeName string
	qty      int
}

// ReserveStock deducts the requested quantities inside the caller's
// transaction. Requests for the same (product, size) are merged, then
// locked in ascending (product id, size id) order so two overlapping
// checkouts never deadlock. If any size falls short the full shortfall
// list is returned as one InsufficientStock error and nothing is
// deducted; the caller's rollback discards any partial state anyway.
//
// Batch rows are consumed oldest first. A row drained to zero is
// deleted so availability views never see zero-quantity rows.
func ReserveStock(ctx context.Context, tx *gorm.DB, requests []ReservationRequest) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction handle required")
	}

	needs, err := mergeRequests(requests)
	if err != nil {
		return err
	}

	locked := make(map[sizeKey][]models.SizeStock, len(needs))
	var shortfalls []Shortfall

	for _, need := range needs {
		query := tx.WithContext(ctx).
			Where("product_id = ? AND size_id = ?", need.key.productID, need.key.sizeID).
			Order("created_at ASC, id ASC")
		// sqlite has no row locks; its single writer makes them moot in tests
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var rows []models.SizeStock
		if err := query.Find(&rows).Error; err != nil {
			return fmt.Errorf("locking stock rows: %w", err)
		}

		available := 0
		for _, row := range rows {
			available += row.Quantity
		}
		if available < need.qty {
			shortfalls = append(shortfalls, Shortfall{
				ProductID: need.key.productID,
				SizeName:  need.sizeName,
				Requested: need.qty,
				Available: available,
			})
			continue
		}
		locked[need.key] = rows
	}

	if len(shortfalls) > 0 {
		msg := fmt.Sprintf("insufficient stock for size %s: requested %d, available %d",
			shortfalls[0].SizeName, shortfalls[0].Requested, shortfalls[0].Available)
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, msg).WithDetails(shortfalls)
	}

	for _, need := range needs {
		remaining := need.qty
		for _, row := range locked[need.key] {
			if remaining == 0 {
				break
			}
			take := row.Quantity
			if take > remaining {
				take = remaining
			}
			remaining -= take

			if take == row.Quantity {
				if err := tx.WithContext(ctx).Delete(&models.SizeStock{}, "id = ?", row.ID).Error; err != nil {
					return fmt.Errorf("removing drained batch: %w", err)
				}
				continue
			}
			if err := tx.WithContext(ctx).
				Model(&models.SizeStock{}).
				Where("id = ?", row.ID).
				Update("quantity", row.Quantity-take).Error; err != nil {
				return fmt.Errorf("deducting stock: %w", err)
			}
		}
	}

	return nil
}

func mergeRequests(requests []ReservationRequest) ([]sizeNeed, error) {
	if len(requests) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no reservation requests")
	}

	merged := make(map[sizeKey]*sizeNeed, len(requests))
	for _, req := range requests {
		if req.ProductID == uuid.Nil || req.SizeID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation requires product and size ids")
		}
		if req.Qty < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("reservation quantity must be at least 1 for size %s", req.SizeName))
		}
		key := sizeKey{productID: req.ProductID, sizeID: req.SizeID}
		if need, ok := merged[key]; ok {
			need.qty += req.Qty
			continue
		}
		merged[key] = &sizeNeed{key: key, sizeName: req.SizeName, qty: req.Qty}
	}

	needs := make([]sizeNeed, 0, len(merged))
	for _, need := range merged {
		needs = append(needs, *need)
	}
	sort.Slice(needs, func(i, j int) bool {
		a, b := needs[i].key, needs[j].key
		if cmp := bytes.Compare(a.productID[:], b.productID[:]); cmp != 0 {
			return cmp < 0
		}
		return bytes.Compare(a.sizeID[:], b.sizeID[:]) < 0
	})
	return needs, nil
}
