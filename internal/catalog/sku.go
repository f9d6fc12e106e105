package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/threadbazaar/threadbazaar-backend/pkg/db/models"
)

const (
	ownerCodeLen    = 3
	categoryCodeMax = 4
)

// OwnerCode derives the 3-letter SKU prefix from an organization name.
// Short names are padded with X so the prefix width is stable.
func OwnerCode(name string) string {
	code := lettersOnly(name, ownerCodeLen)
	for len(code) < ownerCodeLen {
		code += "X"
	}
	return code
}

// CategoryCode derives the category segment, up to 4 letters.
func CategoryCode(name string) string {
	code := lettersOnly(name, categoryCodeMax)
	if code == "" {
		code = "GEN"
	}
	return code
}

func lettersOnly(value string, max int) string {
	var b strings.Builder
	for _, r := range value {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		if b.Len() >= max {
			break
		}
	}
	return b.String()
}

// NextSKU allocates the next SKU for an owner and category pair inside
// the caller's transaction. The sequence is a persistent high-water
// mark, so numbers are never reissued after a product is archived or
// deleted.
func NextSKU(ctx context.Context, tx *gorm.DB, ownerName, categoryName string) (string, error) {
	ownerPrefix := OwnerCode(ownerName)
	categoryPrefix := CategoryCode(categoryName)

	seq, err := nextSequence(ctx, tx, ownerPrefix, categoryPrefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%04d", ownerPrefix, categoryPrefix, seq), nil
}

func nextSequence(ctx context.Context, tx *gorm.DB, ownerPrefix, categoryPrefix string) (int, error) {
	query := tx.WithContext(ctx).
		Where("owner_prefix = ? AND category_prefix = ?", ownerPrefix, categoryPrefix)
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var counter models.SkuSequence
	err := query.First(&counter).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		counter = models.SkuSequence{
			OwnerPrefix:    ownerPrefix,
			CategoryPrefix: categoryPrefix,
			NextSeq:        2,
		}
		if createErr := tx.WithContext(ctx).Create(&counter).Error; createErr != nil {
			return 0, fmt.Errorf("creating sku sequence: %w", createErr)
		}
		return 1, nil
	case err != nil:
		return 0, fmt.Errorf("loading sku sequence: %w", err)
	}

	allocated := counter.NextSeq
	err = tx.WithContext(ctx).
		Model(&models.SkuSequence{}).
		Where("owner_prefix = ? AND category_prefix = ?", ownerPrefix, categoryPrefix).
		Update("next_seq", allocated+1).Error
	if err != nil {
		return 0, fmt.Errorf("advancing sku sequence: %w", err)
	}
	return allocated, nil
}
