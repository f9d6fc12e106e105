package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/threadbazaar/threadbazaar-backend/pkg/enums"
)

// Organization is a tenant on the platform, either a wholesaler selling
// stock or a retailer buying it.
type Organization struct {
	ID      uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	Name    string        `gorm:"column:name;not null"`
	OrgType enums.OrgType `gorm:"column:org_type;type:text;not null"`
	Email   string        `gorm:"column:email;not null"`
	Phone   *string       `gorm:"column:phone"`
	Address *string       `gorm:"column:address"`

	// Payout profile. All three are required before funds can be released.
	BankAccountNumber *string `gorm:"column:bank_account_number"`
	BankIFSC          *string `gorm:"column:bank_ifsc"`
	BankAccountHolder *string `gorm:"column:bank_account_holder"`
	RazorpayAccountID *string `gorm:"column:razorpay_account_id"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// HasCompleteBankDetails reports whether every payout field is present
// and non-empty.
func (o Organization) HasCompleteBankDetails() bool {
	for _, field := range []*string{o.BankAccountNumber, o.BankIFSC, o.BankAccountHolder} {
		if field == nil || *field == "" {
			return false
		}
	}
	return true
}
