package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a ledger entry
type TransactionType string

const (
	TransactionTypeExpense TransactionType = "EXPENSE"
	TransactionTypeRevenue TransactionType = "REVENUE"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeExpense || t == TransactionTypeRevenue
}

// Transaction is a band ledger entry owned by the member who recorded it.
type Transaction struct {
	Base
	Type        TransactionType `gorm:"not null" json:"type"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Description string          `gorm:"not null" json:"description"`
	Category    string          `gorm:"not null" json:"category"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	UserID      string          `gorm:"type:uuid;not null;index" json:"userId"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// OwnerID returns the id of the member who recorded the transaction.
func (t *Transaction) OwnerID() string {
	return t.UserID
}
