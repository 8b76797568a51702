package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency is the closed set of currencies a wallet can hold.
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyCZK Currency = "CZK"
)

// Valid reports whether c is one of the recognized currency codes.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyEUR, CurrencyCZK:
		return true
	}
	return false
}

// Wallet is a named account holding a balance in a single currency.
// Balance is mutated only by the wallet usecase, never directly.
type Wallet struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Currency  Currency        `json:"currency" db:"currency"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
