package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType defines the kind of balance-affecting operation.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
)

// TransactionStatus tracks the lifecycle of a transaction record.
// A record is created PENDING and reaches exactly one terminal status.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction is the immutable audit record of a wallet operation.
// Deposit populates only the receiver side, withdrawal only the sender side,
// transfer populates both. AccountNumber and BankCode reference the external
// account for deposits and withdrawals and stay empty for transfers.
type Transaction struct {
	ID               uuid.UUID         `json:"id" db:"id"`
	SenderWalletID   *uuid.UUID        `json:"sender_wallet_id,omitempty" db:"sender_wallet_id"`
	ReceiverWalletID *uuid.UUID        `json:"receiver_wallet_id,omitempty" db:"receiver_wallet_id"`
	AccountNumber    *string           `json:"account_number,omitempty" db:"account_number"`
	BankCode         *string           `json:"bank_code,omitempty" db:"bank_code"`
	Amount           decimal.Decimal   `json:"amount" db:"amount"`
	Currency         Currency          `json:"currency" db:"currency"`
	Type             TransactionType   `json:"transaction_type" db:"transaction_type"`
	Status           TransactionStatus `json:"status" db:"status"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at" db:"updated_at"`
}
