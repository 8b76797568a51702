package usecase

import (
	"fmt"

	"github.com/Petr-Hromjak/client-wallet/internal/core/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrorKind identifies the failure condition of a wallet operation.
type ErrorKind string

const (
	KindWalletNotFound     ErrorKind = "WALLET_NOT_FOUND"
	KindNameAlreadyExists  ErrorKind = "NAME_ALREADY_EXISTS"
	KindSameWalletTransfer ErrorKind = "SAME_WALLET_TRANSFER"
	KindCurrencyMismatch   ErrorKind = "CURRENCY_MISMATCH"
	KindInvalidCurrency    ErrorKind = "INVALID_CURRENCY"
	KindInvalidAmount      ErrorKind = "INVALID_AMOUNT"
	KindInvalidName        ErrorKind = "INVALID_NAME"
	KindNotEnoughFunds     ErrorKind = "NOT_ENOUGH_FUNDS"
	KindDepositFailed      ErrorKind = "DEPOSIT_FAILED"
	KindWithdrawFailed     ErrorKind = "WITHDRAW_FAILED"
	KindTransferFailed     ErrorKind = "TRANSFER_FAILED"
)

// WalletError is the single error type returned by the wallet usecase.
// Kind selects the failure condition, the remaining fields carry its
// structured payload so callers branch on data, never on message text.
type WalletError struct {
	Kind              ErrorKind
	WalletID          uuid.UUID
	SenderWalletID    uuid.UUID
	ReceiverWalletID  uuid.UUID
	Name              string
	RequestedCurrency models.Currency
	WalletCurrency    models.Currency
	Requested         decimal.Decimal
	Available         decimal.Decimal
	cause             error
}

func (e *WalletError) Error() string {
	switch e.Kind {
	case KindWalletNotFound:
		return fmt.Sprintf("wallet %s not found", e.WalletID)
	case KindNameAlreadyExists:
		return fmt.Sprintf("wallet with name %q already exists", e.Name)
	case KindSameWalletTransfer:
		return fmt.Sprintf("transfer to the same wallet %s rejected", e.WalletID)
	case KindCurrencyMismatch:
		return fmt.Sprintf("currency mismatch for wallet %s: requested %s, wallet holds %s",
			e.WalletID, e.RequestedCurrency, e.WalletCurrency)
	case KindInvalidCurrency:
		return fmt.Sprintf("unknown currency %q", e.RequestedCurrency)
	case KindInvalidAmount:
		return fmt.Sprintf("amount must be positive, got %s", e.Requested)
	case KindInvalidName:
		return "wallet name must not be empty"
	case KindNotEnoughFunds:
		return fmt.Sprintf("not enough funds in wallet %s: requested %s, available %s",
			e.WalletID, e.Requested, e.Available)
	case KindDepositFailed:
		return fmt.Sprintf("deposit to wallet %s failed: %v", e.WalletID, e.cause)
	case KindWithdrawFailed:
		return fmt.Sprintf("withdrawal from wallet %s failed: %v", e.WalletID, e.cause)
	case KindTransferFailed:
		return fmt.Sprintf("transfer from wallet %s to wallet %s failed: %v",
			e.SenderWalletID, e.ReceiverWalletID, e.cause)
	}
	return fmt.Sprintf("wallet operation failed: %s", e.Kind)
}

func (e *WalletError) Unwrap() error {
	return e.cause
}

func errWalletNotFound(id uuid.UUID) error {
	return &WalletError{Kind: KindWalletNotFound, WalletID: id}
}

func errNameAlreadyExists(name string) error {
	return &WalletError{Kind: KindNameAlreadyExists, Name: name}
}

func errSameWalletTransfer(id uuid.UUID) error {
	return &WalletError{Kind: KindSameWalletTransfer, WalletID: id}
}

func errCurrencyMismatch(id uuid.UUID, requested, held models.Currency) error {
	return &WalletError{
		Kind:              KindCurrencyMismatch,
		WalletID:          id,
		RequestedCurrency: requested,
		WalletCurrency:    held,
	}
}

func errInvalidCurrency(c models.Currency) error {
	return &WalletError{Kind: KindInvalidCurrency, RequestedCurrency: c}
}

func errInvalidAmount(amount decimal.Decimal) error {
	return &WalletError{Kind: KindInvalidAmount, Requested: amount}
}

func errInvalidName() error {
	return &WalletError{Kind: KindInvalidName}
}

func errNotEnoughFunds(id uuid.UUID, requested, available decimal.Decimal) error {
	return &WalletError{
		Kind:      KindNotEnoughFunds,
		WalletID:  id,
		Requested: requested,
		Available: available,
	}
}

func errDepositFailed(id uuid.UUID, cause error) error {
	return &WalletError{Kind: KindDepositFailed, WalletID: id, cause: cause}
}

func errWithdrawFailed(id uuid.UUID, cause error) error {
	return &WalletError{Kind: KindWithdrawFailed, WalletID: id, cause: cause}
}

func errTransferFailed(sender, receiver uuid.UUID, cause error) error {
	return &WalletError{
		Kind:             KindTransferFailed,
		SenderWalletID:   sender,
		ReceiverWalletID: receiver,
		cause:            cause,
	}
}
