package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Petr-Hromjak/client-wallet/internal/core/logger"
	"github.com/Petr-Hromjak/client-wallet/internal/core/models"
	"github.com/Petr-Hromjak/client-wallet/internal/core/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletUsecase exposes every wallet operation consumed by the HTTP layer.
// Mutating operations run inside a single database transaction: the balance
// update and the transaction record commit together or not at all.
type WalletUsecase interface {
	Create(ctx context.Context, name string, currency models.Currency) (*models.Wallet, error)
	Get(ctx context.Context, walletID uuid.UUID) (*models.Wallet, error)
	GetTransactionHistory(ctx context.Context, walletID uuid.UUID) ([]models.Transaction, error)
	Deposit(ctx context.Context, params DepositParams) (*models.Wallet, error)
	Withdraw(ctx context.Context, params WithdrawParams) (*models.Wallet, error)
	Transfer(ctx context.Context, params TransferParams) (*models.Wallet, error)
}

// DepositParams carries the input of a deposit from an external account.
type DepositParams struct {
	WalletID      uuid.UUID
	Currency      models.Currency
	Amount        decimal.Decimal
	AccountNumber string
	BankCode      string
}

// WithdrawParams carries the input of a withdrawal to an external account.
type WithdrawParams struct {
	WalletID      uuid.UUID
	Currency      models.Currency
	Amount        decimal.Decimal
	AccountNumber string
	BankCode      string
}

// TransferParams carries the input of a transfer between two wallets.
type TransferParams struct {
	SenderWalletID   uuid.UUID
	ReceiverWalletID uuid.UUID
	Currency         models.Currency
	Amount           decimal.Decimal
}

type walletUsecase struct {
	store repository.Store
	log   logger.Logger
}

func NewWalletUsecase(store repository.Store, log logger.Logger) WalletUsecase {
	return &walletUsecase{store: store, log: log}
}

func (uc *walletUsecase) Create(ctx context.Context, name string, currency models.Currency) (*models.Wallet, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errInvalidName()
	}
	if !currency.Valid() {
		return nil, errInvalidCurrency(currency)
	}

	exists, err := uc.store.Wallets().ExistsByName(ctx, name)
	if err != nil {
		uc.log.Error("Wallet name lookup failed",
			logger.StringField("name", name),
			logger.ErrorField("error", err))
		return nil, err
	}
	if exists {
		return nil, errNameAlreadyExists(name)
	}

	now := time.Now().UTC()
	wallet := &models.Wallet{
		ID:        uuid.New(),
		Name:      name,
		Currency:  currency,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.store.Wallets().Save(ctx, wallet); err != nil {
		uc.log.Error("Wallet creation failed",
			logger.StringField("name", name),
			logger.ErrorField("error", err))
		return nil, err
	}

	uc.log.Info("Wallet created",
		logger.StringField("wallet_id", wallet.ID.String()),
		logger.StringField("name", name),
		logger.StringField("currency", string(currency)))
	return wallet, nil
}

func (uc *walletUsecase) Get(ctx context.Context, walletID uuid.UUID) (*models.Wallet, error) {
	wallet, err := uc.store.Wallets().GetByID(ctx, walletID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errWalletNotFound(walletID)
		}
		uc.log.Error("Wallet lookup failed",
			logger.StringField("wallet_id", walletID.String()),
			logger.ErrorField("error", err))
		return nil, err
	}
	return wallet, nil
}

func (uc *walletUsecase) GetTransactionHistory(ctx context.Context, walletID uuid.UUID) ([]models.Transaction, error) {
	if _, err := uc.Get(ctx, walletID); err != nil {
		return nil, err
	}

	transactions, err := uc.store.Transactions().ListByWallet(ctx, walletID)
	if err != nil {
		uc.log.Error("Transaction history lookup failed",
			logger.StringField("wallet_id", walletID.String()),
			logger.ErrorField("error", err))
		return nil, err
	}
	return transactions, nil
}

func (uc *walletUsecase) Deposit(ctx context.Context, params DepositParams) (*models.Wallet, error) {
	uc.logStart("deposit", params.WalletID, params.Amount)

	if params.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, errInvalidAmount(params.Amount)
	}

	record := newExternalTransaction(models.TransactionTypeDeposit, params.WalletID,
		params.Currency, params.Amount, params.AccountNumber, params.BankCode)

	var updated *models.Wallet
	err := uc.store.WithinTx(ctx, func(s repository.Store) error {
		wallet, err := s.Wallets().GetByIDForUpdate(ctx, params.WalletID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return errWalletNotFound(params.WalletID)
			}
			return err
		}
		if wallet.Currency != params.Currency {
			return errCurrencyMismatch(wallet.ID, params.Currency, wallet.Currency)
		}

		now := time.Now().UTC()
		wallet.Balance = wallet.Balance.Add(params.Amount)
		wallet.UpdatedAt = now
		if err := s.Wallets().Save(ctx, wallet); err != nil {
			return err
		}

		record.Status = models.TransactionStatusCompleted
		record.UpdatedAt = now
		if err := s.Transactions().Save(ctx, record); err != nil {
			return err
		}

		updated = wallet
		return nil
	})
	if err != nil {
		if isWalletError(err) {
			return nil, err
		}
		uc.recordFailure(ctx, record)
		return nil, errDepositFailed(params.WalletID, err)
	}

	uc.logSuccess("deposit", params.WalletID, updated.Balance)
	return updated, nil
}

func (uc *walletUsecase) Withdraw(ctx context.Context, params WithdrawParams) (*models.Wallet, error) {
	uc.logStart("withdraw", params.WalletID, params.Amount)

	if params.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, errInvalidAmount(params.Amount)
	}

	record := newExternalTransaction(models.TransactionTypeWithdrawal, params.WalletID,
		params.Currency, params.Amount, params.AccountNumber, params.BankCode)

	var updated *models.Wallet
	err := uc.store.WithinTx(ctx, func(s repository.Store) error {
		wallet, err := s.Wallets().GetByIDForUpdate(ctx, params.WalletID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return errWalletNotFound(params.WalletID)
			}
			return err
		}
		if wallet.Currency != params.Currency {
			return errCurrencyMismatch(wallet.ID, params.Currency, wallet.Currency)
		}
		if wallet.Balance.LessThan(params.Amount) {
			uc.log.Warn("Insufficient funds",
				logger.StringField("wallet_id", wallet.ID.String()),
				logger.StringField("balance", wallet.Balance.String()),
				logger.StringField("requested", params.Amount.String()))
			return errNotEnoughFunds(wallet.ID, params.Amount, wallet.Balance)
		}

		now := time.Now().UTC()
		wallet.Balance = wallet.Balance.Sub(params.Amount)
		wallet.UpdatedAt = now
		if err := s.Wallets().Save(ctx, wallet); err != nil {
			return err
		}

		record.Status = models.TransactionStatusCompleted
		record.UpdatedAt = now
		if err := s.Transactions().Save(ctx, record); err != nil {
			return err
		}

		updated = wallet
		return nil
	})
	if err != nil {
		if isWalletError(err) {
			return nil, err
		}
		uc.recordFailure(ctx, record)
		return nil, errWithdrawFailed(params.WalletID, err)
	}

	uc.logSuccess("withdraw", params.WalletID, updated.Balance)
	return updated, nil
}

func (uc *walletUsecase) Transfer(ctx context.Context, params TransferParams) (*models.Wallet, error) {
	uc.logStart("transfer", params.SenderWalletID, params.Amount)

	if params.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, errInvalidAmount(params.Amount)
	}
	if params.SenderWalletID == params.ReceiverWalletID {
		return nil, errSameWalletTransfer(params.SenderWalletID)
	}

	senderID := params.SenderWalletID
	receiverID := params.ReceiverWalletID
	record := &models.Transaction{
		ID:               uuid.New(),
		SenderWalletID:   &senderID,
		ReceiverWalletID: &receiverID,
		Amount:           params.Amount,
		Currency:         params.Currency,
		Type:             models.TransactionTypeTransfer,
		Status:           models.TransactionStatusPending,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}

	var updated *models.Wallet
	err := uc.store.WithinTx(ctx, func(s repository.Store) error {
		sender, receiver, err := uc.lockWalletPair(ctx, s, senderID, receiverID)
		if err != nil {
			return err
		}

		if sender.Currency != params.Currency {
			return errCurrencyMismatch(sender.ID, params.Currency, sender.Currency)
		}
		if receiver.Currency != params.Currency {
			return errCurrencyMismatch(receiver.ID, params.Currency, receiver.Currency)
		}
		if sender.Balance.LessThan(params.Amount) {
			uc.log.Warn("Insufficient funds",
				logger.StringField("wallet_id", sender.ID.String()),
				logger.StringField("balance", sender.Balance.String()),
				logger.StringField("requested", params.Amount.String()))
			return errNotEnoughFunds(sender.ID, params.Amount, sender.Balance)
		}

		now := time.Now().UTC()
		sender.Balance = sender.Balance.Sub(params.Amount)
		sender.UpdatedAt = now
		receiver.Balance = receiver.Balance.Add(params.Amount)
		receiver.UpdatedAt = now

		if err := s.Wallets().Save(ctx, sender); err != nil {
			return err
		}
		if err := s.Wallets().Save(ctx, receiver); err != nil {
			return err
		}

		record.Status = models.TransactionStatusCompleted
		record.UpdatedAt = now
		if err := s.Transactions().Save(ctx, record); err != nil {
			return err
		}

		updated = sender
		return nil
	})
	if err != nil {
		if isWalletError(err) {
			return nil, err
		}
		uc.recordFailure(ctx, record)
		return nil, errTransferFailed(senderID, receiverID, err)
	}

	uc.logSuccess("transfer", senderID, updated.Balance)
	return updated, nil
}

// lockWalletPair locks both wallets of a transfer with SELECT ... FOR UPDATE.
// Rows are always locked in ascending UUID byte order so two opposite
// transfers between the same pair cannot deadlock.
func (uc *walletUsecase) lockWalletPair(ctx context.Context, s repository.Store, senderID, receiverID uuid.UUID) (sender, receiver *models.Wallet, err error) {
	firstID, secondID := senderID, receiverID
	if bytes.Compare(firstID[:], secondID[:]) > 0 {
		firstID, secondID = secondID, firstID
	}

	first, err := s.Wallets().GetByIDForUpdate(ctx, firstID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, errWalletNotFound(firstID)
		}
		return nil, nil, err
	}
	second, err := s.Wallets().GetByIDForUpdate(ctx, secondID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, errWalletNotFound(secondID)
		}
		return nil, nil, err
	}

	if first.ID == senderID {
		return first, second, nil
	}
	return second, first, nil
}

// newExternalTransaction builds the PENDING audit record of a deposit or
// withdrawal against an external bank account.
func newExternalTransaction(txType models.TransactionType, walletID uuid.UUID, currency models.Currency, amount decimal.Decimal, accountNumber, bankCode string) *models.Transaction {
	now := time.Now().UTC()
	record := &models.Transaction{
		ID:        uuid.New(),
		Amount:    amount,
		Currency:  currency,
		Type:      txType,
		Status:    models.TransactionStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if accountNumber != "" {
		record.AccountNumber = &accountNumber
	}
	if bankCode != "" {
		record.BankCode = &bankCode
	}

	id := walletID
	if txType == models.TransactionTypeDeposit {
		record.ReceiverWalletID = &id
	} else {
		record.SenderWalletID = &id
	}
	return record
}

// recordFailure persists a FAILED audit record after the operation's
// transaction rolled back. Best effort: a failure here is logged, the
// original error is what the caller gets.
func (uc *walletUsecase) recordFailure(ctx context.Context, record *models.Transaction) {
	record.Status = models.TransactionStatusFailed
	record.UpdatedAt = time.Now().UTC()
	if err := uc.store.Transactions().Save(ctx, record); err != nil {
		uc.log.Error("Failed to record failed transaction",
			logger.StringField("transaction_id", record.ID.String()),
			logger.ErrorField("error", err))
	}
}

func isWalletError(err error) bool {
	var werr *WalletError
	return errors.As(err, &werr)
}

func (uc *walletUsecase) logStart(operation string, walletID uuid.UUID, amount decimal.Decimal) {
	uc.log.Info("Starting operation",
		logger.StringField("operation", operation),
		logger.StringField("wallet_id", walletID.String()),
		logger.StringField("amount", amount.String()))
}

func (uc *walletUsecase) logSuccess(operation string, walletID uuid.UUID, balance decimal.Decimal) {
	uc.log.Info("Operation completed",
		logger.StringField("operation", operation),
		logger.StringField("wallet_id", walletID.String()),
		logger.StringField("new_balance", balance.StringFixedBank(2)))
}
