package repository

import (
	"context"
	"errors"

	"github.com/Petr-Hromjak/client-wallet/internal/core/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned by lookups when no matching record exists.
var ErrNotFound = errors.New("record not found")

// WalletRepository is the persistence boundary for wallet records.
type WalletRepository interface {
	// GetByID returns the wallet or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Wallet, error)
	// GetByIDForUpdate returns the wallet with its row locked for the
	// duration of the surrounding transaction. Outside a transaction it
	// behaves like GetByID.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Wallet, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	// Save inserts the wallet or updates its balance and updated_at.
	Save(ctx context.Context, wallet *models.Wallet) error
}

// TransactionRepository is the persistence boundary for transaction records.
type TransactionRepository interface {
	// Save inserts the transaction or updates its status and updated_at.
	Save(ctx context.Context, transaction *models.Transaction) error
	// ListByWallet returns every transaction where the wallet is sender or
	// receiver, ordered by creation time ascending, ties broken by id.
	ListByWallet(ctx context.Context, walletID uuid.UUID) ([]models.Transaction, error)
}

// Store bundles the repositories with a transactional boundary. WithinTx
// runs fn against repositories bound to a single database transaction;
// the transaction commits when fn returns nil and rolls back otherwise.
type Store interface {
	Wallets() WalletRepository
	Transactions() TransactionRepository
	WithinTx(ctx context.Context, fn func(s Store) error) error
}
