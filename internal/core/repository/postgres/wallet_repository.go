package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Petr-Hromjak/client-wallet/internal/core/logger"
	"github.com/Petr-Hromjak/client-wallet/internal/core/models"
	"github.com/Petr-Hromjak/client-wallet/internal/core/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type postgresWalletRepo struct {
	ext sqlx.ExtContext
	log logger.Logger
}

const walletColumns = `id, name, currency, balance, created_at, updated_at`

func (r *postgresWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`
	err := sqlx.GetContext(ctx, r.ext, &wallet, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: wallet %s", repository.ErrNotFound, id)
		}
		return nil, fmt.Errorf("error getting wallet: %w", err)
	}

	return &wallet, nil
}

func (r *postgresWalletRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`
	err := sqlx.GetContext(ctx, r.ext, &wallet, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: wallet %s", repository.ErrNotFound, id)
		}
		return nil, fmt.Errorf("error locking wallet: %w", err)
	}

	return &wallet, nil
}

func (r *postgresWalletRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM wallets WHERE name = $1)`
	err := sqlx.GetContext(ctx, r.ext, &exists, query, name)
	if err != nil {
		return false, fmt.Errorf("error checking wallet name: %w", err)
	}

	return exists, nil
}

func (r *postgresWalletRepo) Save(ctx context.Context, wallet *models.Wallet) error {
	const query = `INSERT INTO wallets (id, name, currency, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET balance = EXCLUDED.balance, updated_at = EXCLUDED.updated_at`

	_, err := r.ext.ExecContext(ctx, query,
		wallet.ID,
		wallet.Name,
		wallet.Currency,
		wallet.Balance,
		wallet.CreatedAt,
		wallet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving wallet: %w", err)
	}

	return nil
}
