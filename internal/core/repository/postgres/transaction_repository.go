package postgres

import (
	"context"
	"fmt"

	"github.com/Petr-Hromjak/client-wallet/internal/core/logger"
	"github.com/Petr-Hromjak/client-wallet/internal/core/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type postgresTransactionRepo struct {
	ext sqlx.ExtContext
	log logger.Logger
}

func (r *postgresTransactionRepo) Save(ctx context.Context, transaction *models.Transaction) error {
	const query = `INSERT INTO transactions
		(id, sender_wallet_id, receiver_wallet_id, account_number, bank_code,
		 amount, currency, transaction_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`

	_, err := r.ext.ExecContext(ctx, query,
		transaction.ID,
		transaction.SenderWalletID,
		transaction.ReceiverWalletID,
		transaction.AccountNumber,
		transaction.BankCode,
		transaction.Amount,
		transaction.Currency,
		transaction.Type,
		transaction.Status,
		transaction.CreatedAt,
		transaction.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving transaction: %w", err)
	}

	return nil
}

func (r *postgresTransactionRepo) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]models.Transaction, error) {
	const query = `SELECT id, sender_wallet_id, receiver_wallet_id, account_number, bank_code,
		amount, currency, transaction_type, status, created_at, updated_at
		FROM transactions
		WHERE sender_wallet_id = $1 OR receiver_wallet_id = $1
		ORDER BY created_at, id`

	transactions := []models.Transaction{}
	err := sqlx.SelectContext(ctx, r.ext, &transactions, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}

	return transactions, nil
}
