package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Petr-Hromjak/client-wallet/internal/core/logger"
	"github.com/Petr-Hromjak/client-wallet/internal/core/repository"
	"github.com/jmoiron/sqlx"
)

// store implements repository.Store on top of sqlx. The ext field is either
// the database pool or an open transaction; repositories handed out by a
// store run their queries against it, so everything obtained from the store
// passed to a WithinTx callback shares one database transaction.
type store struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
	log logger.Logger
}

func NewStore(db *sqlx.DB, log logger.Logger) repository.Store {
	return &store{db: db, ext: db, log: log}
}

func (s *store) Wallets() repository.WalletRepository {
	return &postgresWalletRepo{ext: s.ext, log: s.log}
}

func (s *store) Transactions() repository.TransactionRepository {
	return &postgresTransactionRepo{ext: s.ext, log: s.log}
}

func (s *store) WithinTx(ctx context.Context, fn func(repository.Store) error) (err error) {
	if _, ok := s.ext.(*sqlx.Tx); ok {
		// Already transactional, reuse the open transaction.
		return fn(s)
	}

	var isCommitted bool
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		s.log.Error("Error beginning transaction", logger.ErrorField("error", err))
		return fmt.Errorf("error beginning transaction: %w", err)
	}

	defer func() {
		if err != nil && !isCommitted {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.log.Error("Transaction rollback failed", logger.ErrorField("error", rbErr))
				err = fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
			} else {
				s.log.Warn("Transaction rolled back due to error", logger.ErrorField("error", err))
			}
		}
	}()

	if err = fn(&store{db: s.db, ext: tx, log: s.log}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		s.log.Error("Error committing transaction", logger.ErrorField("error", err))
		return fmt.Errorf("commit failed: %w", err)
	}

	isCommitted = true
	return nil
}
