package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Petr-Hromjak/client-wallet/internal/core/models"
	"github.com/Petr-Hromjak/client-wallet/internal/core/repository"
	"github.com/google/uuid"
)

var errStorageDown = errors.New("storage unavailable")

// memData is the committed state of the in-memory store.
type memData struct {
	wallets map[uuid.UUID]models.Wallet
	txns    []models.Transaction
}

func (d *memData) clone() *memData {
	wallets := make(map[uuid.UUID]models.Wallet, len(d.wallets))
	for id, w := range d.wallets {
		wallets[id] = w
	}
	txns := make([]models.Transaction, len(d.txns))
	copy(txns, d.txns)
	return &memData{wallets: wallets, txns: txns}
}

// memStore implements repository.Store in memory. WithinTx holds one global
// mutex for the whole callback and commits a staged copy only on success,
// mirroring the rollback semantics of the real store. failWalletSave and
// failTxnSave inject infrastructure failures into the apply/record phase.
type memStore struct {
	mu   sync.Mutex
	data *memData

	failWalletSave bool
	failTxnSave    bool
}

func newMemStore() *memStore {
	return &memStore{data: &memData{wallets: map[uuid.UUID]models.Wallet{}}}
}

func (s *memStore) Wallets() repository.WalletRepository {
	return &memWalletRepo{s: s, data: s.data, locked: false}
}

func (s *memStore) Transactions() repository.TransactionRepository {
	return &memTxnRepo{s: s, data: s.data, locked: false}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.data.clone()
	tx := &memTxStore{s: s, data: staged}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = staged
	return nil
}

// memTxStore is a store bound to staged transaction state; the parent's
// mutex is held for its entire lifetime.
type memTxStore struct {
	s    *memStore
	data *memData
}

func (t *memTxStore) Wallets() repository.WalletRepository {
	return &memWalletRepo{s: t.s, data: t.data, locked: true}
}

func (t *memTxStore) Transactions() repository.TransactionRepository {
	return &memTxnRepo{s: t.s, data: t.data, locked: true}
}

func (t *memTxStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(t)
}

type memWalletRepo struct {
	s      *memStore
	data   *memData
	locked bool
}

func (r *memWalletRepo) lock() func() {
	if r.locked {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *memWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Wallet, error) {
	defer r.lock()()
	wallet, ok := r.data.wallets[id]
	if !ok {
		return nil, fmt.Errorf("%w: wallet %s", repository.ErrNotFound, id)
	}
	copied := wallet
	return &copied, nil
}

func (r *memWalletRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Wallet, error) {
	return r.GetByID(ctx, id)
}

func (r *memWalletRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	defer r.lock()()
	for _, w := range r.data.wallets {
		if w.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *memWalletRepo) Save(ctx context.Context, wallet *models.Wallet) error {
	defer r.lock()()
	if r.s.failWalletSave {
		return errStorageDown
	}
	r.data.wallets[wallet.ID] = *wallet
	return nil
}

type memTxnRepo struct {
	s      *memStore
	data   *memData
	locked bool
}

func (r *memTxnRepo) lock() func() {
	if r.locked {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *memTxnRepo) Save(ctx context.Context, transaction *models.Transaction) error {
	defer r.lock()()
	if r.s.failTxnSave {
		return errStorageDown
	}
	for i := range r.data.txns {
		if r.data.txns[i].ID == transaction.ID {
			r.data.txns[i] = *transaction
			return nil
		}
	}
	r.data.txns = append(r.data.txns, *transaction)
	return nil
}

func (r *memTxnRepo) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]models.Transaction, error) {
	defer r.lock()()
	var out []models.Transaction
	for _, txn := range r.data.txns {
		if (txn.SenderWalletID != nil && *txn.SenderWalletID == walletID) ||
			(txn.ReceiverWalletID != nil && *txn.ReceiverWalletID == walletID) {
			out = append(out, txn)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out, nil
}

// committedTransactions returns a snapshot of all stored transaction records.
func (s *memStore) committedTransactions() []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	txns := make([]models.Transaction, len(s.data.txns))
	copy(txns, s.data.txns)
	return txns
}

// committedWallet returns the stored wallet state.
func (s *memStore) committedWallet(id uuid.UUID) (models.Wallet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.data.wallets[id]
	return w, ok
}
