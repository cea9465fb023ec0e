package repository

import (
	"context"

	"gorm.io/gorm"

	"gidxpay/internal/model"
)

// TransactionRepository defines ledger transaction persistence operations.
type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) error
	FindByID(ctx context.Context, id uint) (*model.Transaction, error)
	// FindByExtTransactionID returns nil when no transaction exists for the
	// external id. This is the idempotency precondition check.
	FindByExtTransactionID(ctx context.Context, extTransactionID string) (*model.Transaction, error)
	FindReversalOf(ctx context.Context, transactionID uint) (*model.Transaction, error)
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create creates a new ledger transaction row.
func (r *transactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	return dbFor(ctx, r.db).Create(tx).Error
}

// FindByID finds a transaction by ID.
func (r *transactionRepository) FindByID(ctx context.Context, id uint) (*model.Transaction, error) {
	var tx model.Transaction
	if err := dbFor(ctx, r.db).Where("id = ?", id).First(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

// FindByExtTransactionID finds a transaction by its external transaction id.
func (r *transactionRepository) FindByExtTransactionID(ctx context.Context, extTransactionID string) (*model.Transaction, error) {
	var tx model.Transaction
	err := dbFor(ctx, r.db).Where("ext_transaction_id = ?", extTransactionID).First(&tx).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// FindReversalOf finds the compensating transaction of a transaction, if any.
func (r *transactionRepository) FindReversalOf(ctx context.Context, transactionID uint) (*model.Transaction, error) {
	var tx model.Transaction
	err := dbFor(ctx, r.db).Where("reversal_of_id = ?", transactionID).First(&tx).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// WalletRepository defines wallet persistence operations.
type WalletRepository interface {
	Create(ctx context.Context, wallet *model.Wallet) error
	FindByUserID(ctx context.Context, userID uint) (*model.Wallet, error)
	// FindByUserIDForUpdate locks the wallet row for the rest of the
	// surrounding transaction.
	FindByUserIDForUpdate(ctx context.Context, userID uint) (*model.Wallet, error)
	Update(ctx context.Context, wallet *model.Wallet) error
}

type walletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet repository.
func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

// Create creates a new wallet.
func (r *walletRepository) Create(ctx context.Context, wallet *model.Wallet) error {
	return dbFor(ctx, r.db).Create(wallet).Error
}

// FindByUserID finds a wallet by its owner.
func (r *walletRepository) FindByUserID(ctx context.Context, userID uint) (*model.Wallet, error) {
	var wallet model.Wallet
	if err := dbFor(ctx, r.db).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// FindByUserIDForUpdate finds a wallet with a row-level lock for update.
func (r *walletRepository) FindByUserIDForUpdate(ctx context.Context, userID uint) (*model.Wallet, error) {
	var wallet model.Wallet
	err := dbFor(ctx, r.db).Set("gorm:query_option", "FOR UPDATE").
		Where("user_id = ?", userID).First(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// Update persists wallet balances.
func (r *walletRepository) Update(ctx context.Context, wallet *model.Wallet) error {
	return dbFor(ctx, r.db).Save(wallet).Error
}
