package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "gidxpay/internal/errors"
	"gidxpay/internal/lock"
	"gidxpay/internal/model"
	"gidxpay/internal/repository"
)

// Balance is a user's balance split across settlement paths.
type Balance struct {
	CoinsAmount decimal.Decimal `json:"coins_amount"`
	CashAmount  decimal.Decimal `json:"cash_amount"`
}

// TransactionInput describes a ledger transaction to create. Amount is
// signed: debits are negative.
type TransactionInput struct {
	UserID           uint
	Type             model.TransactionType
	Amount           decimal.Decimal
	ExtTransactionID *string
}

// Lock is the scoped lock returned together with a created transaction.
type Lock interface {
	Release()
}

// LockedTransaction pairs a created transaction with the per-user lock held
// for it. The caller must release the lock when its atomic unit is done.
type LockedTransaction struct {
	Transaction *model.Transaction
	Lock        Lock
}

// Service is the external ledger consumed by the reconciliation engine. It
// is the single source of truth for money movement.
type Service interface {
	GetUserBalance(ctx context.Context, userID uint) (Balance, error)
	// CreateTransaction acquires the per-user money lock, records the
	// transaction and applies it to the wallet. The lock is returned for
	// release by the caller.
	CreateTransaction(ctx context.Context, input TransactionInput) (*LockedTransaction, error)
	// GetTransactionByExtID returns nil when no transaction exists for the
	// external transaction id.
	GetTransactionByExtID(ctx context.Context, extTransactionID string) (*model.Transaction, error)
	// Refund creates the compensating transaction for tx. Refunding an
	// already-reversed transaction fails with ErrDuplicateTransaction.
	Refund(ctx context.Context, tx *model.Transaction) (*LockedTransaction, error)
}

type ledgerService struct {
	transactionRepo repository.TransactionRepository
	walletRepo      repository.WalletRepository
	locks           *lock.Manager
}

// NewService creates a ledger service over the wallet and transaction stores.
func NewService(
	transactionRepo repository.TransactionRepository,
	walletRepo repository.WalletRepository,
	locks *lock.Manager,
) Service {
	return &ledgerService{
		transactionRepo: transactionRepo,
		walletRepo:      walletRepo,
		locks:           locks,
	}
}

func userLockKey(userID uint) string {
	return fmt.Sprintf("ledger:user:%d", userID)
}

// GetUserBalance returns the user's wallet balance. A missing wallet reads
// as zero.
func (s *ledgerService) GetUserBalance(ctx context.Context, userID uint) (Balance, error) {
	wallet, err := s.walletRepo.FindByUserID(ctx, userID)
	if err == gorm.ErrRecordNotFound {
		return Balance{CoinsAmount: decimal.Zero, CashAmount: decimal.Zero}, nil
	}
	if err != nil {
		return Balance{}, fmt.Errorf("find wallet: %w", err)
	}
	return Balance{CoinsAmount: wallet.CoinsBalance, CashAmount: wallet.CashBalance}, nil
}

// GetTransactionByExtID finds a transaction by external transaction id.
func (s *ledgerService) GetTransactionByExtID(ctx context.Context, extTransactionID string) (*model.Transaction, error) {
	return s.transactionRepo.FindByExtTransactionID(ctx, extTransactionID)
}

// CreateTransaction records a transaction and applies it to the wallet under
// the per-user lock.
func (s *ledgerService) CreateTransaction(ctx context.Context, input TransactionInput) (*LockedTransaction, error) {
	userLock, err := s.locks.Acquire(ctx, userLockKey(input.UserID))
	if err != nil {
		return nil, err
	}

	tx, err := s.createLocked(ctx, input)
	if err != nil {
		userLock.Release()
		return nil, err
	}

	return &LockedTransaction{Transaction: tx, Lock: userLock}, nil
}

func (s *ledgerService) createLocked(ctx context.Context, input TransactionInput) (*model.Transaction, error) {
	if input.ExtTransactionID != nil {
		existing, err := s.transactionRepo.FindByExtTransactionID(ctx, *input.ExtTransactionID)
		if err != nil {
			return nil, fmt.Errorf("check existing transaction: %w", err)
		}
		if existing != nil {
			return nil, apperrors.ErrDuplicateTransaction
		}
	}

	tx := &model.Transaction{
		UserID:           input.UserID,
		Type:             input.Type,
		Amount:           input.Amount,
		ExtTransactionID: input.ExtTransactionID,
	}
	if err := s.transactionRepo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	if err := s.applyToWallet(ctx, input.UserID, bucketFor(input.Type), input.Amount); err != nil {
		return nil, err
	}

	return tx, nil
}

// Refund creates the compensating transaction for tx, negating its amount on
// the same balance bucket.
func (s *ledgerService) Refund(ctx context.Context, tx *model.Transaction) (*LockedTransaction, error) {
	userLock, err := s.locks.Acquire(ctx, userLockKey(tx.UserID))
	if err != nil {
		return nil, err
	}

	reversal, err := s.refundLocked(ctx, tx)
	if err != nil {
		userLock.Release()
		return nil, err
	}

	return &LockedTransaction{Transaction: reversal, Lock: userLock}, nil
}

func (s *ledgerService) refundLocked(ctx context.Context, tx *model.Transaction) (*model.Transaction, error) {
	existing, err := s.transactionRepo.FindReversalOf(ctx, tx.ID)
	if err != nil {
		return nil, fmt.Errorf("check existing reversal: %w", err)
	}
	if existing != nil {
		return nil, apperrors.ErrDuplicateTransaction
	}

	reversal := &model.Transaction{
		UserID:       tx.UserID,
		Type:         model.TxTypeReversalCredit,
		Amount:       tx.Amount.Neg(),
		ReversalOfID: &tx.ID,
	}
	if err := s.transactionRepo.Create(ctx, reversal); err != nil {
		return nil, fmt.Errorf("create reversal transaction: %w", err)
	}

	if err := s.applyToWallet(ctx, tx.UserID, bucketFor(tx.Type), tx.Amount.Neg()); err != nil {
		return nil, err
	}

	return reversal, nil
}

type balanceBucket int

const (
	bucketCoins balanceBucket = iota
	bucketCash
)

func bucketFor(txType model.TransactionType) balanceBucket {
	if txType == model.TxTypeCashWithdrawDebit {
		return bucketCash
	}
	return bucketCoins
}

func (s *ledgerService) applyToWallet(ctx context.Context, userID uint, bucket balanceBucket, amount decimal.Decimal) error {
	wallet, err := s.walletRepo.FindByUserIDForUpdate(ctx, userID)
	if err == gorm.ErrRecordNotFound {
		wallet = &model.Wallet{UserID: userID, CoinsBalance: decimal.Zero, CashBalance: decimal.Zero}
		if err := s.walletRepo.Create(ctx, wallet); err != nil {
			return fmt.Errorf("create wallet: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("lock wallet: %w", err)
	}

	switch bucket {
	case bucketCoins:
		wallet.CoinsBalance = wallet.CoinsBalance.Add(amount)
		if wallet.CoinsBalance.IsNegative() {
			return apperrors.ErrInsufficientBalance
		}
	case bucketCash:
		wallet.CashBalance = wallet.CashBalance.Add(amount)
		if wallet.CashBalance.IsNegative() {
			return apperrors.ErrInsufficientBalance
		}
	}

	if err := s.walletRepo.Update(ctx, wallet); err != nil {
		return fmt.Errorf("update wallet: %w", err)
	}
	return nil
}
