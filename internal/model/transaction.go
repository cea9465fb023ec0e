package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType classifies a ledger balance change.
type TransactionType string

const (
	// TxTypeCoinsOrderCredit credits coins for a completed deposit.
	TxTypeCoinsOrderCredit TransactionType = "coins_order_credit"
	// TxTypeCashWithdrawDebit debits cash queued for an external payout.
	TxTypeCashWithdrawDebit TransactionType = "cash_withdraw_debit"
	// TxTypeCoinsWithdrawDebit debits coins settled internally.
	TxTypeCoinsWithdrawDebit TransactionType = "coins_withdraw_debit"
	// TxTypeReversalCredit compensates a previously debited transaction.
	TxTypeReversalCredit TransactionType = "reversal_credit"
)

// Transaction is one authoritative ledger balance change. At most one row
// ever exists per external transaction id.
type Transaction struct {
	ID     uint            `json:"id" gorm:"primaryKey"`
	UserID uint            `json:"user_id" gorm:"not null;index"`
	Type   TransactionType `json:"type" gorm:"type:varchar(30);not null;index"`
	Amount decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	// ExtTransactionID is the merchant transaction id the movement settles.
	// Nullable: internal-only settlements carry none.
	ExtTransactionID *string `json:"ext_transaction_id,omitempty" gorm:"size:36;uniqueIndex"`
	// ReversalOfID links a compensating transaction to the one it reverses.
	ReversalOfID *uint          `json:"reversal_of_id,omitempty" gorm:"uniqueIndex"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// Wallet holds a user's balance split between coins (internal ledger) and
// cash (externally payable winnings).
type Wallet struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	UserID       uint            `json:"user_id" gorm:"not null;uniqueIndex"`
	CoinsBalance decimal.Decimal `json:"coins_balance" gorm:"type:decimal(10,2);not null;default:0"`
	CashBalance  decimal.Decimal `json:"cash_balance" gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
