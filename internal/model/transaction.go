package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the wire-level (absolute) transaction kind.
// A transfer carries both a real source and a real destination; a
// withdrawal or deposit has one real account and one expense/revenue
// counterpart.
type TransactionType string

const (
	TypeWithdrawal TransactionType = "withdrawal"
	TypeDeposit    TransactionType = "deposit"
	TypeTransfer   TransactionType = "transfer"
)

// Transaction is a ledger transaction as Firefly III stores it.
// A nil SourceID (or DestinationID) together with a non-empty name
// asks the ledger to create that account on save.
type Transaction struct {
	ID                int64            `json:"id,omitempty"`
	Type              TransactionType  `json:"type"`
	Date              time.Time        `json:"date"`
	Amount            decimal.Decimal  `json:"amount"`
	Description       string           `json:"description"`
	CurrencyID        int64            `json:"currency_id"`
	ForeignAmount     *decimal.Decimal `json:"foreign_amount,omitempty"`
	ForeignCurrencyID *int64           `json:"foreign_currency_id,omitempty"`
	CategoryID        *int64           `json:"category_id,omitempty"`
	SourceID          *int64           `json:"source_id,omitempty"`
	SourceName        string           `json:"source_name,omitempty"`
	DestinationID     *int64           `json:"destination_id,omitempty"`
	DestinationName   string           `json:"destination_name,omitempty"`
	Reconciled        bool             `json:"reconciled,omitempty"`
	Notes             string           `json:"notes,omitempty"`
}
