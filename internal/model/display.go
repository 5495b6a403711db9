package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionState is the reconciliation lifecycle state of a
// display transaction.
type TransactionState string

const (
	// StateUnmatched marks a ledger transaction inside the statement
	// window that no statement line claimed. Terminal.
	StateUnmatched TransactionState = "unmatched"
	// StateMatched marks a statement line that corresponds to an
	// existing ledger transaction. Terminal, read-only.
	StateMatched TransactionState = "matched"
	// StateNew marks a statement line with no match; the user must
	// classify it before it can be saved.
	StateNew TransactionState = "new"
	// StateEnriched marks a new line with a candidate applied but not
	// yet confirmed by the user.
	StateEnriched TransactionState = "enriched"
	// StateAnnotated marks a line whose fields the user edited or
	// confirmed; ready to save.
	StateAnnotated TransactionState = "annotated"
	// StateReconciled marks a line persisted to the ledger. Terminal.
	StateReconciled TransactionState = "reconciled"
)

// DisplayTransactionType is the account-relative transaction kind:
// a transfer is split into transfer-in and transfer-out depending on
// which side of it the viewed account sits.
type DisplayTransactionType string

const (
	DisplayWithdrawal  DisplayTransactionType = "withdrawal"
	DisplayDeposit     DisplayTransactionType = "deposit"
	DisplayTransferIn  DisplayTransactionType = "transfer-in"
	DisplayTransferOut DisplayTransactionType = "transfer-out"
)

// TransactionCandidate is a suggested classification for a statement
// line, derived from a historical transaction. Never persisted.
type TransactionCandidate struct {
	Description string                 `json:"description"`
	Date        time.Time              `json:"date"`
	Type        DisplayTransactionType `json:"type"`
	CategoryID  *int64                 `json:"category_id,omitempty"`
	AccountID   *int64                 `json:"account_id,omitempty"`
	Score       float64                `json:"score,omitempty"`
	Notes       string                 `json:"notes,omitempty"`
}

// DisplayTransaction is a transaction as the UI sees it, relative to
// the currently viewed account. At most one of AccountID/AccountName
// is meaningful at save time; AccountName without AccountID means
// "create this counter-account on save".
type DisplayTransaction struct {
	ID                string                 `json:"id"`
	Type              DisplayTransactionType `json:"type"`
	State             TransactionState       `json:"state"`
	Description       string                 `json:"description"`
	Date              time.Time              `json:"date"`
	Amount            decimal.Decimal        `json:"amount"`
	CurrencyID        int64                  `json:"currency_id,omitempty"`
	ForeignAmount     *decimal.Decimal       `json:"foreign_amount,omitempty"`
	ForeignCurrencyID *int64                 `json:"foreign_currency_id,omitempty"`
	AccountID         *int64                 `json:"account_id,omitempty"`
	AccountName       string                 `json:"account_name,omitempty"`
	CategoryID        *int64                 `json:"category_id,omitempty"`
	Notes             string                 `json:"notes,omitempty"`
	Reconciled        bool                   `json:"reconciled,omitempty"`
	Candidates        []TransactionCandidate `json:"candidates,omitempty"`
}

// StatementTransaction is one line parsed from a bank statement file.
// Held client-side only; replaced wholesale when a new file is parsed.
type StatementTransaction struct {
	Name                string           `json:"name"`
	Date                time.Time        `json:"date"`
	Amount              decimal.Decimal  `json:"amount"`
	ForeignAmount       *decimal.Decimal `json:"foreign_amount,omitempty"`
	ForeignCurrencyCode string           `json:"foreign_currency_code,omitempty"`
	Notes               string           `json:"notes,omitempty"`
}

// UpdateResponse is what a successful save returns: the canonical
// saved transaction and, when the save created a counter-account or
// moved a balance, the affected account.
type UpdateResponse struct {
	Transaction DisplayTransaction `json:"transaction"`
	Account     *Account           `json:"account,omitempty"`
}
