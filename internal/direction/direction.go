// Package direction maps between the ledger's absolute three-type
// transaction model and the UI's account-relative four-type model.
// Both mappings are pure; Decode(Encode(t, a), a) == t for any ledger
// transaction t that involves a as source or destination.
package direction

import (
	"errors"
	"fmt"

	"github.com/lvu/firemerge/internal/id"
	"github.com/lvu/firemerge/internal/model"
)

// ErrIncompleteTransaction means a decode was attempted on a display
// transaction with no resolvable counter-account. Recoverable: the
// caller keeps the editor open and disables save.
var ErrIncompleteTransaction = errors.New("transaction has no resolvable counter-account")

// AccountMismatchError means a transfer was encoded against an
// account that is neither its source nor its destination. This is a
// data-integrity fault, not a user error.
type AccountMismatchError struct {
	TransactionID int64
	AccountID     int64
}

func (e *AccountMismatchError) Error() string {
	return fmt.Sprintf("transaction %d does not involve account %d", e.TransactionID, e.AccountID)
}

// CounterAccount is the account on the other side of a transaction
// from the viewed account: either one that already exists, or one the
// ledger should create on save.
type CounterAccount interface {
	counterAccount()
}

// ExistingAccount refers to a counter-account by ledger id.
type ExistingAccount struct {
	ID int64
}

// NewAccount names a counter-account that does not exist yet; the
// ledger creates it (as an expense/revenue account) on save.
type NewAccount struct {
	Name string
}

func (ExistingAccount) counterAccount() {}
func (NewAccount) counterAccount()      {}

// Counter resolves the counter-account of a display transaction.
// AccountID wins over AccountName when both are set.
func Counter(tr model.DisplayTransaction) (CounterAccount, error) {
	if tr.AccountID != nil {
		return ExistingAccount{ID: *tr.AccountID}, nil
	}
	if tr.AccountName != "" {
		return NewAccount{Name: tr.AccountName}, nil
	}
	return nil, ErrIncompleteTransaction
}

// Decode translates a display transaction into the ledger's absolute
// form, with the viewed account taking the side its display type
// implies. It is total for any display transaction with a type and a
// resolvable counter-account.
func Decode(tr model.DisplayTransaction, viewed model.Account) (model.Transaction, error) {
	counter, err := Counter(tr)
	if err != nil {
		return model.Transaction{}, err
	}

	currencyID := tr.CurrencyID
	if currencyID == 0 {
		currencyID = viewed.CurrencyID
	}

	out := model.Transaction{
		Date:              tr.Date,
		Amount:            tr.Amount,
		Description:       tr.Description,
		CurrencyID:        currencyID,
		ForeignAmount:     clonePtr(tr.ForeignAmount),
		ForeignCurrencyID: clonePtr(tr.ForeignCurrencyID),
		CategoryID:        clonePtr(tr.CategoryID),
		Reconciled:        tr.Reconciled,
		Notes:             tr.Notes,
	}

	// New lines have synthetic ids; everything else carries its
	// ledger id through the round trip.
	if tr.State != model.StateNew {
		if n, err := id.ParseLedger(tr.ID); err == nil {
			out.ID = n
		}
	}

	viewedID := viewed.ID
	switch tr.Type {
	case model.DisplayWithdrawal:
		out.Type = model.TypeWithdrawal
		setSource(&out, ExistingAccount{ID: viewedID})
		setDestination(&out, counter)
	case model.DisplayTransferOut:
		out.Type = model.TypeTransfer
		setSource(&out, ExistingAccount{ID: viewedID})
		setDestination(&out, counter)
	case model.DisplayDeposit:
		out.Type = model.TypeDeposit
		setSource(&out, counter)
		setDestination(&out, ExistingAccount{ID: viewedID})
	case model.DisplayTransferIn:
		out.Type = model.TypeTransfer
		setSource(&out, counter)
		setDestination(&out, ExistingAccount{ID: viewedID})
	default:
		return model.Transaction{}, fmt.Errorf("unknown display transaction type %q", tr.Type)
	}

	return out, nil
}

// Encode translates a ledger transaction into the account-relative
// display form. Transfers where neither side is the viewed account
// fail with AccountMismatchError.
func Encode(tr model.Transaction, viewed model.Account) (model.DisplayTransaction, error) {
	displayType, counter, err := relativeType(tr, viewed.ID)
	if err != nil {
		return model.DisplayTransaction{}, err
	}

	out := model.DisplayTransaction{
		ID:                id.FromLedger(tr.ID),
		Type:              displayType,
		State:             model.StateUnmatched,
		Description:       tr.Description,
		Date:              tr.Date,
		Amount:            tr.Amount,
		CurrencyID:        tr.CurrencyID,
		ForeignAmount:     clonePtr(tr.ForeignAmount),
		ForeignCurrencyID: clonePtr(tr.ForeignCurrencyID),
		CategoryID:        clonePtr(tr.CategoryID),
		Reconciled:        tr.Reconciled,
		Notes:             tr.Notes,
	}
	switch c := counter.(type) {
	case ExistingAccount:
		cid := c.ID
		out.AccountID = &cid
	case NewAccount:
		out.AccountName = c.Name
	}
	return out, nil
}

// Candidate projects a ledger transaction onto the candidate shape:
// the classification fields only, relative to the viewed account.
func Candidate(tr model.Transaction, viewed model.Account) (model.TransactionCandidate, error) {
	displayType, counter, err := relativeType(tr, viewed.ID)
	if err != nil {
		return model.TransactionCandidate{}, err
	}

	out := model.TransactionCandidate{
		Description: tr.Description,
		Date:        tr.Date,
		Type:        displayType,
		CategoryID:  clonePtr(tr.CategoryID),
		Notes:       tr.Notes,
	}
	if c, ok := counter.(ExistingAccount); ok {
		cid := c.ID
		out.AccountID = &cid
	}
	return out, nil
}

// ViewedFrame returns the transaction with its amounts in the viewed
// account's currency frame. The ledger stores a cross-currency
// transfer in the sending account's currency; when it arrives at the
// viewed account, the foreign pair is what actually hit the balance,
// so the pairs get swapped before display or matching.
func ViewedFrame(tr model.Transaction, viewedID int64) model.Transaction {
	if tr.Type != model.TypeTransfer || tr.ForeignAmount == nil || tr.ForeignCurrencyID == nil {
		return tr
	}
	if tr.DestinationID == nil || *tr.DestinationID != viewedID {
		return tr
	}
	out := tr
	out.ForeignAmount = clonePtr(tr.ForeignAmount)
	out.ForeignCurrencyID = clonePtr(tr.ForeignCurrencyID)
	out.Amount, *out.ForeignAmount = *out.ForeignAmount, out.Amount
	out.CurrencyID, *out.ForeignCurrencyID = *out.ForeignCurrencyID, out.CurrencyID
	return out
}

func relativeType(tr model.Transaction, viewedID int64) (model.DisplayTransactionType, CounterAccount, error) {
	switch tr.Type {
	case model.TypeWithdrawal:
		return model.DisplayWithdrawal, sideCounter(tr.DestinationID, tr.DestinationName), nil
	case model.TypeDeposit:
		return model.DisplayDeposit, sideCounter(tr.SourceID, tr.SourceName), nil
	case model.TypeTransfer:
		switch {
		case tr.SourceID != nil && *tr.SourceID == viewedID:
			return model.DisplayTransferOut, sideCounter(tr.DestinationID, tr.DestinationName), nil
		case tr.DestinationID != nil && *tr.DestinationID == viewedID:
			return model.DisplayTransferIn, sideCounter(tr.SourceID, tr.SourceName), nil
		default:
			return "", nil, &AccountMismatchError{TransactionID: tr.ID, AccountID: viewedID}
		}
	default:
		return "", nil, fmt.Errorf("unknown transaction type %q", tr.Type)
	}
}

// clonePtr keeps encoded/decoded transactions from sharing optional
// fields with their inputs; callers may mutate results freely.
func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func sideCounter(accountID *int64, name string) CounterAccount {
	if accountID != nil {
		return ExistingAccount{ID: *accountID}
	}
	return NewAccount{Name: name}
}

func setSource(tr *model.Transaction, c CounterAccount) {
	switch c := c.(type) {
	case ExistingAccount:
		cid := c.ID
		tr.SourceID = &cid
	case NewAccount:
		tr.SourceName = c.Name
	}
}

func setDestination(tr *model.Transaction, c CounterAccount) {
	switch c := c.(type) {
	case ExistingAccount:
		cid := c.ID
		tr.DestinationID = &cid
	case NewAccount:
		tr.DestinationName = c.Name
	}
}
