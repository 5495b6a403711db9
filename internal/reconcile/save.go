package reconcile

import (
	"context"
	"fmt"

	"github.com/lvu/firemerge/internal/direction"
	"github.com/lvu/firemerge/internal/model"
)

// PrepareSave turns a savable display transaction into the wire form
// ready to persist: the state guard is enforced, the UI-only enriched
// state is normalized away, and a transfer-in with a foreign amount
// has its amounts and currencies swapped into the receiving account's
// frame, which is how the ledger stores cross-currency transfers.
func PrepareSave(tr model.DisplayTransaction, viewed model.Account) (model.Transaction, error) {
	if !CanSave(tr) {
		return model.Transaction{}, fmt.Errorf("%w: state=%s reconciled=%t", ErrNotSavable, tr.State, tr.Reconciled)
	}

	norm := NormalizeForSave(tr)
	wire, err := direction.Decode(norm, viewed)
	if err != nil {
		return model.Transaction{}, err
	}

	if norm.Type == model.DisplayTransferIn && wire.ForeignAmount != nil && wire.ForeignCurrencyID != nil {
		wire.Amount, *wire.ForeignAmount = *wire.ForeignAmount, wire.Amount
		wire.CurrencyID, *wire.ForeignCurrencyID = *wire.ForeignCurrencyID, wire.CurrencyID
	}

	return wire, nil
}

// FinalizeSave converts the ledger's echo of a saved transaction back
// into display form: reconciled, terminal, carrying the stable id.
func FinalizeSave(saved model.Transaction, viewed model.Account) (model.DisplayTransaction, error) {
	display, err := direction.Encode(saved, viewed)
	if err != nil {
		return model.DisplayTransaction{}, err
	}
	display.State = model.StateReconciled
	display.Reconciled = true
	return display, nil
}

// Saver persists one display transaction. Implemented by the ledger
// client wiring; kept as an interface so batch saving is testable.
type Saver interface {
	Save(ctx context.Context, accountID int64, tr model.DisplayTransaction) (model.UpdateResponse, error)
}

// Progress is called after each item of a batch save with the batch
// size and the number of items saved so far.
type Progress func(total, completed int)

// SaveAll persists every annotated transaction in the list, strictly
// sequentially. The first failure aborts the rest; items saved before
// the failure stay saved and their responses are returned alongside
// the error.
func SaveAll(ctx context.Context, saver Saver, accountID int64, transactions []model.DisplayTransaction, progress Progress) ([]model.UpdateResponse, error) {
	var batch []model.DisplayTransaction
	for _, tr := range transactions {
		if tr.State == model.StateAnnotated && CanSave(tr) {
			batch = append(batch, tr)
		}
	}

	total := len(batch)
	responses := make([]model.UpdateResponse, 0, total)
	for i, tr := range batch {
		if err := ctx.Err(); err != nil {
			return responses, err
		}
		resp, err := saver.Save(ctx, accountID, tr)
		if err != nil {
			return responses, fmt.Errorf("saving transaction %s (%d of %d): %w", tr.ID, i+1, total, err)
		}
		responses = append(responses, resp)
		if progress != nil {
			progress(total, i+1)
		}
	}
	return responses, nil
}
