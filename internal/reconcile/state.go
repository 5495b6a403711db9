// Package reconcile implements the statement-line lifecycle: the
// state predicates, candidate enrichment, the merge of a parsed
// statement with the ledger, and the save/batch-save flow.
package reconcile

import (
	"errors"

	"github.com/lvu/firemerge/internal/model"
)

// ErrNotSavable means a save was attempted on a transaction whose
// state forbids it (terminal, or already reconciled).
var ErrNotSavable = errors.New("transaction is not in a savable state")

// CanEdit reports whether the user may still change the transaction's
// classification. Matched, unmatched and reconciled records are
// read-only; annotated ones are committed to their edits.
func CanEdit(tr model.DisplayTransaction) bool {
	switch tr.State {
	case model.StateNew, model.StateEnriched, model.StateAnnotated:
		return true
	default:
		return false
	}
}

// CanSave reports whether the transaction may be persisted: it must
// be in a working state and not already reconciled. Checked before a
// save request is issued and re-checked after any concurrent refresh.
func CanSave(tr model.DisplayTransaction) bool {
	if tr.Reconciled {
		return false
	}
	switch tr.State {
	case model.StateNew, model.StateEnriched, model.StateAnnotated:
		return true
	default:
		return false
	}
}

// NormalizeForSave rewrites the UI-only enriched state back to new:
// the ledger only distinguishes new from annotated.
func NormalizeForSave(tr model.DisplayTransaction) model.DisplayTransaction {
	if tr.State == model.StateEnriched {
		tr.State = model.StateNew
	}
	return tr
}
