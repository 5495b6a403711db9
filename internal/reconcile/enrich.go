package reconcile

import (
	"github.com/lvu/firemerge/internal/model"
)

// Enrich applies a candidate's classification onto a transaction and
// returns the result in the enriched state. The input is never
// mutated; date, amount, notes and the candidate list all survive
// unchanged.
func Enrich(tr model.DisplayTransaction, c model.TransactionCandidate) model.DisplayTransaction {
	out := tr
	out.State = model.StateEnriched
	out.Type = c.Type
	out.Description = c.Description
	out.AccountID = cloneID(c.AccountID)
	out.AccountName = ""
	out.CategoryID = cloneID(c.CategoryID)
	return out
}

// AutoEnrich applies the single candidate of a new transaction, if
// there is exactly one. Anything else passes through untouched.
func AutoEnrich(tr model.DisplayTransaction) model.DisplayTransaction {
	if tr.State == model.StateNew && len(tr.Candidates) == 1 {
		return Enrich(tr, tr.Candidates[0])
	}
	return tr
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
