package reconcile

import (
	"fmt"
	"sort"
	"time"

	"github.com/lvu/firemerge/internal/direction"
	"github.com/lvu/firemerge/internal/id"
	"github.com/lvu/firemerge/internal/match"
	"github.com/lvu/firemerge/internal/model"
)

// matchWindow is how far apart a ledger transaction and a statement
// line may be dated and still be considered the same operation.
const matchWindow = 24 * time.Hour

// Merge lines up a parsed statement against the account's ledger
// transactions and returns the display list, newest first:
//
//   - a line matching a ledger transaction (same absolute amount,
//     dated within a day) becomes matched, or annotated when its
//     notes still need persisting;
//   - a line with no match becomes new, with ranked candidates;
//   - a ledger transaction inside the statement window that no line
//     claimed becomes unmatched.
func Merge(transactions []model.Transaction, statement []model.StatementTransaction, currencies []model.Currency, viewed model.Account) ([]model.DisplayTransaction, error) {
	pool := make([]model.TransactionCandidate, 0, len(transactions))
	for _, tr := range transactions {
		c, err := direction.Candidate(tr, viewed)
		if err != nil {
			return nil, fmt.Errorf("projecting transaction %d: %w", tr.ID, err)
		}
		pool = append(pool, c)
	}
	pool = match.Deduplicate(pool, false)

	currencyByCode := make(map[string]model.Currency, len(currencies))
	for _, c := range currencies {
		currencyByCode[c.Code] = c
	}

	remaining := append([]model.Transaction(nil), transactions...)
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].Date.After(remaining[j].Date)
	})

	result := make([]model.DisplayTransaction, 0, len(statement))
	for idx, line := range statement {
		if pos := matchLine(remaining, line); pos >= 0 {
			tr := remaining[pos]
			remaining = append(remaining[:pos], remaining[pos+1:]...)

			display, err := direction.Encode(tr, viewed)
			if err != nil {
				return nil, fmt.Errorf("encoding transaction %d: %w", tr.ID, err)
			}
			if tr.Notes == line.Notes {
				display.State = model.StateMatched
			} else {
				display.State = model.StateAnnotated
			}
			display.Notes = line.Notes
			result = append(result, display)
			continue
		}

		display, err := newLine(idx, line, pool, currencyByCode)
		if err != nil {
			return nil, err
		}
		result = append(result, display)
	}

	// Ledger transactions newer than the statement window that no
	// line claimed still show up, as unmatched.
	if len(statement) > 0 {
		minDate := statement[0].Date
		for _, line := range statement[1:] {
			if line.Date.Before(minDate) {
				minDate = line.Date
			}
		}
		cutoff := minDate.Add(-matchWindow)
		for _, tr := range remaining {
			if tr.Date.Before(cutoff) {
				continue
			}
			display, err := direction.Encode(tr, viewed)
			if err != nil {
				return nil, fmt.Errorf("encoding transaction %d: %w", tr.ID, err)
			}
			result = append(result, display)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})
	return result, nil
}

// matchLine finds the remaining ledger transaction that corresponds
// to a statement line: equal absolute amount, dated within the match
// window, preferring the best notes match. Returns -1 when nothing
// qualifies.
func matchLine(remaining []model.Transaction, line model.StatementTransaction) int {
	var positions []int
	for i, tr := range remaining {
		if !tr.Amount.Abs().Equal(line.Amount.Abs()) {
			continue
		}
		delta := tr.Date.Sub(line.Date)
		if delta < 0 {
			delta = -delta
		}
		if delta < matchWindow {
			positions = append(positions, i)
		}
	}
	if len(positions) == 0 {
		return -1
	}

	best := match.Best(positions, line.Notes, func(pos int) string {
		return remaining[pos].Notes
	}, 1, match.ScoreCutoff)
	if len(best) > 0 {
		return best[0].Item
	}
	return positions[0]
}

func newLine(idx int, line model.StatementTransaction, pool []model.TransactionCandidate, currencyByCode map[string]model.Currency) (model.DisplayTransaction, error) {
	display := model.DisplayTransaction{
		ID:          id.FromStatementLine(idx, line),
		State:       model.StateNew,
		Description: line.Name,
		Date:        line.Date,
		Amount:      line.Amount.Abs(),
		Notes:       line.Notes,
		Candidates:  match.BestCandidates(pool, line.Notes, match.ByNotes, match.MaxCandidates, match.ScoreCutoff),
	}

	if line.Amount.IsNegative() {
		display.Type = model.DisplayWithdrawal
	} else {
		display.Type = model.DisplayDeposit
	}

	if line.ForeignAmount != nil {
		abs := line.ForeignAmount.Abs()
		display.ForeignAmount = &abs
	}
	if line.ForeignCurrencyCode != "" {
		currency, ok := currencyByCode[line.ForeignCurrencyCode]
		if !ok {
			return model.DisplayTransaction{}, fmt.Errorf("unknown currency code %q on statement line %d", line.ForeignCurrencyCode, idx)
		}
		cid := currency.ID
		display.ForeignCurrencyID = &cid
	}

	return display, nil
}
