package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lvu/firemerge/internal/direction"
	"github.com/lvu/firemerge/internal/match"
	"github.com/lvu/firemerge/internal/model"
	"github.com/lvu/firemerge/internal/reconcile"
)

// ledgerWindow is how far back transactions are fetched when merging
// or searching descriptions.
const ledgerWindow = 365 * 24 * time.Hour

// framedTransactions fetches the account's ledger transactions with
// amounts in the account's own currency frame.
func (h *handlers) framedTransactions(r *http.Request, accountID int64, start time.Time) ([]model.Transaction, error) {
	transactions, err := h.deps.Ledger.Transactions(r.Context(), accountID, start)
	if err != nil {
		return nil, err
	}
	out := make([]model.Transaction, 0, len(transactions))
	for _, tr := range transactions {
		out = append(out, direction.ViewedFrame(tr, accountID))
	}
	return out, nil
}

// mergeTransactions returns the display list for an account: its
// ledger transactions merged with the statement from the request body
// or, when the body is empty, the one stored for this session.
func (h *handlers) mergeTransactions(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDQuery(r)
	if !ok {
		badRequest(w, "account_id is required")
		return
	}
	ctx := r.Context()

	var statement []model.StatementTransaction
	body, err := io.ReadAll(r.Body)
	if err != nil {
		badRequest(w, "reading request body: "+err.Error())
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &statement); err != nil {
			badRequest(w, "invalid statement payload: "+err.Error())
			return
		}
		if err := h.deps.Statements.Save(ctx, SessionID(ctx), accountID, statement); err != nil {
			writeError(w, h.log(), err)
			return
		}
	} else {
		stored, found, err := h.deps.Statements.Load(ctx, SessionID(ctx), accountID)
		if err != nil {
			writeError(w, h.log(), err)
			return
		}
		if !found {
			badRequest(w, "no statement uploaded for this session")
			return
		}
		statement = stored
	}

	account, err := h.deps.Ledger.Account(ctx, accountID)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	currencies, err := h.deps.Ledger.Currencies(ctx)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}

	start := time.Now()
	for _, line := range statement {
		if line.Date.Before(start) {
			start = line.Date
		}
	}
	start = start.Add(-ledgerWindow)

	transactions, err := h.framedTransactions(r, accountID, start)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}

	merged, err := reconcile.Merge(transactions, statement, currencies, account)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	writeJSON(w, http.StatusOK, merged)
}

// storeTransaction persists one display transaction and returns its
// saved form, plus the counter-account when the save created one.
func (h *handlers) storeTransaction(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDQuery(r)
	if !ok {
		badRequest(w, "account_id is required")
		return
	}
	var tr model.DisplayTransaction
	if err := json.NewDecoder(r.Body).Decode(&tr); err != nil {
		badRequest(w, "invalid transaction payload: "+err.Error())
		return
	}

	ctx := r.Context()
	account, err := h.deps.Ledger.Account(ctx, accountID)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}

	createsAccount := tr.AccountID == nil && tr.AccountName != ""

	wire, err := reconcile.PrepareSave(tr, account)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	stored, err := h.deps.Ledger.StoreTransaction(ctx, wire)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}

	display, err := reconcile.FinalizeSave(direction.ViewedFrame(stored, accountID), account)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}

	resp := model.UpdateResponse{Transaction: display}
	if createsAccount {
		if counterID := counterAccountID(stored, accountID); counterID != 0 {
			created, err := h.deps.Ledger.Account(ctx, counterID)
			if err != nil {
				writeError(w, h.log(), err)
				return
			}
			resp.Account = &created
			h.deps.Ledger.InvalidateAccounts()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func counterAccountID(tr model.Transaction, viewedID int64) int64 {
	if tr.SourceID != nil && *tr.SourceID != viewedID {
		return *tr.SourceID
	}
	if tr.DestinationID != nil && *tr.DestinationID != viewedID {
		return *tr.DestinationID
	}
	return 0
}

// searchDescriptions powers the description autocomplete: past
// transactions of the account ranked against the typed query.
func (h *handlers) searchDescriptions(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDQuery(r)
	if !ok {
		badRequest(w, "account_id is required")
		return
	}
	query := r.URL.Query().Get("query")
	if query == "" {
		badRequest(w, "query is required")
		return
	}

	transactions, err := h.framedTransactions(r, accountID, time.Now().Add(-ledgerWindow))
	if err != nil {
		writeError(w, h.log(), err)
		return
	}

	pool := make([]model.TransactionCandidate, 0, len(transactions))
	for _, tr := range transactions {
		c, err := direction.Candidate(tr, model.Account{ID: accountID})
		if err != nil {
			writeError(w, h.log(), err)
			return
		}
		pool = append(pool, c)
	}
	pool = match.Deduplicate(pool, true)

	filtered := pool[:0]
	for _, c := range pool {
		if strings.Contains(strings.ToLower(c.Description), strings.ToLower(query)) {
			filtered = append(filtered, c)
		}
	}

	candidates := match.BestCandidates(filtered, query, match.ByDescription, match.MaxCandidates, 0)
	writeJSON(w, http.StatusOK, candidates)
}
