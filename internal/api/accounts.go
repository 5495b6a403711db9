package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lvu/firemerge/internal/export"
	"github.com/lvu/firemerge/internal/settings"
)

func accountIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "accountID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid account id %q", raw)
	}
	return id, nil
}

func (h *handlers) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.deps.Ledger.Accounts(r.Context())
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *handlers) getAccount(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	account, err := h.deps.Ledger.Account(r.Context(), id)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *handlers) getAccountSettings(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	s, err := h.deps.Ledger.AccountSettings(r.Context(), id)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *handlers) updateAccountSettings(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var s settings.AccountSettings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		badRequest(w, "invalid settings payload: "+err.Error())
		return
	}
	if err := s.Validate(); err != nil {
		writeError(w, h.log(), err)
		return
	}
	if err := h.deps.Ledger.StoreAccountSettings(r.Context(), id, s); err != nil {
		writeError(w, h.log(), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.deps.Ledger.Categories(r.Context())
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *handlers) listCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.deps.Ledger.Currencies(r.Context())
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	writeJSON(w, http.StatusOK, currencies)
}

// exportStatement streams the bookkeeping CSV for an account from
// start_date onwards, shaped by the account's export template.
func (h *handlers) exportStatement(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	start, err := time.Parse("2006-01-02", r.URL.Query().Get("start_date"))
	if err != nil {
		badRequest(w, "invalid start_date, expected YYYY-MM-DD")
		return
	}

	ctx := r.Context()
	accountSettings, err := h.deps.Ledger.AccountSettings(ctx, id)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	if accountSettings == nil || accountSettings.ExportSettings == nil {
		badRequest(w, "account has no export settings")
		return
	}

	accounts, err := h.deps.Ledger.Accounts(ctx)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	currencies, err := h.deps.Ledger.Currencies(ctx)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	transactions, err := h.deps.Ledger.Transactions(ctx, id, start)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}

	lookups := export.Lookups{
		AccountNames:  make(map[int64]string, len(accounts)),
		CurrencyCodes: make(map[int64]string, len(currencies)),
	}
	for _, a := range accounts {
		lookups.AccountNames[a.ID] = a.Name
	}
	for _, c := range currencies {
		lookups.CurrencyCodes[c.ID] = c.Code
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="firemerge_statement_%d_%s.csv"`, id, start.Format("2006-01-02")))
	if err := export.WriteCSV(w, transactions, *accountSettings.ExportSettings, lookups); err != nil {
		h.log().Error("export failed", "account_id", id, "error", err)
	}
}
