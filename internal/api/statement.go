package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/lvu/firemerge/internal/settings"
	"github.com/lvu/firemerge/internal/statement"
)

const maxStatementSize = 32 << 20 // 32 MiB upload cap

func accountIDQuery(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("account_id"), 10, 64)
	return id, err == nil
}

// parseStatement handles the statement file upload: parses it with
// the account's parser config and stores the result in the session.
func (h *handlers) parseStatement(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDQuery(r)
	if !ok {
		badRequest(w, "account_id is required")
		return
	}

	loc := time.UTC
	if tz := r.URL.Query().Get("timezone"); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			h.log().Warn("invalid timezone, using UTC", "timezone", tz)
		} else {
			loc = parsed
		}
	}

	if err := r.ParseMultipartForm(maxStatementSize); err != nil {
		badRequest(w, "invalid multipart upload: "+err.Error())
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "missing statement file")
		return
	}
	defer file.Close()

	ctx := r.Context()
	account, err := h.deps.Ledger.Account(ctx, accountID)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	accountSettings, err := h.deps.Ledger.AccountSettings(ctx, accountID)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	if accountSettings == nil || accountSettings.ParserSettings == nil {
		badRequest(w, "account has no parser settings")
		return
	}

	currencies, err := h.deps.Ledger.Currencies(ctx)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	var primaryCode string
	for _, c := range currencies {
		if c.ID == account.CurrencyID {
			primaryCode = c.Code
			break
		}
	}

	parsed, err := statement.Parse(file, *accountSettings.ParserSettings, statement.ParseOptions{
		Blacklist:       accountSettings.BlacklistMatcher(),
		Location:        loc,
		AccountIBAN:     account.IBAN,
		PrimaryCurrency: primaryCode,
	})
	if err != nil {
		writeError(w, h.log(), err)
		return
	}

	if err := h.deps.Statements.Save(ctx, SessionID(ctx), accountID, parsed); err != nil {
		writeError(w, h.log(), err)
		return
	}
	writeJSON(w, http.StatusOK, parsed)
}

// getStatement returns the statement stored for this session, so the
// UI survives a reload without a re-upload.
func (h *handlers) getStatement(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDQuery(r)
	if !ok {
		badRequest(w, "account_id is required")
		return
	}
	st, found, err := h.deps.Statements.Load(r.Context(), SessionID(r.Context()), accountID)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no statement for this session"})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handlers) deleteStatement(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDQuery(r)
	if !ok {
		badRequest(w, "account_id is required")
		return
	}
	if err := h.deps.Statements.Delete(r.Context(), SessionID(r.Context()), accountID); err != nil {
		writeError(w, h.log(), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listConfigs returns the parser presets shipped with the binary.
func (h *handlers) listConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := settings.BuiltinConfigs()
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	writeJSON(w, http.StatusOK, configs)
}
