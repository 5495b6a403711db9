// Package api exposes the reconciliation engine over HTTP for the web
// UI: accounts and directories, statement upload and parsing, merged
// transaction lists, saving, and the bookkeeping export.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lvu/firemerge/internal/model"
	"github.com/lvu/firemerge/internal/settings"
)

// Ledger is the slice of the Firefly III client the handlers use.
type Ledger interface {
	Accounts(ctx context.Context) ([]model.Account, error)
	Account(ctx context.Context, id int64) (model.Account, error)
	Categories(ctx context.Context) ([]model.Category, error)
	Currencies(ctx context.Context) ([]model.Currency, error)
	Transactions(ctx context.Context, accountID int64, start time.Time) ([]model.Transaction, error)
	StoreTransaction(ctx context.Context, tr model.Transaction) (model.Transaction, error)
	AccountSettings(ctx context.Context, accountID int64) (*settings.AccountSettings, error)
	StoreAccountSettings(ctx context.Context, accountID int64, s settings.AccountSettings) error
	InvalidateAccounts()
	InvalidateTransactions()
}

// StatementStore persists parsed statements per session.
type StatementStore interface {
	Save(ctx context.Context, sessionID string, accountID int64, st []model.StatementTransaction) error
	Load(ctx context.Context, sessionID string, accountID int64) ([]model.StatementTransaction, bool, error)
	Delete(ctx context.Context, sessionID string, accountID int64) error
}

// Dependencies wires the router to its collaborators.
type Dependencies struct {
	Logger     *slog.Logger
	Ledger     Ledger
	Statements StatementStore
}

// NewRouter builds the HTTP handler for the service.
func NewRouter(deps Dependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	h := &handlers{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(deps.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(Session)

		r.Get("/accounts", h.listAccounts)
		r.Get("/accounts/{accountID}", h.getAccount)
		r.Get("/accounts/{accountID}/settings", h.getAccountSettings)
		r.Put("/accounts/{accountID}/settings", h.updateAccountSettings)
		r.Get("/accounts/{accountID}/export", h.exportStatement)

		r.Get("/categories", h.listCategories)
		r.Get("/currencies", h.listCurrencies)

		r.Post("/statement/parse", h.parseStatement)
		r.Get("/statement", h.getStatement)
		r.Delete("/statement", h.deleteStatement)
		r.Get("/statement/configs", h.listConfigs)

		r.Post("/transactions", h.mergeTransactions)
		r.Put("/transactions", h.storeTransaction)
		r.Get("/transactions/descriptions", h.searchDescriptions)
	})

	return r
}

type handlers struct {
	deps Dependencies
}

func (h *handlers) log() *slog.Logger { return h.deps.Logger }
