package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvu/firemerge/internal/export"
	"github.com/lvu/firemerge/internal/model"
	"github.com/lvu/firemerge/internal/settings"
	"github.com/lvu/firemerge/internal/statement"
)

type fakeLedger struct {
	accounts     []model.Account
	currencies   []model.Currency
	transactions []model.Transaction
	settings     map[int64]*settings.AccountSettings
	stored       []model.Transaction
	nextID       int64
}

func (f *fakeLedger) Accounts(context.Context) ([]model.Account, error) { return f.accounts, nil }

func (f *fakeLedger) Account(_ context.Context, id int64) (model.Account, error) {
	for _, a := range f.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return model.Account{}, fmt.Errorf("account %d not found", id)
}

func (f *fakeLedger) Categories(context.Context) ([]model.Category, error) { return nil, nil }

func (f *fakeLedger) Currencies(context.Context) ([]model.Currency, error) {
	return f.currencies, nil
}

func (f *fakeLedger) Transactions(context.Context, int64, time.Time) ([]model.Transaction, error) {
	return f.transactions, nil
}

func (f *fakeLedger) StoreTransaction(_ context.Context, tr model.Transaction) (model.Transaction, error) {
	if tr.ID == 0 {
		f.nextID++
		tr.ID = f.nextID
	}
	if tr.SourceID == nil && tr.SourceName != "" {
		id := int64(900)
		tr.SourceID = &id
		f.accounts = append(f.accounts, model.Account{ID: id, Name: tr.SourceName, Type: model.AccountTypeRevenue})
	}
	if tr.DestinationID == nil && tr.DestinationName != "" {
		id := int64(901)
		tr.DestinationID = &id
		f.accounts = append(f.accounts, model.Account{ID: id, Name: tr.DestinationName, Type: model.AccountTypeExpense})
	}
	f.stored = append(f.stored, tr)
	return tr, nil
}

func (f *fakeLedger) AccountSettings(_ context.Context, id int64) (*settings.AccountSettings, error) {
	return f.settings[id], nil
}

func (f *fakeLedger) StoreAccountSettings(_ context.Context, id int64, s settings.AccountSettings) error {
	if f.settings == nil {
		f.settings = map[int64]*settings.AccountSettings{}
	}
	f.settings[id] = &s
	return nil
}

func (f *fakeLedger) InvalidateAccounts()     {}
func (f *fakeLedger) InvalidateTransactions() {}

type memStatements struct {
	data map[string][]model.StatementTransaction
}

func (m *memStatements) key(sessionID string, accountID int64) string {
	return fmt.Sprintf("%s:%d", sessionID, accountID)
}

func (m *memStatements) Save(_ context.Context, sessionID string, accountID int64, st []model.StatementTransaction) error {
	if m.data == nil {
		m.data = map[string][]model.StatementTransaction{}
	}
	m.data[m.key(sessionID, accountID)] = st
	return nil
}

func (m *memStatements) Load(_ context.Context, sessionID string, accountID int64) ([]model.StatementTransaction, bool, error) {
	st, ok := m.data[m.key(sessionID, accountID)]
	return st, ok, nil
}

func (m *memStatements) Delete(_ context.Context, sessionID string, accountID int64) error {
	delete(m.data, m.key(sessionID, accountID))
	return nil
}

func i64(v int64) *int64 { return &v }

func newTestLedger() *fakeLedger {
	return &fakeLedger{
		accounts: []model.Account{
			{ID: 1, Name: "Checking", Type: model.AccountTypeAsset, CurrencyID: 10},
			{ID: 7, Name: "Groceries Store", Type: model.AccountTypeExpense},
		},
		currencies: []model.Currency{
			{ID: 10, Code: "EUR"},
			{ID: 20, Code: "USD"},
		},
		transactions: []model.Transaction{
			{
				ID:            42,
				Type:          model.TypeWithdrawal,
				Date:          time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
				Amount:        decimal.RequireFromString("12.50"),
				Description:   "COFFEE SHOP",
				CurrencyID:    10,
				SourceID:      i64(1),
				DestinationID: i64(7),
				Notes:         "Payee: COFFEE SHOP",
			},
		},
		nextID: 100,
	}
}

func newTestServer(t *testing.T, ledger *fakeLedger) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(Dependencies{
		Ledger:     ledger,
		Statements: &memStatements{},
	}))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func sessionClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, newTestLedger())
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListAccounts(t *testing.T) {
	srv := newTestServer(t, newTestLedger())
	var accounts []model.Account
	resp := doJSON(t, http.DefaultClient, http.MethodGet, srv.URL+"/api/accounts", nil, &accounts)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, accounts, 2)
	assert.Equal(t, "Checking", accounts[0].Name)
}

func TestMergeWithBodyThenSession(t *testing.T) {
	srv := newTestServer(t, newTestLedger())
	client := sessionClient(t)

	statement := []model.StatementTransaction{
		{
			Name:   "COFFEE SHOP",
			Date:   time.Date(2024, 5, 2, 10, 15, 0, 0, time.UTC),
			Amount: decimal.RequireFromString("-12.50"),
			Notes:  "Payee: COFFEE SHOP",
		},
		{
			Name:   "NEW VENDOR",
			Date:   time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC),
			Amount: decimal.RequireFromString("-40.00"),
			Notes:  "Payee: NEW VENDOR",
		},
	}

	var merged []model.DisplayTransaction
	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/transactions?account_id=1", statement, &merged)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, merged, 2)

	// Newest first: the unmatched new vendor line, then the match.
	assert.Equal(t, model.StateNew, merged[0].State)
	assert.Equal(t, "NEW VENDOR", merged[0].Description)
	assert.Equal(t, model.StateMatched, merged[1].State)

	// The statement was persisted for the session: an empty body
	// merge reuses it.
	resp = doJSON(t, client, http.MethodPost, srv.URL+"/api/transactions?account_id=1", nil, &merged)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, merged, 2)

	// A fresh session has no statement.
	resp = doJSON(t, sessionClient(t), http.MethodPost, srv.URL+"/api/transactions?account_id=1", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStoreTransactionCreatesAccount(t *testing.T) {
	ledger := newTestLedger()
	srv := newTestServer(t, ledger)

	tr := model.DisplayTransaction{
		ID:          "stmt:0:abc",
		Type:        model.DisplayWithdrawal,
		State:       model.StateNew,
		Description: "NEW VENDOR",
		Date:        time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("40.00"),
		AccountName: "New Vendor Ltd",
	}

	var got model.UpdateResponse
	resp := doJSON(t, http.DefaultClient, http.MethodPut, srv.URL+"/api/transactions?account_id=1", tr, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, model.StateReconciled, got.Transaction.State)
	assert.True(t, got.Transaction.Reconciled)
	require.NotNil(t, got.Account)
	assert.Equal(t, "New Vendor Ltd", got.Account.Name)

	require.Len(t, ledger.stored, 1)
	assert.Equal(t, model.TypeWithdrawal, ledger.stored[0].Type)
	require.NotNil(t, ledger.stored[0].SourceID)
	assert.Equal(t, int64(1), *ledger.stored[0].SourceID)
}

func TestStoreTransactionRejectsUnsavable(t *testing.T) {
	srv := newTestServer(t, newTestLedger())

	tr := model.DisplayTransaction{
		ID:     "42",
		Type:   model.DisplayWithdrawal,
		State:  model.StateMatched,
		Amount: decimal.RequireFromString("12.50"),
	}
	resp := doJSON(t, http.DefaultClient, http.MethodPut, srv.URL+"/api/transactions?account_id=1", tr, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSearchDescriptions(t *testing.T) {
	srv := newTestServer(t, newTestLedger())

	var candidates []model.TransactionCandidate
	resp := doJSON(t, http.DefaultClient, http.MethodGet, srv.URL+"/api/transactions/descriptions?account_id=1&query=coffee", nil, &candidates)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, candidates, 1)
	assert.Equal(t, "COFFEE SHOP", candidates[0].Description)

	resp = doJSON(t, http.DefaultClient, http.MethodGet, srv.URL+"/api/transactions/descriptions?account_id=1&query=zzz", nil, &candidates)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAccountSettingsRoundTrip(t *testing.T) {
	srv := newTestServer(t, newTestLedger())
	client := http.DefaultClient

	payload := settings.AccountSettings{Blacklist: []string{"fee"}}
	resp := doJSON(t, client, http.MethodPut, srv.URL+"/api/accounts/1/settings", payload, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var got *settings.AccountSettings
	resp = doJSON(t, client, http.MethodGet, srv.URL+"/api/accounts/1/settings", nil, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, got)
	assert.Equal(t, []string{"fee"}, got.Blacklist)
}

func TestStatementConfigs(t *testing.T) {
	srv := newTestServer(t, newTestLedger())

	var configs []settings.Config
	resp := doJSON(t, http.DefaultClient, http.MethodGet, srv.URL+"/api/statement/configs", nil, &configs)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, configs)
}

func TestParseStatementEndpoint(t *testing.T) {
	ledger := newTestLedger()
	ledger.settings = map[int64]*settings.AccountSettings{
		1: {
			Blacklist: []string{"bank fee"},
			ParserSettings: &statement.ParserSettings{
				Columns: []statement.ColumnInfo{
					{Name: "Date", Role: statement.RoleDate},
					{Name: "Description", Role: statement.RoleName},
					{Name: "Amount", Role: statement.RoleAmount},
				},
				Format:     statement.FormatSettings{Format: statement.FormatCSV},
				DateFormat: "%Y-%m-%d",
			},
		},
	}
	srv := newTestServer(t, ledger)
	client := sessionClient(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "statement.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("Date,Description,Amount\n2024-05-02,COFFEE SHOP,-12.50\n2024-05-03,BANK FEE,-5.00\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/statement/parse?account_id=1&timezone=UTC", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed []model.StatementTransaction
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.Len(t, parsed, 1)
	assert.Equal(t, "COFFEE SHOP", parsed[0].Name)

	// The parsed statement landed in the session store.
	var stored []model.StatementTransaction
	getResp := doJSON(t, client, http.MethodGet, srv.URL+"/api/statement?account_id=1", nil, &stored)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	assert.Len(t, stored, 1)

	// And can be dropped again.
	delResp := doJSON(t, client, http.MethodDelete, srv.URL+"/api/statement?account_id=1", nil, nil)
	require.Equal(t, http.StatusNoContent, delResp.StatusCode)
	getResp = doJSON(t, client, http.MethodGet, srv.URL+"/api/statement?account_id=1", nil, nil)
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestExportStatement(t *testing.T) {
	ledger := newTestLedger()
	template := []export.Field{
		{Label: "Date", Type: export.FieldDate, Format: "%Y-%m-%d"},
		{Label: "Amount", Type: export.FieldAmount},
		{Label: "Currency", Type: export.FieldCurrencyCode},
	}
	ledger.settings = map[int64]*settings.AccountSettings{
		1: {ExportSettings: &export.Settings{Withdrawal: &template}},
	}
	srv := newTestServer(t, ledger)

	resp, err := http.Get(srv.URL + "/api/accounts/1/export?start_date=2024-01-01")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-02,12.50,EUR\n", string(body))
}

func TestExportStatementWithoutSettings(t *testing.T) {
	srv := newTestServer(t, newTestLedger())

	resp, err := http.Get(srv.URL + "/api/accounts/1/export?start_date=2024-01-01")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
