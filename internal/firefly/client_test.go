package firefly

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvu/firemerge/internal/model"
	"github.com/lvu/firemerge/internal/settings"
)

func page(items string, totalPages int) string {
	return fmt.Sprintf(`{"data":[%s],"meta":{"pagination":{"total_pages":%d}}}`, items, totalPages)
}

func TestAccountsPagesAndFilters(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/accounts", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, page(`{"id":"1","attributes":{"name":"Checking","type":"Asset account","currency_id":"10","iban":"UA1"}}`, 2))
		case "2":
			fmt.Fprint(w, page(
				`{"id":"2","attributes":{"name":"Groceries","type":"Expense account","currency_id":"10"}},`+
					`{"id":"3","attributes":{"name":"Weird","type":"Import account","currency_id":"10"}}`, 2))
		default:
			t.Fatalf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	accounts, err := c.Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, model.Account{ID: 1, Name: "Checking", Type: model.AccountTypeAsset, CurrencyID: 10, IBAN: "UA1"}, accounts[0])
	assert.Equal(t, model.AccountTypeExpense, accounts[1].Type)
}

func TestAccountsCached(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, page(`{"id":"1","attributes":{"name":"Checking","type":"asset","currency_id":1}}`, 1))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	_, err := c.Accounts(context.Background())
	require.NoError(t, err)
	_, err = c.Accounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	c.InvalidateAccounts()
	_, err = c.Accounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestTransactionsSplits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/accounts/7/transactions", r.URL.Path)
		assert.Equal(t, "2024-05-01", r.URL.Query().Get("start"))
		fmt.Fprint(w, page(`{"id":"42","attributes":{"transactions":[{
			"type":"withdrawal","date":"2024-05-02T10:15:00+03:00","amount":"12.50",
			"description":"COFFEE","currency_id":"10","source_id":"7","destination_id":"99",
			"foreign_amount":"0","foreign_currency_id":null,"reconciled":false}]}}`, 1))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	got, err := c.Transactions(context.Background(), 7, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 1)
	tr := got[0]
	assert.Equal(t, int64(42), tr.ID)
	assert.Equal(t, model.TypeWithdrawal, tr.Type)
	assert.Equal(t, "COFFEE", tr.Description)
	assert.True(t, tr.Amount.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, int64(10), tr.CurrencyID)
	require.NotNil(t, tr.SourceID)
	assert.Equal(t, int64(7), *tr.SourceID)
	assert.Nil(t, tr.ForeignAmount)
	assert.Nil(t, tr.ForeignCurrencyID)
}

func TestStoreTransaction(t *testing.T) {
	var gotMethod, gotPath string
	var gotPayload storePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		fmt.Fprint(w, `{"data":{"id":"55","attributes":{"transactions":[{
			"type":"withdrawal","date":"2024-05-02T10:15:00Z","amount":"12.50",
			"description":"COFFEE","currency_id":"10","source_id":"7","destination_id":"99"}]}}}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	tr := model.Transaction{
		Type:            model.TypeWithdrawal,
		Date:            time.Date(2024, 5, 2, 10, 15, 0, 0, time.UTC),
		Amount:          decimal.RequireFromString("12.5"),
		Description:     "COFFEE",
		CurrencyID:      10,
		DestinationName: "Coffee Shop",
	}

	stored, err := c.StoreTransaction(context.Background(), tr)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/v1/transactions", gotPath)
	require.Len(t, gotPayload.Transactions, 1)
	assert.Equal(t, "12.5", gotPayload.Transactions[0].Amount)
	assert.Equal(t, "Coffee Shop", gotPayload.Transactions[0].DestinationName)
	assert.Equal(t, int64(55), stored.ID)

	tr.ID = 55
	_, err = c.StoreTransaction(context.Background(), tr)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/v1/transactions/55", gotPath)
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"no such account"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	_, err := c.Account(context.Background(), 123)
	require.Error(t, err)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "no such account")
}

func TestAccountSettingsRoundTrip(t *testing.T) {
	stored := map[int64][]byte{}
	created := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/accounts/7/attachments":
			if created {
				fmt.Fprint(w, page(`{"id":"5","attributes":{"filename":"firemerge-settings.json","title":"Firemerge settings"}}`, 1))
			} else {
				fmt.Fprint(w, page(``, 1))
			}
		case r.URL.Path == "/api/v1/attachments" && r.Method == http.MethodPost:
			created = true
			fmt.Fprint(w, `{"data":{"id":"5","attributes":{"filename":"firemerge-settings.json","title":"Firemerge settings"}}}`)
		case r.URL.Path == "/api/v1/attachments/5/upload":
			raw, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			stored[5] = raw
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/api/v1/attachments/5/download":
			_, _ = w.Write(stored[5])
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")

	got, err := c.AccountSettings(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, got)

	want := settings.AccountSettings{Blacklist: []string{"fee"}}
	require.NoError(t, c.StoreAccountSettings(context.Background(), 7, want))

	got, err = c.AccountSettings(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Blacklist, got.Blacklist)
}

