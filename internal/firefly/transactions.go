package firefly

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/itchyny/timefmt-go"
	"github.com/shopspring/decimal"

	"github.com/lvu/firemerge/internal/model"
)

type transactionAttributes struct {
	Type              model.TransactionType `json:"type"`
	Date              time.Time             `json:"date"`
	Amount            decimal.Decimal       `json:"amount"`
	Description       string                `json:"description"`
	CurrencyID        flexID                `json:"currency_id"`
	ForeignAmount     *decimal.Decimal      `json:"foreign_amount"`
	ForeignCurrencyID *flexID               `json:"foreign_currency_id"`
	CategoryID        *flexID               `json:"category_id"`
	SourceID          *flexID               `json:"source_id"`
	SourceName        string                `json:"source_name"`
	DestinationID     *flexID               `json:"destination_id"`
	DestinationName   string                `json:"destination_name"`
	Reconciled        bool                  `json:"reconciled"`
	Notes             string                `json:"notes"`
}

func (a transactionAttributes) toModel(journalID int64) model.Transaction {
	return model.Transaction{
		ID:                journalID,
		Type:              a.Type,
		Date:              a.Date,
		Amount:            a.Amount,
		Description:       a.Description,
		CurrencyID:        int64(a.CurrencyID),
		ForeignAmount:     decimalPtr(a.ForeignAmount),
		ForeignCurrencyID: a.ForeignCurrencyID.ptr(),
		CategoryID:        a.CategoryID.ptr(),
		SourceID:          a.SourceID.ptr(),
		SourceName:        a.SourceName,
		DestinationID:     a.DestinationID.ptr(),
		DestinationName:   a.DestinationName,
		Reconciled:        a.Reconciled,
		Notes:             a.Notes,
	}
}

// Transactions lists the account's transactions from start onwards,
// newest first as Firefly III returns them. Splits of a journal all
// carry the journal's id.
func (c *Client) Transactions(ctx context.Context, accountID int64, start time.Time) ([]model.Transaction, error) {
	key := fmt.Sprintf("%d:%s", accountID, start.Format("2006-01-02"))
	return c.transactions.GetOrLoad(ctx, key, func(ctx context.Context) ([]model.Transaction, error) {
		var out []model.Transaction
		query := url.Values{
			"start": {start.Format("2006-01-02")},
			"limit": {fmt.Sprint(pageLimit)},
		}
		path := fmt.Sprintf("v1/accounts/%d/transactions", accountID)
		err := c.pagedGet(ctx, path, query, func(item apiItem) error {
			var attrs struct {
				Transactions []transactionAttributes `json:"transactions"`
			}
			if err := item.decode(&attrs); err != nil {
				return err
			}
			for _, split := range attrs.Transactions {
				out = append(out, split.toModel(int64(item.ID)))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("listing transactions of account %d: %w", accountID, err)
		}
		return out, nil
	})
}

// InvalidateTransactions drops every cached transaction list. Keys
// carry the start date, so flushing is simpler than tracking them.
func (c *Client) InvalidateTransactions() {
	c.transactions.Clear()
}

type storeSplit struct {
	Type              model.TransactionType `json:"type"`
	Date              string                `json:"date"`
	Amount            string                `json:"amount"`
	Description       string                `json:"description"`
	CurrencyID        int64                 `json:"currency_id,omitempty"`
	ForeignAmount     string                `json:"foreign_amount,omitempty"`
	ForeignCurrencyID int64                 `json:"foreign_currency_id,omitempty"`
	CategoryID        int64                 `json:"category_id,omitempty"`
	SourceID          int64                 `json:"source_id,omitempty"`
	SourceName        string                `json:"source_name,omitempty"`
	DestinationID     int64                 `json:"destination_id,omitempty"`
	DestinationName   string                `json:"destination_name,omitempty"`
	Reconciled        bool                  `json:"reconciled"`
	Notes             string                `json:"notes,omitempty"`
}

type storePayload struct {
	Transactions []storeSplit `json:"transactions"`
}

func toStoreSplit(tr model.Transaction) storeSplit {
	s := storeSplit{
		Type:            tr.Type,
		Date:            timefmt.Format(tr.Date, "%Y-%m-%dT%H:%M:%S%z"),
		Amount:          tr.Amount.String(),
		Description:     tr.Description,
		CurrencyID:      tr.CurrencyID,
		SourceName:      tr.SourceName,
		DestinationName: tr.DestinationName,
		Reconciled:      tr.Reconciled,
		Notes:           tr.Notes,
	}
	if tr.ForeignAmount != nil {
		s.ForeignAmount = tr.ForeignAmount.String()
	}
	if tr.ForeignCurrencyID != nil {
		s.ForeignCurrencyID = *tr.ForeignCurrencyID
	}
	if tr.CategoryID != nil {
		s.CategoryID = *tr.CategoryID
	}
	if tr.SourceID != nil {
		s.SourceID = *tr.SourceID
	}
	if tr.DestinationID != nil {
		s.DestinationID = *tr.DestinationID
	}
	return s
}

// StoreTransaction creates the transaction when its ID is zero and
// updates it otherwise, returning the stored form with the ledger's
// id. Transaction caches are flushed on success.
func (c *Client) StoreTransaction(ctx context.Context, tr model.Transaction) (model.Transaction, error) {
	payload := storePayload{Transactions: []storeSplit{toStoreSplit(tr)}}

	var resp itemResponse
	var err error
	if tr.ID == 0 {
		err = c.sendJSON(ctx, http.MethodPost, "v1/transactions", payload, &resp)
	} else {
		err = c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("v1/transactions/%d", tr.ID), payload, &resp)
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("storing transaction: %w", err)
	}

	var attrs struct {
		Transactions []transactionAttributes `json:"transactions"`
	}
	if err := resp.Data.decode(&attrs); err != nil {
		return model.Transaction{}, err
	}
	if len(attrs.Transactions) != 1 {
		return model.Transaction{}, fmt.Errorf("storing transaction: %d splits returned", len(attrs.Transactions))
	}

	c.InvalidateTransactions()
	c.InvalidateAccounts()
	return attrs.Transactions[0].toModel(int64(resp.Data.ID)), nil
}
