package firefly

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/lvu/firemerge/internal/model"
)

type accountAttributes struct {
	Name           string           `json:"name"`
	Type           string           `json:"type"`
	CurrencyID     flexID           `json:"currency_id"`
	IBAN           string           `json:"iban"`
	CurrentBalance *decimal.Decimal `json:"current_balance"`
}

// accountTypeMap translates the verbose type names the accounts
// endpoint reports into the short forms the rest of the code uses.
var accountTypeMap = map[string]model.AccountType{
	"asset":                   model.AccountTypeAsset,
	"Asset account":           model.AccountTypeAsset,
	"expense":                 model.AccountTypeExpense,
	"Expense account":         model.AccountTypeExpense,
	"revenue":                 model.AccountTypeRevenue,
	"Revenue account":         model.AccountTypeRevenue,
	"debt":                    model.AccountTypeDebt,
	"Debt":                    model.AccountTypeDebt,
	"cash":                    model.AccountTypeCash,
	"Cash account":            model.AccountTypeCash,
	"reconciliation":          model.AccountTypeReconciliation,
	"Reconciliation account":  model.AccountTypeReconciliation,
	"initial-balance":         model.AccountTypeInitialBalance,
	"Initial balance account": model.AccountTypeInitialBalance,
	"liabilities":             model.AccountTypeLiabilities,
	"Loan":                    model.AccountTypeLiabilities,
	"Mortgage":                model.AccountTypeLiabilities,
}

// Accounts lists every account the instance knows about. Accounts of
// types the reconciliation flow cannot use are dropped.
func (c *Client) Accounts(ctx context.Context) ([]model.Account, error) {
	return c.accounts.GetOrLoad(ctx, "all", func(ctx context.Context) ([]model.Account, error) {
		var out []model.Account
		query := url.Values{"limit": {fmt.Sprint(pageLimit)}}
		err := c.pagedGet(ctx, "v1/accounts", query, func(item apiItem) error {
			var attrs accountAttributes
			if err := item.decode(&attrs); err != nil {
				return err
			}
			typ, ok := accountTypeMap[attrs.Type]
			if !ok {
				return nil
			}
			out = append(out, model.Account{
				ID:             int64(item.ID),
				Name:           attrs.Name,
				Type:           typ,
				CurrencyID:     int64(attrs.CurrencyID),
				IBAN:           attrs.IBAN,
				CurrentBalance: attrs.CurrentBalance,
			})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("listing accounts: %w", err)
		}
		return out, nil
	})
}

// Account fetches a single account by id, bypassing the list cache.
func (c *Client) Account(ctx context.Context, id int64) (model.Account, error) {
	var resp itemResponse
	if err := c.getJSON(ctx, fmt.Sprintf("v1/accounts/%d", id), nil, &resp); err != nil {
		return model.Account{}, fmt.Errorf("fetching account %d: %w", id, err)
	}
	var attrs accountAttributes
	if err := resp.Data.decode(&attrs); err != nil {
		return model.Account{}, err
	}
	typ, ok := accountTypeMap[attrs.Type]
	if !ok {
		return model.Account{}, fmt.Errorf("account %d has unsupported type %q", id, attrs.Type)
	}
	return model.Account{
		ID:             int64(resp.Data.ID),
		Name:           attrs.Name,
		Type:           typ,
		CurrencyID:     int64(attrs.CurrencyID),
		IBAN:           attrs.IBAN,
		CurrentBalance: attrs.CurrentBalance,
	}, nil
}

// Categories lists every spending category.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	return c.categories.GetOrLoad(ctx, "all", func(ctx context.Context) ([]model.Category, error) {
		var out []model.Category
		err := c.pagedGet(ctx, "v1/categories", nil, func(item apiItem) error {
			var attrs struct {
				Name string `json:"name"`
			}
			if err := item.decode(&attrs); err != nil {
				return err
			}
			out = append(out, model.Category{ID: int64(item.ID), Name: attrs.Name})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("listing categories: %w", err)
		}
		return out, nil
	})
}

// Currencies lists every currency.
func (c *Client) Currencies(ctx context.Context) ([]model.Currency, error) {
	return c.currencies.GetOrLoad(ctx, "all", func(ctx context.Context) ([]model.Currency, error) {
		var out []model.Currency
		err := c.pagedGet(ctx, "v1/currencies", nil, func(item apiItem) error {
			var attrs struct {
				Code   string `json:"code"`
				Name   string `json:"name"`
				Symbol string `json:"symbol"`
			}
			if err := item.decode(&attrs); err != nil {
				return err
			}
			out = append(out, model.Currency{
				ID:     int64(item.ID),
				Code:   attrs.Code,
				Name:   attrs.Name,
				Symbol: attrs.Symbol,
			})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("listing currencies: %w", err)
		}
		return out, nil
	})
}

// InvalidateAccounts drops the cached account list, for use after a
// save created a counter-account or moved a balance.
func (c *Client) InvalidateAccounts() {
	c.accounts.Invalidate("all")
}
