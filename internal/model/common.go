package model

import (
	"github.com/shopspring/decimal"
)

// AccountType classifies accounts as Firefly III reports them.
type AccountType string

const (
	AccountTypeAsset          AccountType = "asset"
	AccountTypeExpense        AccountType = "expense"
	AccountTypeDebt           AccountType = "debt"
	AccountTypeRevenue        AccountType = "revenue"
	AccountTypeCash           AccountType = "cash"
	AccountTypeReconciliation AccountType = "reconciliation"
	AccountTypeInitialBalance AccountType = "initial-balance"
	AccountTypeLiabilities    AccountType = "liabilities"
)

// Account is a ledger account. Owned by Firefly III; read-only here.
type Account struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Type           AccountType      `json:"type"`
	CurrencyID     int64            `json:"currency_id,omitempty"`
	IBAN           string           `json:"iban,omitempty"`
	CurrentBalance *decimal.Decimal `json:"current_balance,omitempty"`
}

// Category is a ledger spending category.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Currency is a ledger currency.
type Currency struct {
	ID     int64  `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}
