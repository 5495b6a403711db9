// Package export flattens ledger transactions into CSV rows for
// external bookkeeping, driven by a per-account field template.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/itchyny/timefmt-go"

	"github.com/lvu/firemerge/internal/model"
)

// FieldType selects how one export column derives its value.
type FieldType string

const (
	FieldDate                   FieldType = "date"
	FieldAmount                 FieldType = "amount"
	FieldCurrencyCode           FieldType = "currency_code"
	FieldForeignAmount          FieldType = "foreign_amount"
	FieldForeignCurrencyCode    FieldType = "foreign_currency_code"
	FieldSourceAccountName      FieldType = "source_account_name"
	FieldDestinationAccountName FieldType = "destination_account_name"
	FieldEmpty                  FieldType = "empty"
	FieldConstant               FieldType = "constant"
	FieldExchangeRate           FieldType = "exchange_rate"
)

// FieldTypes lists every recognized field type, in editor order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldDate, FieldAmount, FieldCurrencyCode, FieldForeignAmount,
		FieldForeignCurrencyCode, FieldSourceAccountName,
		FieldDestinationAccountName, FieldEmpty, FieldConstant,
		FieldExchangeRate,
	}
}

// Field is one export column. Format applies to date fields, Value to
// constant fields; everything else derives from the transaction.
type Field struct {
	Label  string    `json:"label" yaml:"label"`
	Type   FieldType `json:"type" yaml:"type"`
	Format string    `json:"format,omitempty" yaml:"format,omitempty"`
	Value  string    `json:"value,omitempty" yaml:"value,omitempty"`
}

// Settings maps each transaction kind to its ordered column list. A
// nil entry excludes the kind from the export entirely; an empty,
// non-nil list emits a row with no columns.
type Settings struct {
	Withdrawal *[]Field `json:"withdrawal,omitempty" yaml:"withdrawal,omitempty"`
	Deposit    *[]Field `json:"deposit,omitempty" yaml:"deposit,omitempty"`
	Transfer   *[]Field `json:"transfer,omitempty" yaml:"transfer,omitempty"`
}

// ConfigError reports an export-config validation failure, attached
// to the field label the editor should highlight.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid export config: %s: %s", e.Field, e.Message)
}

// Validate checks the template at edit time.
func (s Settings) Validate() error {
	for _, fields := range []*[]Field{s.Withdrawal, s.Deposit, s.Transfer} {
		if fields == nil {
			continue
		}
		for _, f := range *fields {
			if err := f.validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f Field) validate() error {
	known := false
	for _, t := range FieldTypes() {
		if f.Type == t {
			known = true
			break
		}
	}
	if !known {
		return &ConfigError{Field: f.Label, Message: fmt.Sprintf("unknown field type %q", f.Type)}
	}
	if f.Type == FieldDate && f.Format == "" {
		return &ConfigError{Field: f.Label, Message: "date fields require a format"}
	}
	if f.Type == FieldConstant && f.Value == "" {
		return &ConfigError{Field: f.Label, Message: "constant fields require a value"}
	}
	return nil
}

func (s Settings) fieldsFor(t model.TransactionType) *[]Field {
	switch t {
	case model.TypeWithdrawal:
		return s.Withdrawal
	case model.TypeDeposit:
		return s.Deposit
	case model.TypeTransfer:
		return s.Transfer
	default:
		return nil
	}
}

// Lookups resolves entity ids referenced by exported transactions.
type Lookups struct {
	AccountNames  map[int64]string
	CurrencyCodes map[int64]string
}

// Rows flattens transactions to export rows. Transactions of a kind
// without a template are skipped.
func Rows(transactions []model.Transaction, settings Settings, lookups Lookups) ([][]string, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	var rows [][]string
	for _, tr := range transactions {
		fields := settings.fieldsFor(tr.Type)
		if fields == nil {
			continue
		}
		row := make([]string, 0, len(*fields))
		for _, f := range *fields {
			row = append(row, fieldValue(f, tr, lookups))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteCSV writes the flattened rows as CSV.
func WriteCSV(w io.Writer, transactions []model.Transaction, settings Settings, lookups Lookups) error {
	rows, err := Rows(transactions, settings, lookups)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing export row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing export: %w", err)
	}
	return nil
}

func fieldValue(f Field, tr model.Transaction, lookups Lookups) string {
	switch f.Type {
	case FieldDate:
		return timefmt.Format(tr.Date, f.Format)
	case FieldAmount:
		return tr.Amount.StringFixed(2)
	case FieldCurrencyCode:
		return lookups.CurrencyCodes[tr.CurrencyID]
	case FieldForeignAmount:
		if tr.ForeignAmount == nil {
			return ""
		}
		return tr.ForeignAmount.StringFixed(2)
	case FieldForeignCurrencyCode:
		if tr.ForeignCurrencyID == nil {
			return ""
		}
		return lookups.CurrencyCodes[*tr.ForeignCurrencyID]
	case FieldSourceAccountName:
		if tr.SourceID == nil {
			return tr.SourceName
		}
		return lookups.AccountNames[*tr.SourceID]
	case FieldDestinationAccountName:
		if tr.DestinationID == nil {
			return tr.DestinationName
		}
		return lookups.AccountNames[*tr.DestinationID]
	case FieldConstant:
		return f.Value
	case FieldExchangeRate:
		if tr.ForeignAmount == nil || tr.Amount.IsZero() {
			return ""
		}
		return tr.ForeignAmount.Div(tr.Amount).StringFixed(5)
	default:
		return ""
	}
}
