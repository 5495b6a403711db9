// Package statement holds the declarative description of a bank
// statement file (column roles, formats) and the parser driven by it.
package statement

import (
	"fmt"
)

// StatementFormat selects the file format of a statement.
type StatementFormat string

const (
	FormatCSV  StatementFormat = "csv"
	FormatXLSX StatementFormat = "xlsx"
	FormatPDF  StatementFormat = "pdf"
)

// FormatSettings describes the container format. Separator and
// Encoding apply to CSV only; XLSX and PDF carry no further fields.
type FormatSettings struct {
	Format    StatementFormat `json:"format" yaml:"format"`
	Separator string          `json:"separator,omitempty" yaml:"separator,omitempty"`
	Encoding  string          `json:"encoding,omitempty" yaml:"encoding,omitempty"`
}

// ColumnRole names what a statement column means to the parser.
type ColumnRole string

const (
	RoleDate                ColumnRole = "date"
	RoleName                ColumnRole = "name"
	RoleIBAN                ColumnRole = "iban"
	RoleCurrencyCode        ColumnRole = "currency_code"
	RoleAmount              ColumnRole = "amount"
	RoleAmountDebit         ColumnRole = "amount_debit"
	RoleAmountCredit        ColumnRole = "amount_credit"
	RoleForeignCurrencyCode ColumnRole = "foreign_currency_code"
	RoleForeignAmount       ColumnRole = "foreign_amount"
	RoleDocNumber           ColumnRole = "doc_number"
)

// Roles lists every recognized column role, in editor order.
func Roles() []ColumnRole {
	return []ColumnRole{
		RoleDate, RoleName, RoleIBAN, RoleCurrencyCode, RoleAmount,
		RoleAmountDebit, RoleAmountCredit, RoleForeignCurrencyCode,
		RoleForeignAmount, RoleDocNumber,
	}
}

// ColumnInfo describes one statement column: how it is named in the
// file's header row, what the parser should do with it, and, when
// NotesLabel is set, under which label its value lands in the notes.
type ColumnInfo struct {
	Name       string     `json:"name" yaml:"name"`
	Role       ColumnRole `json:"role,omitempty" yaml:"role,omitempty"`
	NotesLabel string     `json:"notes_label,omitempty" yaml:"notes_label,omitempty"`
}

// Defaults applied when a config leaves them unset.
const (
	DefaultDateFormat       = "%Y-%m-%d %H:%M:%S"
	DefaultDecimalSeparator = "."
	DefaultCSVSeparator     = ","
	DefaultCSVEncoding      = "utf-8"
)

// ParserSettings is the full declarative description of how to turn
// one raw statement file into statement transactions.
type ParserSettings struct {
	Columns          []ColumnInfo   `json:"columns" yaml:"columns"`
	Format           FormatSettings `json:"format" yaml:"format"`
	DateFormat       string         `json:"date_format,omitempty" yaml:"date_format,omitempty"`
	DecimalSeparator string         `json:"decimal_separator,omitempty" yaml:"decimal_separator,omitempty"`
}

// ConfigError reports a parser-config validation failure, attached to
// the field the editor should highlight.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid parser config: %s: %s", e.Field, e.Message)
}

// Validate checks the config at edit time, before it is ever used on
// a file. Duplicate or conflicting roles are errors here, not
// best-effort fallbacks at parse time.
func (s ParserSettings) Validate() error {
	counts := make(map[ColumnRole]int)
	known := make(map[ColumnRole]bool)
	for _, role := range Roles() {
		known[role] = true
	}
	for _, col := range s.Columns {
		if col.Role == "" {
			continue
		}
		if !known[col.Role] {
			return &ConfigError{Field: "columns", Message: fmt.Sprintf("unknown role %q on column %q", col.Role, col.Name)}
		}
		counts[col.Role]++
	}

	for role, n := range counts {
		if n > 1 {
			return &ConfigError{Field: "columns", Message: fmt.Sprintf("role %q assigned to %d columns", role, n)}
		}
	}

	hasAmount := counts[RoleAmount] > 0
	hasDebit := counts[RoleAmountDebit] > 0
	hasCredit := counts[RoleAmountCredit] > 0
	if hasAmount && (hasDebit || hasCredit) {
		return &ConfigError{Field: "columns", Message: "amount and amount_debit/amount_credit cannot be used together"}
	}
	if hasDebit != hasCredit {
		return &ConfigError{Field: "columns", Message: "amount_debit and amount_credit must be used together"}
	}
	if !hasAmount && !hasDebit {
		return &ConfigError{Field: "columns", Message: "an amount column is required"}
	}
	if (counts[RoleForeignAmount] > 0) != (counts[RoleForeignCurrencyCode] > 0) {
		return &ConfigError{Field: "columns", Message: "foreign_amount and foreign_currency_code must be used together"}
	}
	if counts[RoleDocNumber] > 0 && counts[RoleIBAN] == 0 {
		return &ConfigError{Field: "columns", Message: "doc_number requires an iban column"}
	}
	if counts[RoleDate] == 0 {
		return &ConfigError{Field: "columns", Message: "a date column is required"}
	}
	if counts[RoleName] == 0 {
		return &ConfigError{Field: "columns", Message: "a name column is required"}
	}

	switch s.Format.Format {
	case FormatCSV, FormatXLSX, FormatPDF:
	case "":
		return &ConfigError{Field: "format", Message: "format is required"}
	default:
		return &ConfigError{Field: "format", Message: fmt.Sprintf("unknown format %q", s.Format.Format)}
	}

	return nil
}

// WithDefaults returns a copy with unset optional fields filled in.
func (s ParserSettings) WithDefaults() ParserSettings {
	if s.DateFormat == "" {
		s.DateFormat = DefaultDateFormat
	}
	if s.DecimalSeparator == "" {
		s.DecimalSeparator = DefaultDecimalSeparator
	}
	if s.Format.Format == FormatCSV {
		if s.Format.Separator == "" {
			s.Format.Separator = DefaultCSVSeparator
		}
		if s.Format.Encoding == "" {
			s.Format.Encoding = DefaultCSVEncoding
		}
	}
	return s
}

// roleIndex maps each assigned role to its column position.
func (s ParserSettings) roleIndex() map[ColumnRole]int {
	out := make(map[ColumnRole]int)
	for i, col := range s.Columns {
		if col.Role != "" {
			if _, seen := out[col.Role]; !seen {
				out[col.Role] = i
			}
		}
	}
	return out
}

// header returns the expected header row, column names in order.
func (s ParserSettings) header() []string {
	out := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		out[i] = col.Name
	}
	return out
}
