package statement

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/itchyny/timefmt-go"
	"github.com/shopspring/decimal"

	"github.com/lvu/firemerge/internal/model"
)

// ParseOptions carries per-account context the column config cannot
// know: blacklist, the account's own IBAN and currency, and the
// timezone statement dates are quoted in.
type ParseOptions struct {
	Blacklist       Blacklist
	Location        *time.Location
	AccountIBAN     string
	PrimaryCurrency string
}

// Parse reads a statement file according to settings and returns its
// transactions in file order. The transaction table is located by its
// header row; everything before it is ignored, and the table ends
// with its page.
func Parse(r io.Reader, settings ParserSettings, opts ParseOptions) ([]model.StatementTransaction, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	settings = settings.WithDefaults()

	pages, err := readPages(r, settings.Format)
	if err != nil {
		return nil, err
	}

	header := settings.header()
	for _, page := range pages {
		for i, row := range page {
			if rowMatchesHeader(row, header) {
				return parseRows(page[i+1:], settings, opts)
			}
		}
	}
	return nil, fmt.Errorf("statement table not found: no row matches the configured column names")
}

func rowMatchesHeader(row, header []string) bool {
	if len(row) < len(header) {
		return false
	}
	for i, want := range header {
		if strings.TrimSpace(row[i]) != strings.TrimSpace(want) {
			return false
		}
	}
	return true
}

func parseRows(rows [][]string, settings ParserSettings, opts ParseOptions) ([]model.StatementTransaction, error) {
	roles := settings.roleIndex()
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	var out []model.StatementTransaction
	for n, row := range rows {
		if rowEmpty(row) {
			continue
		}
		// Summary and footer rows are narrower than the table.
		if len(row) < len(settings.Columns) {
			continue
		}

		cell := func(role ColumnRole) string {
			idx, ok := roles[role]
			if !ok {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		if iban := cell(RoleIBAN); iban != "" && opts.AccountIBAN != "" && iban != opts.AccountIBAN {
			continue
		}

		amount, err := rowAmount(cell, settings.DecimalSeparator)
		if err != nil {
			return nil, fmt.Errorf("statement row %d: %w", n+1, err)
		}
		if amount.IsZero() {
			continue
		}

		date, err := parseDate(cell(RoleDate), settings.DateFormat, loc)
		if err != nil {
			return nil, fmt.Errorf("statement row %d: %w", n+1, err)
		}

		tr := model.StatementTransaction{
			Name:   cell(RoleName),
			Date:   date,
			Amount: amount,
			Notes:  rowNotes(row, settings.Columns),
		}

		if code := cell(RoleForeignCurrencyCode); code != "" && !strings.EqualFold(code, opts.PrimaryCurrency) {
			foreign, err := parseMoney(cell(RoleForeignAmount), settings.DecimalSeparator)
			if err != nil {
				return nil, fmt.Errorf("statement row %d: foreign amount: %w", n+1, err)
			}
			tr.ForeignAmount = &foreign
			tr.ForeignCurrencyCode = code
		}

		if opts.Blacklist.Matches(tr.Name) || opts.Blacklist.Matches(tr.Notes) {
			continue
		}
		out = append(out, tr)
	}
	return out, nil
}

// rowAmount resolves the signed amount from either the single amount
// column or the debit/credit pair, with debits negated.
func rowAmount(cell func(ColumnRole) string, sep string) (decimal.Decimal, error) {
	if s := cell(RoleAmount); s != "" {
		return parseMoney(s, sep)
	}
	debit, credit := cell(RoleAmountDebit), cell(RoleAmountCredit)
	switch {
	case debit != "" && credit != "":
		return decimal.Decimal{}, fmt.Errorf("both debit %q and credit %q are set", debit, credit)
	case debit != "":
		d, err := parseMoney(debit, sep)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return d.Neg(), nil
	case credit != "":
		return parseMoney(credit, sep)
	default:
		return decimal.Decimal{}, nil
	}
}

func parseMoney(s, sep string) (decimal.Decimal, error) {
	s = strings.NewReplacer(" ", "", " ", "").Replace(s)
	if s == "" {
		return decimal.Decimal{}, nil
	}
	if sep != "" && sep != "." {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, sep, ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}

func parseDate(s, format string, loc *time.Location) (time.Time, error) {
	t, err := timefmt.Parse(s, format)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q with format %q: %w", s, format, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc), nil
}

// rowNotes builds the notes block from every column carrying a notes
// label, one "Label: value" line per non-empty cell.
func rowNotes(row []string, columns []ColumnInfo) string {
	var lines []string
	for i, col := range columns {
		if col.NotesLabel == "" || i >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[i]); v != "" {
			lines = append(lines, col.NotesLabel+": "+v)
		}
	}
	return strings.Join(lines, "\n")
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
