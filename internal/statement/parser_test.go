package statement

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csvSettings() ParserSettings {
	return ParserSettings{
		Columns: []ColumnInfo{
			{Name: "Date", Role: RoleDate},
			{Name: "Description", Role: RoleName, NotesLabel: "Payee"},
			{Name: "Debit", Role: RoleAmountDebit},
			{Name: "Credit", Role: RoleAmountCredit},
			{Name: "Orig amount", Role: RoleForeignAmount},
			{Name: "Orig currency", Role: RoleForeignCurrencyCode},
		},
		Format:           FormatSettings{Format: FormatCSV, Separator: ";"},
		DateFormat:       "%d.%m.%Y %H:%M",
		DecimalSeparator: ",",
	}
}

func TestParseCSV(t *testing.T) {
	file := strings.Join([]string{
		"Account statement;;;;;",
		"Period: 01.05.2024 - 31.05.2024;;;;;",
		"Date;Description;Debit;Credit;Orig amount;Orig currency",
		"02.05.2024 10:15;COFFEE SHOP;12,50;;;",
		"03.05.2024 09:00;SALARY;;1 000,00;;",
		"04.05.2024 18:30;AMAZON EU;250,00;;-10,00;USD",
		"05.05.2024 12:00;LOCAL STORE;99,90;;99,90;EUR",
		"05.05.2024 13:00;ZERO HOLD;0,00;;;",
		"06.05.2024 08:00;BANK FEE;5,00;;;",
		"Total: 367,40",
	}, "\n")

	got, err := Parse(strings.NewReader(file), csvSettings(), ParseOptions{
		Blacklist:       Blacklist{Terms: []string{"bank fee"}},
		PrimaryCurrency: "EUR",
	})
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, "COFFEE SHOP", got[0].Name)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("-12.5")))
	assert.Equal(t, time.Date(2024, 5, 2, 10, 15, 0, 0, time.UTC), got[0].Date)
	assert.Equal(t, "Payee: COFFEE SHOP", got[0].Notes)

	assert.Equal(t, "SALARY", got[1].Name)
	assert.True(t, got[1].Amount.Equal(decimal.RequireFromString("1000")))

	assert.Equal(t, "AMAZON EU", got[2].Name)
	require.NotNil(t, got[2].ForeignAmount)
	assert.True(t, got[2].ForeignAmount.Equal(decimal.RequireFromString("-10")))
	assert.Equal(t, "USD", got[2].ForeignCurrencyCode)

	// Same currency as the account, even with foreign columns filled.
	assert.Equal(t, "LOCAL STORE", got[3].Name)
	assert.Nil(t, got[3].ForeignAmount)
	assert.Empty(t, got[3].ForeignCurrencyCode)
}

func TestParseTableNotFound(t *testing.T) {
	_, err := Parse(strings.NewReader("a;b;c\n1;2;3\n"), csvSettings(), ParseOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statement table not found")
}

func TestParseRejectsBothDebitAndCredit(t *testing.T) {
	file := "Date;Description;Debit;Credit;Orig amount;Orig currency\n" +
		"02.05.2024 10:15;SHOP;1,00;2,00;;\n"
	_, err := Parse(strings.NewReader(file), csvSettings(), ParseOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "debit")
}

func TestParseDateInLocation(t *testing.T) {
	loc := time.FixedZone("EEST", 3*60*60)

	file := "Date;Description;Debit;Credit;Orig amount;Orig currency\n" +
		"02.05.2024 10:15;SHOP;1,00;;;\n"
	got, err := Parse(strings.NewReader(file), csvSettings(), ParseOptions{Location: loc})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2024, 5, 2, 10, 15, 0, 0, loc), got[0].Date)
}

func TestParseSkipsOtherAccountRows(t *testing.T) {
	s := ParserSettings{
		Columns: []ColumnInfo{
			{Name: "Date", Role: RoleDate},
			{Name: "Description", Role: RoleName},
			{Name: "IBAN", Role: RoleIBAN},
			{Name: "Amount", Role: RoleAmount},
		},
		Format:     FormatSettings{Format: FormatCSV},
		DateFormat: "%Y-%m-%d",
	}
	file := "Date,Description,IBAN,Amount\n" +
		"2024-05-02,MINE,UA1,-10.00\n" +
		"2024-05-02,OTHER,UA2,-20.00\n"
	got, err := Parse(strings.NewReader(file), s, ParseOptions{AccountIBAN: "UA1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "MINE", got[0].Name)
}

func TestParseMoney(t *testing.T) {
	d, err := parseMoney("1 234,56", ",")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("1234.56")))

	d, err = parseMoney("-42.00", ".")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("-42")))

	_, err = parseMoney("abc", ".")
	assert.Error(t, err)
}
