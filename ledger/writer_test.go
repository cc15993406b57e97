package ledger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnc2ledger/gnucash"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// testBook is the scenario from the converter's documentation: one
// currency, a bank account and an expense account, one balanced
// transaction.
func testBook() *gnucash.Book {
	usd := &gnucash.Commodity{Space: "CURRENCY", ID: "USD", Name: "US Dollar", Fraction: 100}
	bank := &gnucash.Account{
		ID: "a1", Name: "Bank", FullName: "Assets:Bank",
		Type: "BANK", Description: "Checking account", Commodity: "USD",
	}
	food := &gnucash.Account{
		ID: "a2", Name: "Food", FullName: "Expenses:Food",
		Type: "EXPENSE", Commodity: "USD",
	}
	trans := &gnucash.Transaction{
		Date:        time.Date(2021, 1, 5, 0, 0, 0, 0, time.UTC),
		Description: "Grocery run",
		Currency:    "USD",
		Splits: []*gnucash.Split{
			{Account: food, Value: dec("50"), Quantity: dec("50"), Memo: "Fresh Mart"},
			{Account: bank, Value: dec("-50"), Quantity: dec("-50"), Reconciled: true},
		},
	}
	return &gnucash.Book{
		Commodities:  []*gnucash.Commodity{usd},
		Accounts:     []*gnucash.Account{bank, food},
		Transactions: []*gnucash.Transaction{trans},
	}
}

func render(t *testing.T, opts Options, book *gnucash.Book) string {
	t.Helper()
	w, err := NewWriter(opts)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf, book))
	return buf.String()
}

func posting(flag, account, amount string) string {
	padding := lineWidth - len(indent) - len(flag) - len(account) - len(amount)
	return indent + flag + account + strings.Repeat(" ", padding) + amount
}

func TestWriteDefaults(t *testing.T) {
	got := render(t, DefaultOptions(), testBook())

	want := strings.Join([]string{
		";; Commodity Definitions",
		"",
		"commodity USD",
		"    note US Dollar (CURRENCY:USD)",
		"",
		";; Account Definitions",
		"",
		"account Assets:Bank",
		"    note Checking account (type: BANK)",
		"",
		"account Expenses:Food",
		"",
		";; Transactions",
		"",
		"2021-01-05 Grocery run",
		posting("", "Expenses:Food", "50.00 USD"),
		posting("* ", "Assets:Bank", "-50.00 USD"),
		"",
	}, "\n") + "\n"
	assert.Equal(t, want, got)
}

func TestWriteIdempotent(t *testing.T) {
	book := testBook()
	opts := DefaultOptions()
	opts.EmacsHeader = true
	first := render(t, opts, book)
	second := render(t, opts, book)
	assert.Equal(t, first, second)
}

func TestWriteEmacsHeader(t *testing.T) {
	opts := DefaultOptions()
	opts.EmacsHeader = true
	got := render(t, opts, testBook())
	assert.True(t, strings.HasPrefix(got, ";; -*- mode: ledger; -*-\n"))
}

func TestWriteMarkCleared(t *testing.T) {
	opts := DefaultOptions()
	opts.MarkCleared = true
	got := render(t, opts, testBook())
	assert.Contains(t, got, "2021-01-05 * Grocery run")
	// The per-split reconciled flag is redundant once everything is
	// marked cleared.
	assert.NotContains(t, got, indent+"* ")
}

func TestWriteReconciledSplitFlag(t *testing.T) {
	got := render(t, DefaultOptions(), testBook())
	assert.Contains(t, got, posting("* ", "Assets:Bank", "-50.00 USD"))
}

func TestWriteSymbols(t *testing.T) {
	opts := DefaultOptions()
	opts.UseSymbols = true
	opts.Symbols = map[string]string{"USD": "$"}
	got := render(t, opts, testBook())

	assert.Contains(t, got, "commodity $")
	assert.Contains(t, got, "$50.00")
	assert.Contains(t, got, "$-50.00")
	assert.NotContains(t, got, "50.00 USD")
}

func TestWriteSymbolsUnmappedCode(t *testing.T) {
	book := testBook()
	book.Commodities = append(book.Commodities,
		&gnucash.Commodity{Space: "CURRENCY", ID: "XTS", Fraction: 100})

	opts := DefaultOptions()
	opts.UseSymbols = true
	opts.Symbols = map[string]string{"USD": "$"}
	got := render(t, opts, book)

	// No mapping: the raw identifier stays.
	assert.Contains(t, got, "commodity XTS")
}

func TestWritePayeeMetadata(t *testing.T) {
	opts := DefaultOptions()
	opts.EmitPayeeMetadata = true
	got := render(t, opts, testBook())
	assert.Contains(t, got,
		posting("", "Expenses:Food", "50.00 USD")+"\n"+indent+"; Payee: Fresh Mart\n")
	// The memo-less split gets no metadata line.
	assert.Equal(t, 1, strings.Count(got, "; Payee:"))
}

func TestWriteSectionSuppression(t *testing.T) {
	opts := DefaultOptions()
	opts.EmitAccounts = false
	got := render(t, opts, testBook())
	assert.NotContains(t, got, ";; Account Definitions")
	assert.NotContains(t, got, "account Assets:Bank")
	assert.Contains(t, got, ";; Commodity Definitions")
	assert.Contains(t, got, "2021-01-05 Grocery run")

	opts = DefaultOptions()
	opts.EmitCommodities = false
	opts.EmitTransactions = false
	got = render(t, opts, testBook())
	assert.NotContains(t, got, ";; Commodity Definitions")
	assert.NotContains(t, got, ";; Transactions")
	assert.Contains(t, got, "account Expenses:Food")
}

func TestWriteDateFormat(t *testing.T) {
	opts := DefaultOptions()
	opts.DateFormat = "%d/%m/%Y"
	got := render(t, opts, testBook())
	assert.Contains(t, got, "05/01/2021 Grocery run")
}

func TestWriteBadDateFormat(t *testing.T) {
	opts := DefaultOptions()
	opts.DateFormat = "%Q"
	_, err := NewWriter(opts)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "date_format", cerr.Option)
}

func TestWriteAmountPrecision(t *testing.T) {
	book := testBook()
	book.Transactions[0].Splits[0].Value = dec("12.5")
	book.Transactions[0].Splits[1].Value = dec("-12.5")
	got := render(t, DefaultOptions(), book)
	assert.Contains(t, got, "12.50 USD")
	assert.Contains(t, got, "-12.50 USD")
}

func TestWriteCrossCommodityCost(t *testing.T) {
	book := testBook()
	eur := &gnucash.Commodity{Space: "CURRENCY", ID: "EUR", Name: "Euro", Fraction: 100}
	cash := &gnucash.Account{
		ID: "a3", Name: "EuroCash", FullName: "Assets:EuroCash",
		Type: "CASH", Commodity: "EUR",
	}
	book.Commodities = append(book.Commodities, eur)
	book.Accounts = append(book.Accounts, cash)
	book.Transactions = append(book.Transactions, &gnucash.Transaction{
		Date:        time.Date(2021, 2, 14, 0, 0, 0, 0, time.UTC),
		Num:         "104",
		Description: "Cash withdrawal in Paris",
		Currency:    "USD",
		Splits: []*gnucash.Split{
			{Account: cash, Value: dec("50"), Quantity: dec("45")},
			{Account: book.Accounts[0], Value: dec("-50"), Quantity: dec("-50")},
		},
	})

	got := render(t, DefaultOptions(), book)
	assert.Contains(t, got, "2021-02-14 (104) Cash withdrawal in Paris")
	assert.Contains(t, got, "45.00 EUR @@ 50.00 USD")
}

func TestWritePostingOrderPreserved(t *testing.T) {
	got := render(t, DefaultOptions(), testBook())
	food := strings.Index(got, "Expenses:Food ")
	bank := strings.Index(got, "* Assets:Bank ")
	require.True(t, food >= 0 && bank >= 0)
	assert.Less(t, food, bank)
}
