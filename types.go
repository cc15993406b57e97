package gnucash

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commodity is a currency or security used by the book. GnuCash keys
// commodities by a namespace ("CURRENCY", an exchange name, ...) and an
// identifier such as an ISO currency code or ticker.
type Commodity struct {
	Space string
	ID    string
	Name  string

	// Fraction is the smallest-unit denominator, e.g. 100 for a
	// currency traded in hundredths. Zero when the book omits it.
	Fraction int
}

// Precision returns the number of decimal places implied by the
// commodity's fraction. Missing or non power-of-ten fractions fall back
// to two places.
func (c *Commodity) Precision() int32 {
	if places, ok := pow10Places(int64(c.Fraction)); ok {
		return places
	}
	return 2
}

// Account is one account definition. FullName is the colon-joined chain
// of ancestor names with the ROOT account left out, which is the name
// ledger uses for postings.
type Account struct {
	ID          string
	Name        string
	FullName    string
	Type        string
	Description string
	Commodity   string
}

// Split is one leg of a double-entry transaction. Value is expressed in
// the transaction currency, Quantity in the account's own commodity;
// the two differ only for cross-commodity postings.
type Split struct {
	Account    *Account
	Value      decimal.Decimal
	Quantity   decimal.Decimal
	Memo       string
	Reconciled bool
}

// Transaction holds a dated set of splits. Splits keep their source
// order and are assumed to balance already; nothing here re-balances
// them.
type Transaction struct {
	Date        time.Time
	Num         string
	Description string
	Currency    string
	Splits      []*Split
}

// Book is the in-memory model of one GnuCash file. It is built once by
// Decode and never mutated afterwards. Collections keep the order the
// document declared them in.
type Book struct {
	Commodities  []*Commodity
	Accounts     []*Account
	Transactions []*Transaction
}

// Commodity returns the commodity with the given identifier, or nil if
// the book does not define it.
func (b *Book) Commodity(id string) *Commodity {
	for _, c := range b.Commodities {
		if c.ID == id {
			return c
		}
	}
	return nil
}
