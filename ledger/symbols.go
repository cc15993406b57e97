package ledger

import (
	"github.com/Rhymond/go-money"

	"github.com/gnc2ledger/gnucash"
)

// CurrencySymbols builds a symbol table for the given commodity
// identifiers from go-money's currency registry (USD -> $, EUR -> €,
// ...). Identifiers the registry does not know are left out, so they
// fall back to their code when printed.
func CurrencySymbols(ids ...string) map[string]string {
	table := make(map[string]string, len(ids))
	for _, id := range ids {
		if cur := money.GetCurrency(id); cur != nil && cur.Grapheme != "" {
			table[id] = cur.Grapheme
		}
	}
	return table
}

// BookSymbols builds a symbol table covering every commodity the book
// defines.
func BookSymbols(book *gnucash.Book) map[string]string {
	ids := make([]string, 0, len(book.Commodities))
	for _, c := range book.Commodities {
		ids = append(ids, c.ID)
	}
	return CurrencySymbols(ids...)
}
