// Package ledger writes a parsed GnuCash book in the plain-text format
// consumed by the ledger and hledger command-line tools.
package ledger

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/gnc2ledger/gnucash"
)

const (
	indent    = "    "
	lineWidth = 80
	newLine   = "\n"
)

// emacsHeader is fixed text, deliberately free of timestamps so that
// converting the same book twice yields byte-identical output.
const emacsHeader = ";; -*- mode: ledger; -*-\n" +
	";;\n" +
	";; Converted from a GnuCash book.\n" +
	newLine

var spaceStr = strings.Repeat(" ", lineWidth)

// Writer emits an accounting model in the ledger text grammar. It never
// mutates the model.
type Writer struct {
	opts   Options
	format *dateFormat // compiled from opts.DateFormat
}

// NewWriter validates opts and returns a Writer. An unusable option
// value is reported as a *ConfigError before anything is written.
func NewWriter(opts Options) (*Writer, error) {
	format, err := compileDateFormat(opts.DateFormat)
	if err != nil {
		return nil, &ConfigError{Option: "date_format", Reason: err.Error()}
	}
	return &Writer{opts: opts, format: format}, nil
}

// Write emits the book to w: optional Emacs header, commodity block,
// account block, then transactions in source order. A failing write
// propagates with no retry.
func (lw *Writer) Write(w io.Writer, book *gnucash.Book) error {
	buf := bufio.NewWriter(w)
	if lw.opts.EmacsHeader {
		buf.WriteString(emacsHeader)
	}
	if lw.opts.EmitCommodities {
		lw.writeCommodities(buf, book)
	}
	if lw.opts.EmitAccounts {
		lw.writeAccounts(buf, book)
	}
	if lw.opts.EmitTransactions {
		lw.writeTransactions(buf, book)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

func (lw *Writer) writeCommodities(buf *bufio.Writer, book *gnucash.Book) {
	buf.WriteString(";; Commodity Definitions" + newLine)
	for _, c := range book.Commodities {
		buf.WriteString(newLine)
		buf.WriteString("commodity ")
		buf.WriteString(lw.label(c.ID))
		buf.WriteString(newLine)
		if c.Name != "" {
			fmt.Fprintf(buf, "%snote %s (%s:%s)%s", indent, c.Name, c.Space, c.ID, newLine)
		}
	}
	buf.WriteString(newLine)
}

func (lw *Writer) writeAccounts(buf *bufio.Writer, book *gnucash.Book) {
	buf.WriteString(";; Account Definitions" + newLine)
	for _, a := range book.Accounts {
		buf.WriteString(newLine)
		buf.WriteString("account ")
		buf.WriteString(a.FullName)
		buf.WriteString(newLine)
		if a.Description != "" {
			fmt.Fprintf(buf, "%snote %s (type: %s)%s", indent, a.Description, a.Type, newLine)
		}
	}
	buf.WriteString(newLine)
}

func (lw *Writer) writeTransactions(buf *bufio.Writer, book *gnucash.Book) {
	buf.WriteString(";; Transactions" + newLine)
	for _, trans := range book.Transactions {
		buf.WriteString(newLine)
		lw.writeTransaction(buf, book, trans)
	}
	buf.WriteString(newLine)
}

func (lw *Writer) writeTransaction(buf *bufio.Writer, book *gnucash.Book, trans *gnucash.Transaction) {
	buf.WriteString(lw.format.Format(trans.Date))
	if lw.opts.MarkCleared {
		buf.WriteString(" *")
	}
	if trans.Num != "" {
		buf.WriteString(" (" + trans.Num + ")")
	}
	buf.WriteString(" ")
	buf.WriteString(trans.Description)
	buf.WriteString(newLine)
	for _, split := range trans.Splits {
		lw.writePosting(buf, book, trans, split)
	}
}

func (lw *Writer) writePosting(buf *bufio.Writer, book *gnucash.Book, trans *gnucash.Transaction, split *gnucash.Split) {
	flag := ""
	if split.Reconciled && !lw.opts.MarkCleared {
		flag = "* "
	}
	name := split.Account.FullName
	amount := lw.formatAmount(book, trans, split)

	padding := lineWidth - len(indent) - len(flag) -
		utf8.RuneCountInString(name) - utf8.RuneCountInString(amount)
	if padding < 2 {
		padding = 2
	}

	buf.WriteString(indent)
	buf.WriteString(flag)
	buf.WriteString(name)
	buf.WriteString(spaceStr[:padding])
	buf.WriteString(amount)
	buf.WriteString(newLine)
	// An indented comment directly below a posting attaches to that
	// posting as metadata in ledger.
	if lw.opts.EmitPayeeMetadata && split.Memo != "" {
		buf.WriteString(indent)
		buf.WriteString("; Payee: ")
		buf.WriteString(split.Memo)
		buf.WriteString(newLine)
	}
}

// formatAmount renders the split amount. When the split's account is
// held in a different commodity than the transaction currency, the
// posting shows the account-commodity quantity with its total cost
// attached (@@), which keeps the transaction balanced for ledger.
func (lw *Writer) formatAmount(book *gnucash.Book, trans *gnucash.Transaction, split *gnucash.Split) string {
	if split.Account.Commodity == trans.Currency || split.Account.Commodity == "" {
		return lw.amountString(book, split.Value, trans.Currency)
	}
	return lw.amountString(book, split.Quantity, split.Account.Commodity) +
		" @@ " + lw.amountString(book, split.Value.Abs(), trans.Currency)
}

// amountString renders a quantity at the commodity's precision, symbol
// prefixed when a symbol is known, code suffixed otherwise.
func (lw *Writer) amountString(book *gnucash.Book, q decimal.Decimal, id string) string {
	precision := int32(2)
	if c := book.Commodity(id); c != nil {
		precision = c.Precision()
	}
	num := q.StringFixedBank(precision)
	if lw.opts.UseSymbols {
		if symbol, ok := lw.opts.Symbols[id]; ok {
			return symbol + num
		}
	}
	return num + " " + id
}

// label is the commodity identifier as it appears in definition lines,
// honoring symbol substitution so definitions match posting amounts.
func (lw *Writer) label(id string) string {
	if lw.opts.UseSymbols {
		if symbol, ok := lw.opts.Symbols[id]; ok {
			return symbol
		}
	}
	return id
}
