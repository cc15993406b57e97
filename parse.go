package gnucash

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	date "github.com/joyt/godate"
)

// postedDateLayout matches GnuCash timestamp strings,
// e.g. "2021-01-05 00:00:00 +0000".
const postedDateLayout = "2006-01-02 15:04:05 -0700"

// templateSpace is the commodity namespace GnuCash reserves for
// scheduled-transaction scaffolding. Nothing in the ledger output can
// refer to it, so the decoder drops it up front.
const templateSpace = "template"

// Wire representation of the uncompressed GnuCash XML export. Element
// names are matched by local name; the gnc/act/trn/... prefixes all
// resolve to distinct namespaces but never collide on the local names
// used here.
type xmlDocument struct {
	XMLName xml.Name `xml:"gnc-v2"`
	Book    xmlBook  `xml:"book"`
}

type xmlBook struct {
	Commodities  []xmlCommodity   `xml:"commodity"`
	Accounts     []xmlAccount     `xml:"account"`
	Transactions []xmlTransaction `xml:"transaction"`
}

type xmlCommodity struct {
	Space    string `xml:"space"`
	ID       string `xml:"id"`
	Name     string `xml:"name"`
	Fraction int    `xml:"fraction"`
}

type xmlAccount struct {
	Name        string       `xml:"name"`
	ID          string       `xml:"id"`
	Type        string       `xml:"type"`
	Description string       `xml:"description"`
	Parent      string       `xml:"parent"`
	Commodity   xmlCommodity `xml:"commodity"`
}

type xmlTimestamp struct {
	Date string `xml:"date"`
}

type xmlTransaction struct {
	Currency    xmlCommodity `xml:"currency"`
	Num         string       `xml:"num"`
	DatePosted  xmlTimestamp `xml:"date-posted"`
	Description string       `xml:"description"`
	Splits      []xmlSplit   `xml:"splits>split"`
}

type xmlSplit struct {
	Memo       string `xml:"memo"`
	Reconciled string `xml:"reconciled-state"`
	Value      string `xml:"value"`
	Quantity   string `xml:"quantity"`
	Account    string `xml:"account"`
}

// Decoder reads one uncompressed GnuCash XML book from an input stream.
// Decode consumes the stream, so a Decoder is effectively single-use.
type Decoder struct {
	r io.Reader

	commodities map[string]*Commodity
	accounts    map[string]*Account // keyed by GnuCash GUID
}

// NewDecoder returns a new decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode reads the whole document and returns the accounting model.
// Commodities are collected first, then accounts, then transactions, so
// each later pass resolves only against identifiers already defined.
// Malformed XML yields a *ParseError, a dangling account or commodity
// reference a *ReferenceError.
func (d *Decoder) Decode() (*Book, error) {
	var doc xmlDocument
	if err := xml.NewDecoder(d.r).Decode(&doc); err != nil {
		return nil, &ParseError{Err: err}
	}

	// Fresh lookup tables per call, so no state leaks between runs.
	d.commodities = make(map[string]*Commodity)
	d.accounts = make(map[string]*Account)

	book := &Book{}
	if err := d.collectCommodities(book, doc.Book.Commodities); err != nil {
		return nil, err
	}
	if err := d.collectAccounts(book, doc.Book.Accounts); err != nil {
		return nil, err
	}
	if err := d.collectTransactions(book, doc.Book.Transactions); err != nil {
		return nil, err
	}
	return book, nil
}

func (d *Decoder) collectCommodities(book *Book, elems []xmlCommodity) error {
	for _, e := range elems {
		if e.Space == templateSpace || e.ID == "" {
			continue
		}
		if prev, ok := d.commodities[e.ID]; ok {
			if prev.Fraction != e.Fraction {
				return fmt.Errorf("%w: %s", ErrDuplicateCommodity, e.ID)
			}
			// Identical redefinition, keep the first.
			continue
		}
		c := &Commodity{Space: e.Space, ID: e.ID, Name: e.Name, Fraction: e.Fraction}
		d.commodities[c.ID] = c
		book.Commodities = append(book.Commodities, c)
	}
	return nil
}

func (d *Decoder) collectAccounts(book *Book, elems []xmlAccount) error {
	byGUID := make(map[string]*xmlAccount, len(elems))
	for i := range elems {
		byGUID[elems[i].ID] = &elems[i]
	}

	seen := make(map[string]bool, len(elems))
	for i := range elems {
		e := &elems[i]
		if e.Type == "ROOT" {
			continue
		}
		if e.Commodity.Space == templateSpace {
			continue
		}
		if e.Commodity.ID != "" {
			if _, ok := d.commodities[e.Commodity.ID]; !ok {
				return &ReferenceError{Kind: "commodity", Name: e.Commodity.ID}
			}
		}
		full, err := fullName(e, byGUID)
		if err != nil {
			return err
		}
		if seen[full] {
			return fmt.Errorf("%w: %s", ErrDuplicateAccount, full)
		}
		seen[full] = true

		a := &Account{
			ID:          e.ID,
			Name:        e.Name,
			FullName:    full,
			Type:        e.Type,
			Description: e.Description,
			Commodity:   e.Commodity.ID,
		}
		d.accounts[a.ID] = a
		book.Accounts = append(book.Accounts, a)
	}
	return nil
}

// fullName joins the account's ancestor names with colons, stopping
// below the ROOT account. Parent GUIDs that loop back on themselves are
// a structural error, not grounds for an endless walk.
func fullName(e *xmlAccount, byGUID map[string]*xmlAccount) (string, error) {
	name := e.Name
	visited := map[string]bool{e.ID: true}
	for guid := e.Parent; guid != ""; {
		if visited[guid] {
			return "", &ParseError{Err: fmt.Errorf("account parent cycle at %s", guid)}
		}
		visited[guid] = true
		parent, ok := byGUID[guid]
		if !ok {
			return "", &ReferenceError{Kind: "account", Name: guid}
		}
		if parent.Type == "ROOT" {
			break
		}
		name = parent.Name + ":" + name
		guid = parent.Parent
	}
	return name, nil
}

func (d *Decoder) collectTransactions(book *Book, elems []xmlTransaction) error {
	for i := range elems {
		e := &elems[i]
		when, err := parsePostedDate(e.DatePosted.Date)
		if err != nil {
			return &ParseError{Err: err}
		}
		if _, ok := d.commodities[e.Currency.ID]; !ok {
			return &ReferenceError{Kind: "commodity", Name: e.Currency.ID}
		}

		t := &Transaction{
			Date:        when,
			Num:         e.Num,
			Description: e.Description,
			Currency:    e.Currency.ID,
		}
		for _, se := range e.Splits {
			split, err := d.resolveSplit(&se)
			if err != nil {
				return err
			}
			t.Splits = append(t.Splits, split)
		}
		book.Transactions = append(book.Transactions, t)
	}
	return nil
}

func (d *Decoder) resolveSplit(e *xmlSplit) (*Split, error) {
	account, ok := d.accounts[e.Account]
	if !ok {
		return nil, &ReferenceError{Kind: "account", Name: e.Account}
	}
	value, err := parseAmount(e.Value)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	// Zero quantities are legitimate (e.g. stock splits) and kept.
	quantity, err := parseAmount(e.Quantity)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return &Split{
		Account:    account,
		Value:      value,
		Quantity:   quantity,
		Memo:       e.Memo,
		Reconciled: e.Reconciled == "y",
	}, nil
}

// parsePostedDate tries the fixed GnuCash timestamp layout first and
// falls back to a best-effort parse for books written by older
// releases.
func parsePostedDate(s string) (time.Time, error) {
	when, err := time.Parse(postedDateLayout, s)
	if err == nil {
		return when, nil
	}
	when, err = date.Parse(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date(%s): %w", s, err)
	}
	return when, nil
}

// ParseGnuCash is a convenience helper that decodes a whole book from r.
func ParseGnuCash(r io.Reader) (*Book, error) {
	return NewDecoder(r).Decode()
}
