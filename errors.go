package gnucash

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateCommodity = errors.New("duplicate commodity with conflicting fraction")
	ErrDuplicateAccount   = errors.New("duplicate fully-qualified account name")
)

// ParseError reports a structurally unreadable document. It wraps the
// underlying decode error.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "gnucash: parse: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// ReferenceError reports a split or account referring to an identifier
// the document never defines.
type ReferenceError struct {
	Kind string // "account" or "commodity"
	Name string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("gnucash: undefined %s %q", e.Kind, e.Name)
}
