package ledger

import "fmt"

// Options control which blocks the Writer emits and how amounts and
// dates are rendered. The zero value emits nothing; start from
// DefaultOptions.
type Options struct {
	EmitCommodities  bool `toml:"commodities"`
	EmitAccounts     bool `toml:"accounts"`
	EmitTransactions bool `toml:"transactions"`

	// DateFormat is a strftime-style pattern applied to every
	// transaction date.
	DateFormat string `toml:"date_format"`

	// MarkCleared prefixes every transaction with a cleared marker.
	// When off, individual splits that GnuCash recorded as reconciled
	// still get a per-posting marker.
	MarkCleared bool `toml:"cleared"`

	// UseSymbols replaces commodity identifiers with their display
	// symbol from Symbols wherever amounts are printed. Identifiers
	// without a mapping keep their code.
	UseSymbols bool `toml:"use_symbols"`

	// EmitPayeeMetadata emits a "; Payee:" metadata comment beneath
	// each posting whose split carries a memo.
	EmitPayeeMetadata bool `toml:"payee_metadata"`

	// EmacsHeader prepends the comment header recognized by Emacs
	// ledger-mode.
	EmacsHeader bool `toml:"emacs_header"`

	// Symbols is the injected read-only table mapping commodity
	// identifiers to display symbols. See CurrencySymbols for a table
	// backed by go-money's currency registry.
	Symbols map[string]string `toml:"symbols"`
}

// DefaultOptions mirror the converter's command-line defaults: all
// blocks on, ISO dates, currency codes rather than symbols.
func DefaultOptions() Options {
	return Options{
		EmitCommodities:  true,
		EmitAccounts:     true,
		EmitTransactions: true,
		DateFormat:       "%Y-%m-%d",
	}
}

// ConfigError reports an option value the Writer cannot use. It is
// returned before any output is written.
type ConfigError struct {
	Option string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("ledger: option %s: %s", e.Option, e.Reason)
}
