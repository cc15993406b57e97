package cmd

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hako/durafmt"
	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"

	"github.com/gnc2ledger/gnucash"
	"github.com/gnc2ledger/gnucash/gnc2ledger/internal/progress"
	"github.com/gnc2ledger/gnucash/ledger"
)

var (
	outputPath   string
	forceClobber bool
	optionsPath  string
	showProgress bool

	markCleared    bool
	dateFormat     string
	emacsHeader    bool
	noAccounts     bool
	noCommodities  bool
	noTransactions bool
	payeeMetadata  bool
	useSymbols     bool
)

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&outputPath, "output", "o", "", "Write to this file instead of standard output.")
	flags.BoolVarP(&forceClobber, "force-clobber", "f", false, "Overwrite the output file if it already exists.")
	flags.StringVar(&optionsPath, "options", "", "Load conversion options from a TOML file. Flags take precedence.")
	flags.BoolVarP(&showProgress, "show-progress", "p", false, "Report progress on standard error.")

	flags.BoolVarP(&markCleared, "cleared", "c", false, "Mark every transaction as cleared (*).")
	flags.StringVarP(&dateFormat, "date-format", "d", "%Y-%m-%d", "strftime-style pattern for transaction dates.")
	flags.BoolVarP(&emacsHeader, "emacs-header", "e", false, "Prepend a header for Emacs ledger-mode.")
	flags.BoolVar(&noAccounts, "no-accounts", false, "Suppress the account definition block.")
	flags.BoolVar(&noCommodities, "no-commodities", false, "Suppress the commodity definition block.")
	flags.BoolVar(&noTransactions, "no-transactions", false, "Suppress the transaction block. Note that ledger rejects such a file.")
	flags.BoolVar(&payeeMetadata, "payee-metadata", false, "Tag non-empty split memos as '; Payee:' metadata.")
	flags.BoolVarP(&useSymbols, "use-symbols", "s", false, "Replace currency codes with display symbols.")
}

func runConvert(cmd *cobra.Command, args []string) error {
	start := time.Now()

	opts, err := buildOptions(cmd)
	if err != nil {
		return err
	}

	in, size, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	br := bufio.NewReader(in)
	if err := rejectUnsupported(br); err != nil {
		return err
	}

	var reader io.Reader = br
	var meter *progress.Meter
	if showProgress {
		meter = progress.NewMeter(os.Stderr, "reading "+args[0], size)
		reader = meter.Reader(reader)
	}
	book, err := gnucash.ParseGnuCash(reader)
	if meter != nil {
		meter.Done()
	}
	if err != nil {
		return err
	}

	if opts.UseSymbols && opts.Symbols == nil {
		opts.Symbols = ledger.BookSymbols(book)
	}
	writer, err := ledger.NewWriter(opts)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput()
	if err != nil {
		return err
	}
	if err := writer.Write(out, book); err != nil {
		closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return err
	}

	if showProgress {
		elapsed := durafmt.Parse(time.Since(start).Round(time.Millisecond))
		fmt.Fprintf(os.Stderr, "converted %d transactions across %d accounts in %s\n",
			len(book.Transactions), len(book.Accounts), elapsed)
	}
	return nil
}

// buildOptions layers the three option sources: defaults, then the TOML
// options file, then any flag the user set explicitly.
func buildOptions(cmd *cobra.Command) (ledger.Options, error) {
	opts := ledger.DefaultOptions()
	if optionsPath != "" {
		loaded, err := loadOptionsFile(optionsPath, opts)
		if err != nil {
			return opts, err
		}
		opts = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("cleared") {
		opts.MarkCleared = markCleared
	}
	if flags.Changed("date-format") {
		opts.DateFormat = dateFormat
	}
	if flags.Changed("emacs-header") {
		opts.EmacsHeader = emacsHeader
	}
	if flags.Changed("no-accounts") {
		opts.EmitAccounts = !noAccounts
	}
	if flags.Changed("no-commodities") {
		opts.EmitCommodities = !noCommodities
	}
	if flags.Changed("no-transactions") {
		opts.EmitTransactions = !noTransactions
	}
	if flags.Changed("payee-metadata") {
		opts.EmitPayeeMetadata = payeeMetadata
	}
	if flags.Changed("use-symbols") {
		opts.UseSymbols = useSymbols
	}
	return opts, nil
}

func loadOptionsFile(path string, base ledger.Options) (ledger.Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}
	if err := toml.Unmarshal(data, &base); err != nil {
		return base, fmt.Errorf("options file %s: %w", path, err)
	}
	return base, nil
}

func openInput(path string) (io.ReadCloser, int64, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), 0, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	return f, size, nil
}

func openOutput() (io.Writer, func() error, error) {
	if outputPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	if !forceClobber {
		if _, err := os.Stat(outputPath); err == nil {
			return nil, nil, fmt.Errorf("%s exists, use --force-clobber to overwrite", outputPath)
		}
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

var (
	gzipMagic   = []byte{0x1f, 0x8b}
	sqliteMagic = []byte("SQLite format 3")
)

// rejectUnsupported peeks at the stream and refuses the GnuCash save
// formats this converter does not handle, before any parsing starts.
func rejectUnsupported(br *bufio.Reader) error {
	head, err := br.Peek(len(sqliteMagic))
	if err != nil && len(head) < len(gzipMagic) {
		return fmt.Errorf("read input: %w", err)
	}
	if bytes.HasPrefix(head, gzipMagic) {
		return errors.New("input is compressed; save the book as uncompressed XML from within GnuCash")
	}
	if bytes.HasPrefix(head, sqliteMagic) {
		return errors.New("input is a SQLite book; only the uncompressed XML format is supported")
	}
	return nil
}
