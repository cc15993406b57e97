package cmd

import (
	"os"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gnc2ledger [flags] <gnucash-file>",
	Short: "Convert an uncompressed GnuCash XML file to ledger format",
	Long: `gnc2ledger reads a GnuCash book saved as uncompressed XML and writes
a text file suitable for the ledger and hledger command-line tools.

The book must be saved as uncompressed XML from within GnuCash;
compressed and SQLite-backed books are rejected.`,
	Example:       `  gnc2ledger -s -o books.ledger books.gnucash`,
	Args:          cobra.ExactArgs(1),
	RunE:          runConvert,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	cc.Init(&cc.Config{
		RootCmd:  rootCmd,
		Headings: cc.HiCyan + cc.Bold + cc.Underline,
		Commands: cc.HiYellow + cc.Bold,
		Example:  cc.Italic,
		ExecName: cc.Bold,
		Flags:    cc.Bold,
	})
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
