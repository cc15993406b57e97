package main

import "github.com/gnc2ledger/gnucash/gnc2ledger/cmd"

func main() {
	cmd.Execute()
}
