package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// @title Banking Ledger API
// @version 1.0
// @description Double-entry ledger core: journal postings, fast transfers and balances.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "ledger_backend",
		Short:         "Banking ledger accounting core",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCommand())
	root.AddCommand(migrateCommand())
	root.AddCommand(tokenCommand())
	return root
}
