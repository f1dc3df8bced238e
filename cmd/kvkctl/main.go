// kvkctl is the operator CLI for the KVK annual report backend.
//
// Usage:
//
//	kvkctl migrate
//	kvkctl template -o template.xlsx
//	kvkctl columns --format yaml
//	kvkctl import report.xlsx --workbook --format json
//	kvkctl export -o reports.xlsx --status approved
//	kvkctl outbox status
//	kvkctl outbox requeue
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kvkctl",
		Short:         "Operator tooling for the KVK annual report backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newTemplateCmd(),
		newColumnsCmd(),
		newImportCmd(),
		newExportCmd(),
		newOutboxCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
