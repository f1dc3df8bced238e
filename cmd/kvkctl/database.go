package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/mmdatafocus/kvk_backend/config"
	"github.com/mmdatafocus/kvk_backend/models"
	"github.com/mmdatafocus/kvk_backend/sheets"
	"github.com/mmdatafocus/kvk_backend/workflow"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// connect fails fast; the server's retry loop is wrong for a one-shot command.
func connect() (*gorm.DB, error) {
	if err := config.ConnectDatabase(); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return config.GetDB(), nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the users, reports and audit_logs tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := connect(); err != nil {
				return err
			}
			if err := models.AutoMigrate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var (
		out    string
		status string
		kvk    string
		from   string
		to     string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export reports to an Excel file with administrator visibility",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := models.ReportFilter{
				Status:  models.ReportStatus(status),
				KvkName: kvk,
			}
			if filter.Status != "" && !filter.Status.IsValid() {
				return fmt.Errorf("invalid status %q", status)
			}
			var ok bool
			if filter.DateFrom, ok = models.ParseDateBound(from, false); !ok {
				return fmt.Errorf("invalid --from date %q", from)
			}
			if filter.DateTo, ok = models.ParseDateBound(to, true); !ok {
				return fmt.Errorf("invalid --to date %q", to)
			}

			if _, err := connect(); err != nil {
				return err
			}
			actor := models.ReportActor{Role: models.UserRoleAdmin}
			reports, err := models.ReportsForExport(cmd.Context(), actor, filter)
			if err != nil {
				return err
			}
			buf, err := sheets.ExportReports(reports)
			if err != nil {
				return err
			}
			if out == "" {
				out = sheets.ExportFilename(time.Now())
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d reports to %s\n", len(reports), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "destination file (default kvk_reports_<date>.xlsx)")
	cmd.Flags().StringVar(&status, "status", "", "only reports in this status")
	cmd.Flags().StringVar(&kvk, "kvk", "", "KVK name filter (substring)")
	cmd.Flags().StringVar(&from, "from", "", "report date lower bound (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "report date upper bound (YYYY-MM-DD)")
	return cmd
}

func newOutboxCmd() *cobra.Command {
	outbox := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect the audit event outbox",
	}
	outbox.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Count audit rows per publish status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect()
			if err != nil {
				return err
			}
			counts, err := workflow.OutboxCounts(cmd.Context(), db)
			if err != nil {
				return err
			}
			printCounts(cmd, counts)
			return nil
		},
	}, &cobra.Command{
		Use:   "requeue",
		Short: "Move DEAD audit events back to PENDING",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect()
			if err != nil {
				return err
			}
			n, err := workflow.RequeueDead(cmd.Context(), db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "requeued %d events\n", n)
			return nil
		},
	})
	return outbox
}

func printCounts(cmd *cobra.Command, counts map[string]int64) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "%-10s %d\n", k, counts[k])
	}
}
