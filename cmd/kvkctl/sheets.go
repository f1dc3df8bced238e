package main

import (
	"fmt"
	"os"

	"github.com/mmdatafocus/kvk_backend/sheets"
	"github.com/spf13/cobra"
)

func newTemplateCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the single-row import template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := sheets.GenerateTemplate()
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d columns)\n", out, len(sheets.ReportSchema.Headers()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", sheets.TemplateFilename, "destination file")
	return cmd
}

func newColumnsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "columns",
		Short: "List the import columns and the report fields they fill",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOutput(cmd.OutOrStdout(), format, sheets.ReportSchema.Describe())
		},
	}
	cmd.Flags().StringVar(&format, "format", formatYAML, "output format: json or yaml")
	return cmd
}

// newImportCmd parses a workbook without touching the database.
func newImportCmd() *cobra.Command {
	var (
		format   string
		workbook bool
		strict   bool
	)
	cmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Dry-run an Excel import and print the report it would produce",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			parse := sheets.ParseSingleRow
			if workbook {
				parse = sheets.ParseWorkbook
			}
			res, err := parse(f)
			if err != nil {
				return err
			}
			if err := writeOutput(cmd.OutOrStdout(), format, res); err != nil {
				return err
			}
			if strict && len(res.Warnings) > 0 {
				return fmt.Errorf("%d cell warnings", len(res.Warnings))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json or yaml")
	cmd.Flags().BoolVar(&workbook, "workbook", false, "parse the multi-sheet workbook layout instead of a single header row")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any cell produced a warning")
	return cmd
}
