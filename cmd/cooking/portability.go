package cooking

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kipparis/cooking-notebook/internal/service"
)

var (
	exportOut  string
	importIn   string
	exportJSON bool
	importJSON bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every table as pipe-delimited CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(exportOut) == "" {
			return fmt.Errorf("--out is required")
		}
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.ExportCSV(sqldb, exportOut)
			if err != nil {
				return err
			}
			if exportJSON {
				return printJSON(cmd, report)
			}
			printTableCounts(cmd, report.Tables)
			fmt.Fprintf(cmd.OutOrStdout(), "Exported data to %s\n", report.Dir)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import pipe-delimited CSV files written by export",
	Long:  "Import adds rows to the database. Rows that clash with existing data are skipped and counted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(importIn) == "" {
			return fmt.Errorf("--in is required")
		}
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.ImportCSV(sqldb, importIn, logger())
			if err != nil {
				return err
			}
			if importJSON {
				return printJSON(cmd, report)
			}
			printTableCounts(cmd, report.Tables)
			for _, m := range report.Missing {
				fmt.Fprintf(cmd.OutOrStdout(), "Missing file: %s\n", m)
			}
			printWarnings(cmd, report.Warnings)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d row(s), skipped %d\n", report.Inserted, report.Skipped)
			return nil
		})
	},
}

func printTableCounts(cmd *cobra.Command, tables map[string]int) {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(cmd.OutOrStdout(), "TABLE\tROWS")
	for _, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", name, tables[name])
	}
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output directory")
	exportCmd.Flags().BoolVar(&exportJSON, "json", false, "Output report as JSON")
	importCmd.Flags().StringVar(&importIn, "in", "", "Directory holding <table>.csv files")
	importCmd.Flags().BoolVar(&importJSON, "json", false, "Output report as JSON")
}
