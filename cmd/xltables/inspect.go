package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/xltables/internal/decode"
	"github.com/joseph-ayodele/xltables/internal/export"
	"github.com/joseph-ayodele/xltables/internal/segment"
	"github.com/joseph-ayodele/xltables/internal/store"
)

var (
	inspectSheet string
	inspectXLSX  string
)

type tableReport struct {
	Name   string     `json:"name" yaml:"name"`
	Title  string     `json:"title" yaml:"title"`
	Anchor string     `json:"anchor" yaml:"anchor"`
	Rows   [][]string `json:"rows" yaml:"rows"`
}

type inspectReport struct {
	Source      string        `json:"source" yaml:"source"`
	Sheet       string        `json:"sheet,omitempty" yaml:"sheet,omitempty"`
	Occurrences int           `json:"occurrences" yaml:"occurrences"`
	Discarded   int           `json:"discarded" yaml:"discarded"`
	Tables      []tableReport `json:"tables" yaml:"tables"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <workbook>",
	Short: "Segment a workbook locally and print its tables",
	Long: `Segment a workbook without starting the server and print every table found.

Examples:
  xltables inspect model.xlsx
  xltables inspect model.xlsx --sheet "DCF" -o json
  xltables inspect model.xlsx --xlsx tables.xlsx   # also write one sheet per table`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		segCfg, err := segmentConfig(cfg)
		if err != nil {
			return err
		}
		opts := decodeOptions(cfg)
		if inspectSheet != "" {
			opts.Sheet = inspectSheet
		}

		if err := decode.CheckFilename(path); err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		g, err := decode.Bytes(data, opts)
		if err != nil {
			return err
		}
		res := segment.Segment(g, segCfg)
		logger.Debug("inspect.segmented", "path", path, "occurrences", len(res.Occurrences), "tables", len(res.Tables))

		report := inspectReport{
			Source:      path,
			Sheet:       opts.Sheet,
			Occurrences: len(res.Occurrences),
			Discarded:   res.Discarded(),
			Tables:      make([]tableReport, 0, len(res.Tables)),
		}
		named := make([]store.NamedTable, 0, len(res.Tables))
		for _, t := range res.Tables {
			anchor, _ := excelize.CoordinatesToCellName(t.Anchor.Col+1, t.Anchor.Row+1)
			rows := t.Cells.Records()
			report.Tables = append(report.Tables, tableReport{Name: t.Name, Title: t.Title, Anchor: anchor, Rows: rows})
			named = append(named, store.NamedTable{Name: t.Name, Rows: rows})
		}

		if inspectXLSX != "" {
			out, err := export.Workbook(named)
			if err != nil {
				return err
			}
			if err := os.WriteFile(inspectXLSX, out, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", inspectXLSX, err)
			}
			logger.Info("inspect.xlsx.ok", "path", inspectXLSX, "tables", len(named))
		}
		return writeOutput(cmd.OutOrStdout(), outputFormat, report)
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectSheet, "sheet", "", "worksheet to read (default: first sheet)")
	inspectCmd.Flags().StringVar(&inspectXLSX, "xlsx", "", "also write the tables to this workbook, one sheet per table")

	rootCmd.AddCommand(inspectCmd)
}
