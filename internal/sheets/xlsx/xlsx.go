// Package xlsx writes reports into a local Excel workbook.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"vacstat/internal/core"
	ports "vacstat/internal/sheets"
)

var _ ports.ReportPublisher = (*Writer)(nil)

// Writer replaces the workbook at Path on every publish.
type Writer struct {
	Path string
}

func New(path string) *Writer {
	return &Writer{Path: path}
}

func (w *Writer) PublishReport(ctx context.Context, report core.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	tables := ports.Tables(report)
	for i, tbl := range tables {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), tbl.Name); err != nil {
				return fmt.Errorf("rename sheet %s: %w", tbl.Name, err)
			}
		} else if _, err := f.NewSheet(tbl.Name); err != nil {
			return fmt.Errorf("add sheet %s: %w", tbl.Name, err)
		}

		for r, row := range tbl.Values() {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(tbl.Name, cell, &row); err != nil {
				return fmt.Errorf("write %s row %d: %w", tbl.Name, r+1, err)
			}
		}

		last, err := excelize.CoordinatesToCellName(len(tbl.Header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(tbl.Name, "A1", last, header); err != nil {
			return fmt.Errorf("style %s header: %w", tbl.Name, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(w.Path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	tmp := w.Path + ".tmp"
	if err := f.SaveAs(tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save workbook: %w", err)
	}
	if err := os.Rename(tmp, w.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace workbook: %w", err)
	}

	slog.InfoContext(ctx, "Wrote report workbook", "path", w.Path, "sheets", len(tables))
	return nil
}
