// Package report renders tabular exports as xlsx workbooks.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Workbook writes sheets row by row.
type Workbook struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
	headerStyle  int
}

func NewWorkbook() *Workbook {
	return &Workbook{file: excelize.NewFile()}
}

// AddSheet starts a new sheet; the first call renames the default one.
func (w *Workbook) AddSheet(name string) error {
	// Excel limit
	if len(name) > 31 {
		name = name[:31]
	}

	if w.currentSheet == "" {
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", name, err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	w.currentSheet = name
	w.currentRow = 1
	return nil
}

// WriteHeader writes a bold header row and freezes it.
func (w *Workbook) WriteHeader(columns []string) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}
	for i, col := range columns {
		if err := w.set(i+1, col); err != nil {
			return err
		}
	}

	if w.headerStyle == 0 {
		style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err == nil {
			w.headerStyle = style
		}
	}
	if w.headerStyle != 0 {
		startCell, _ := excelize.CoordinatesToCellName(1, w.currentRow)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow)
		_ = w.file.SetCellStyle(w.currentSheet, startCell, endCell, w.headerStyle)
	}
	_ = w.file.SetPanes(w.currentSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      w.currentRow,
		TopLeftCell: fmt.Sprintf("A%d", w.currentRow+1),
		ActivePane:  "bottomLeft",
	})

	w.currentRow++
	return nil
}

func (w *Workbook) WriteRow(row []interface{}) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}
	for i, val := range row {
		if err := w.set(i+1, val); err != nil {
			return err
		}
	}
	w.currentRow++
	return nil
}

// Rows reports how many rows the current sheet holds, header included.
func (w *Workbook) Rows() int {
	return w.currentRow - 1
}

func (w *Workbook) Write(wr io.Writer) error {
	return w.file.Write(wr)
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

func (w *Workbook) set(col int, val interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, w.currentRow)
	if err != nil {
		return err
	}
	return w.file.SetCellValue(w.currentSheet, cell, val)
}
