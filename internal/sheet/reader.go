package sheet

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/richardlehane/mscfb"
	"github.com/xuri/excelize/v2"

	"github.com/nikunjkothiya/deckgen/pkg/errors"
)

// DefaultSheet is the worksheet read when none is named
const DefaultSheet = "Summaries"

// format is the container kind of a workbook on disk
type format int

const (
	formatOOXML format = iota
	formatBIFF
	formatEncrypted
)

// Load reads the named worksheet of the workbook at path into a Table.
// The first row of the sheet is the header.
func Load(path, sheetName string) (*Table, error) {
	if sheetName == "" {
		sheetName = DefaultSheet
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.NewWithFile(errors.ErrFileNotFound, "Spreadsheet not found", path)
	}

	kind, err := detect(path)
	if err != nil {
		return nil, err
	}

	var raw [][]string
	switch kind {
	case formatEncrypted:
		return nil, errors.NewWithFile(errors.ErrReadFailed, "Spreadsheet is password protected", path)
	case formatBIFF:
		raw, err = readBIFF(path, sheetName)
	default:
		raw, err = readOOXML(path, sheetName)
	}
	if err != nil {
		return nil, err
	}

	return newTable(sheetName, raw), nil
}

// SheetNames lists the worksheets of the workbook at path
func SheetNames(path string) ([]string, error) {
	kind, err := detect(path)
	if err != nil {
		return nil, err
	}
	if kind == formatBIFF {
		var names []string
		err := withBIFF(path, func(wb *xls.WorkBook) error {
			for i := 0; i < wb.NumSheets(); i++ {
				if ws := wb.GetSheet(i); ws != nil {
					names = append(names, ws.Name)
				}
			}
			return nil
		})
		return names, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewWithDetails(errors.ErrReadFailed, "Failed to open spreadsheet", path, err.Error())
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// detect sniffs the workbook container. Legacy .xls files and encrypted
// OOXML packages are both OLE compound documents.
func detect(path string) (format, error) {
	file, err := os.Open(path)
	if err != nil {
		return formatOOXML, errors.WrapWithFile(err, errors.ErrReadFailed, "Cannot open spreadsheet", path)
	}
	defer file.Close()

	doc, err := mscfb.New(file)
	if err != nil {
		// Not OLE; excelize decides whether it is a usable zip package
		return formatOOXML, nil
	}

	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		switch entry.Name {
		case "EncryptedPackage":
			return formatEncrypted, nil
		case "Workbook", "Book":
			return formatBIFF, nil
		}
	}

	if strings.EqualFold(filepath.Ext(path), ".xls") {
		return formatBIFF, nil
	}
	return formatOOXML, errors.NewWithFile(errors.ErrReadFailed, "Not a spreadsheet (OLE file without a workbook stream)", path)
}

// readOOXML reads a sheet from an .xlsx/.xlsm workbook
func readOOXML(path, sheetName string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewWithDetails(errors.ErrReadFailed, "Invalid Excel format", path, err.Error())
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(sheetName)
	if err != nil || idx < 0 {
		return nil, missingSheet(path, sheetName)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, errors.NewWithDetails(errors.ErrReadFailed, "Failed to read sheet", path, err.Error())
	}
	return rows, nil
}

// readBIFF reads a sheet from a legacy Excel 97-2003 workbook
func readBIFF(path, sheetName string) ([][]string, error) {
	var rows [][]string
	found := false

	err := withBIFF(path, func(wb *xls.WorkBook) error {
		for i := 0; i < wb.NumSheets(); i++ {
			ws := wb.GetSheet(i)
			if ws == nil || ws.Name != sheetName {
				continue
			}
			found = true
			for r := 0; r <= int(ws.MaxRow); r++ {
				row := biffRow(ws, r)
				if row == nil {
					rows = append(rows, nil)
					continue
				}
				cells := make([]string, row.LastCol())
				for c := range cells {
					cells[c] = row.Col(c)
				}
				rows = append(rows, cells)
			}
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, missingSheet(path, sheetName)
	}
	return rows, nil
}

// withBIFF opens a legacy workbook for the duration of fn
func withBIFF(path string, fn func(wb *xls.WorkBook) error) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.WrapWithFile(err, errors.ErrReadFailed, "Cannot open spreadsheet", path)
	}
	defer file.Close()

	wb, err := xls.OpenReader(file, "utf-8")
	if err != nil {
		return errors.NewWithDetails(errors.ErrReadFailed, "Invalid Excel 97-2003 format", path, err.Error())
	}
	return fn(wb)
}

// biffRow returns row i of ws, or nil when the sheet has no record for it.
// WorkSheet.Row dereferences missing rows.
func biffRow(ws *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(i)
}

// missingSheet reports a sheet that is not in the workbook, listing the
// sheets that are
func missingSheet(path, sheetName string) error {
	details := ""
	if names, err := SheetNames(path); err == nil {
		details = "available sheets: " + strings.Join(names, ", ")
	}
	return errors.NewWithDetails(errors.ErrReadFailed,
		"Worksheet named '"+sheetName+"' not found", path, details)
}
