package sheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nikunjkothiya/deckgen/pkg/errors"
)

// writeWorkbook saves rows into a new workbook under the given sheet name
func writeWorkbook(t *testing.T, sheetName string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", sheetName))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheetName, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadReadsHeaderAndRows(t *testing.T) {
	path := writeWorkbook(t, "Summaries", [][]interface{}{
		{"Case Study Name", "Client", "Duckers Solution"},
		{"Acme", "Acme Corp", "*Point A*Point B"},
		{"Globex", nil, "Plain"},
	})

	table, err := Load(path, "Summaries")
	require.NoError(t, err)

	assert.Equal(t, "Summaries", table.Sheet)
	assert.Equal(t, []string{"Case Study Name", "Client", "Duckers Solution"}, table.Columns)
	require.Equal(t, 2, table.Len())

	assert.Equal(t, Value{Text: "Acme", Present: true}, table.Rows[0].Get("Case Study Name"))
	assert.Equal(t, "*Point A*Point B", table.Rows[0].Get("Duckers Solution").Text)
	assert.False(t, table.Rows[1].Get("Client").Present)
	assert.Equal(t, "Plain", table.Rows[1].Get("Duckers Solution").Text)
}

func TestLoadDefaultsToSummariesSheet(t *testing.T) {
	path := writeWorkbook(t, "Summaries", [][]interface{}{
		{"Name"},
		{"Only"},
	})

	table, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestLoadMissingSheet(t *testing.T) {
	path := writeWorkbook(t, "Data", [][]interface{}{{"Name"}, {"x"}})

	_, err := Load(path, "Summaries")
	require.Error(t, err)
	assert.Equal(t, errors.ErrReadFailed, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "Summaries")
	assert.Contains(t, err.Error(), "Data")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.xlsx"), "Summaries")
	require.Error(t, err)
	assert.Equal(t, errors.ErrFileNotFound, errors.CodeOf(err))
}

func TestLoadGarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0644))

	_, err := Load(path, "Summaries")
	require.Error(t, err)
	assert.Equal(t, errors.ErrReadFailed, errors.CodeOf(err))
}

func TestLoadNumbersAsDisplayText(t *testing.T) {
	path := writeWorkbook(t, "Summaries", [][]interface{}{
		{"Name", "Year"},
		{"Acme", 2021},
	})

	table, err := Load(path, "Summaries")
	require.NoError(t, err)
	assert.Equal(t, "2021", table.Rows[0].Get("Year").Text)
}

func TestSheetNames(t *testing.T) {
	path := writeWorkbook(t, "Summaries", [][]interface{}{{"Name"}})

	names, err := SheetNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Summaries"}, names)
}

func TestLoadLegacyWorkbook(t *testing.T) {
	path := filepath.Join("testdata", "table.xls")

	table, err := Load(path, "Table")
	require.NoError(t, err)

	assert.Equal(t, []string{"Code", "Name", "Description"}, table.Columns)
	require.Equal(t, 11, table.Len())
	assert.Equal(t, Text("code1"), table.Rows[0].Get("Code"))
	assert.Equal(t, "name1", table.Rows[0].Get("Name").Text)
	assert.Equal(t, "description11", table.Rows[10].Get("Description").Text)
}

func TestLoadLegacyWorkbookMissingSheet(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "table.xls"), "Summaries")
	require.Error(t, err)
	assert.Equal(t, errors.ErrReadFailed, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "available sheets: Table")
}

func TestLegacySheetNames(t *testing.T) {
	names, err := SheetNames(filepath.Join("testdata", "table.xls"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Table"}, names)
}
