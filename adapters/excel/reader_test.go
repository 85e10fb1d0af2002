package excel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gosample/internal/errors"
)

func buildWorkbook(t *testing.T, sheets map[string][][]interface{}, order []string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadBytes_CSV(t *testing.T) {
	data := []byte("\xef\xbb\xbfInvoice, Amount ,Amount\nINV-1,\"1,200.50\",x\nINV-2,300\n")

	parsed, err := ParseBytes(data, "ledger.CSV")
	require.NoError(t, err)

	assert.Equal(t, []string{"Invoice", "Amount", "Amount_2"}, parsed.Headers)
	require.Len(t, parsed.Rows, 2)
	assert.Equal(t, "1,200.50", parsed.Rows[0]["Amount"])
	assert.Equal(t, "x", parsed.Rows[0]["Amount_2"])
	assert.Equal(t, "", parsed.Rows[1]["Amount_2"], "short rows are padded")
	assert.Equal(t, []string{"INV-1", "INV-2"}, parsed.Column("Invoice"))
	assert.True(t, parsed.HasHeader("Amount_2"))
	assert.False(t, parsed.HasHeader("Missing"))
}

func TestReadBytes_TSV(t *testing.T) {
	parsed, err := ParseBytes([]byte("id\tamount\nA\t10\n"), "export.tsv")
	require.NoError(t, err)
	assert.Equal(t, "10", parsed.Rows[0]["amount"])
}

func TestReadBytes_Workbook(t *testing.T) {
	data := buildWorkbook(t, map[string][][]interface{}{
		"Receivables": {
			{"Customer", "Balance", "", "Memo"},
			{"ACME", 1500.25, nil, "note"},
			{"Globex", -200},
		},
		"Payables": {
			{"Vendor", "Balance"},
			{"Initech", 99},
		},
	}, []string{"Receivables", "Payables"})

	reader := NewDataReader("ar.xlsx")
	assert.True(t, reader.IsWorkbook())

	parsed, err := reader.ReadBytes(data)
	require.NoError(t, err)
	assert.Equal(t, "Receivables", parsed.Sheet)
	assert.Equal(t, []string{"Customer", "Balance", "column_3", "Memo"}, parsed.Headers)
	require.Len(t, parsed.Rows, 2)
	assert.Equal(t, "1500.25", parsed.Rows[0]["Balance"])
	assert.Equal(t, "-200", parsed.Rows[1]["Balance"])
	assert.Equal(t, "note", parsed.Rows[0]["Memo"])

	sheets, err := reader.ListSheets(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"Receivables", "Payables"}, sheets)

	payables, err := reader.WithSheet("Payables").ReadBytes(data)
	require.NoError(t, err)
	assert.Equal(t, "Payables", payables.Sheet)
	assert.Equal(t, "Initech", payables.Rows[0]["Vendor"])
}

func TestReadBytes_Errors(t *testing.T) {
	_, err := ParseBytes([]byte("a,b\n1,2\n"), "ledger.pdf")
	require.Error(t, err)
	assert.Equal(t, errors.CodeDataInvalid, errors.GetCode(err))

	_, err = ParseBytes(nil, "ledger.csv")
	assert.Equal(t, errors.CodeDataInvalid, errors.GetCode(err))

	_, err = ParseBytes([]byte("only,headers\n"), "ledger.csv")
	assert.Equal(t, errors.CodeDataInvalid, errors.GetCode(err))

	_, err = ParseBytes([]byte("not a zip archive"), "ledger.xlsx")
	assert.Equal(t, errors.CodeDataInvalid, errors.GetCode(err))

	_, err = NewDataReader("ledger.csv").ListSheets([]byte("a\n1\n"))
	assert.Equal(t, errors.CodeDataInvalid, errors.GetCode(err))
}
