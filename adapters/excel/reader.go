package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"gosample/internal/errors"

	"github.com/xuri/excelize/v2"
)

const (
	fileTypeCSV  = "csv"
	fileTypeTSV  = "tsv"
	fileTypeXLSX = "xlsx"
)

// DataReader parses uploaded Excel and CSV bytes into tabular rows
type DataReader struct {
	filename string
	fileType string
	sheet    string // Optional worksheet name; defaults to the first sheet
}

// NewDataReader creates a reader, choosing the format from the filename extension
func NewDataReader(filename string) *DataReader {
	return &DataReader{filename: filename, fileType: detectFileType(filename)}
}

// WithSheet selects a worksheet by name for Excel workbooks
func (r *DataReader) WithSheet(sheet string) *DataReader {
	return &DataReader{filename: r.filename, fileType: r.fileType, sheet: sheet}
}

// IsWorkbook reports whether the file is an Excel workbook
func (r *DataReader) IsWorkbook() bool {
	return r.fileType == fileTypeXLSX
}

// ParseBytes parses file bytes with a reader chosen from the filename
func ParseBytes(data []byte, filename string) (*TabularData, error) {
	return NewDataReader(filename).ReadBytes(data)
}

func detectFileType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return fileTypeCSV
	case ".tsv":
		return fileTypeTSV
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return fileTypeXLSX
	}
	return ""
}

// ReadBytes reads data from Excel or CSV bytes into structured format
func (r *DataReader) ReadBytes(data []byte) (*TabularData, error) {
	if len(data) == 0 {
		return nil, errors.DataInvalidf("file %q is empty", r.filename)
	}

	log.Printf("[DataReader] Starting to read %s file: %s (%d bytes)", r.fileType, r.filename, len(data))

	switch r.fileType {
	case fileTypeCSV:
		return r.readDelimited(data, ',')
	case fileTypeTSV:
		return r.readDelimited(data, '\t')
	case fileTypeXLSX:
		return r.readWorkbook(data)
	default:
		return nil, errors.DataInvalidf("unsupported file type for %q: expected .csv, .tsv or .xlsx", r.filename)
	}
}

// ListSheets returns the worksheet names of an Excel workbook in tab order
func (r *DataReader) ListSheets(data []byte) ([]string, error) {
	if !r.IsWorkbook() {
		return nil, errors.DataInvalidf("%q is not an Excel workbook", r.filename)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WithCode(errors.CodeDataInvalid, errors.Wrap(err, "failed to open Excel file"))
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// readWorkbook reads the selected (or first) worksheet
func (r *DataReader) readWorkbook(data []byte) (*TabularData, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WithCode(errors.CodeDataInvalid, errors.Wrap(err, "failed to open Excel file"))
	}
	defer f.Close()
	log.Printf("[DataReader] Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.DataInvalid("Excel file has no worksheets")
		}
		sheet = sheets[0]
	}

	readStart := time.Now()
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDataInvalid, errors.Wrapf(err, "failed to read sheet %q", sheet))
	}
	log.Printf("[DataReader] Sheet %q read in %.2fms (%d rows)", sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, errors.DataInvalidf("sheet %q must have at least a header row and one data row", sheet)
	}

	parsed := r.processRows(rows)
	parsed.Sheet = sheet
	return parsed, nil
}

// readDelimited reads CSV or TSV data into structured format
func (r *DataReader) readDelimited(data []byte, comma rune) (*TabularData, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithCode(errors.CodeDataInvalid, errors.Wrap(err, "failed to read CSV file"))
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, errors.DataInvalid("CSV file must have at least a header row and one data row")
	}

	return r.processRows(rows), nil
}

// processRows converts raw string rows into TabularData
func (r *DataReader) processRows(rows [][]string) *TabularData {
	headers := uniqueHeaders(rows[0])

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(RawRowData, len(headers))
		for j, header := range headers {
			if j < len(row) {
				rowData[header] = strings.TrimSpace(row[j])
			} else {
				rowData[header] = ""
			}
		}
		dataRows = append(dataRows, rowData)
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &TabularData{
		Headers: headers,
		Rows:    dataRows,
	}
}

// uniqueHeaders trims header cells, names blank ones by position and suffixes duplicates
func uniqueHeaders(headerRow []string) []string {
	headers := make([]string, len(headerRow))
	seen := make(map[string]int, len(headerRow))

	for i, cell := range headerRow {
		header := strings.TrimSpace(cell)
		if header == "" {
			header = fmt.Sprintf("column_%d", i+1)
		}
		seen[header]++
		if n := seen[header]; n > 1 {
			header = fmt.Sprintf("%s_%d", header, n)
		}
		headers[i] = header
	}
	return headers
}
