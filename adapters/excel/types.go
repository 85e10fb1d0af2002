package excel

// RawRowData represents a row of raw spreadsheet data as header -> cell text
type RawRowData map[string]string

// TabularData represents a parsed worksheet or CSV file
type TabularData struct {
	Sheet   string       // Worksheet the rows came from; empty for CSV
	Headers []string     // Column headers, trimmed and de-duplicated
	Rows    []RawRowData // Data rows in source order
}

// Column returns every row's value for the named header
func (d *TabularData) Column(header string) []string {
	values := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		values[i] = row[header]
	}
	return values
}

// HasHeader reports whether the header exists
func (d *TabularData) HasHeader(header string) bool {
	for _, h := range d.Headers {
		if h == header {
			return true
		}
	}
	return false
}
