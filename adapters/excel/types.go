package excel

// TableData is a file read into a header row and raw string cells keyed by header
type TableData struct {
	Headers []string
	Rows    []map[string]any
}
