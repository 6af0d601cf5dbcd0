package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

func writeJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func writeTable(w io.Writer, header []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header(header)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// render writes data as JSON, or as the table built by rows.
func render(w io.Writer, format string, data interface{}, header []string, rows func() [][]string) error {
	switch format {
	case "json":
		return writeJSON(w, data)
	case "table", "":
		return writeTable(w, header, rows())
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func score(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
