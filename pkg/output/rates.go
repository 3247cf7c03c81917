package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/admin-cost/internal/rates"
	"github.com/iwvelando/admin-cost/pkg/constants"
)

var kinds = []rates.Kind{rates.KindStudy, rates.KindMonitoring}

// RatesFormat outputs the fee schedule, one table per kind. csv gives one
// row per category and kind; any other format gives aligned text.
func RatesFormat(w io.Writer, outputFormat string, table *rates.Table) error {
	if table == nil {
		table = rates.Default()
	}
	brackets := table.Brackets()

	if outputFormat == constants.OutputFormatCSV {
		cw := csv.NewWriter(w)
		header := []string{"kind", "category"}
		for _, b := range brackets {
			header = append(header, b.String())
		}
		if err := cw.Write(header); err != nil {
			return err
		}
		for _, kind := range kinds {
			for _, row := range table.Rows(kind) {
				record := []string{kind.String(), string(row.Category)}
				for _, cell := range row.Cells {
					record = append(record, cell.String())
				}
				if err := cw.Write(record); err != nil {
					return err
				}
			}
		}
		cw.Flush()
		return cw.Error()
	}

	for i, kind := range kinds {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "--- %s rates (%%) ---\n", kind)
		labels := make([]string, len(brackets))
		for j, b := range brackets {
			labels[j] = fmt.Sprintf("%9s", b.String())
		}
		fmt.Fprintf(w, "Category | %s\n", strings.Join(labels, " | "))
		for _, row := range table.Rows(kind) {
			cells := make([]string, len(row.Cells))
			for j, cell := range row.Cells {
				cells[j] = fmt.Sprintf("%9s", cell.String())
			}
			fmt.Fprintf(w, "%-8s | %s\n", row.Category, strings.Join(cells, " | "))
		}
	}
	return nil
}
