// Package export writes similarity sweep results to CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Row is one property and its ranked similar ids.
type Row struct {
	PropertyID uint64
	SimilarIDs []uint64
}

// WriteCSV writes sweep rows as `property_id,similar_property_ids`, the
// similar ids space-joined inside one field.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"property_id", "similar_property_ids"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range rows {
		ids := make([]string, len(row.SimilarIDs))
		for i, id := range row.SimilarIDs {
			ids[i] = strconv.FormatUint(id, 10)
		}
		record := []string{
			strconv.FormatUint(row.PropertyID, 10),
			strings.Join(ids, " "),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row for property %d: %w", row.PropertyID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ReadCSV parses rows in the WriteCSV layout. The header row is skipped; a
// ground-truth file for evaluation uses the same format as a sweep output.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		id, err := strconv.ParseUint(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse property id %q: %w", record[0], err)
		}

		var similar []uint64
		for _, field := range strings.Fields(record[1]) {
			sid, err := strconv.ParseUint(field, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse similar id %q for property %d: %w", field, id, err)
			}
			similar = append(similar, sid)
		}
		rows = append(rows, Row{PropertyID: id, SimilarIDs: similar})
	}
	return rows, nil
}
