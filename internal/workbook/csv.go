package workbook

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"seiyo-exam/internal/question"
)

// ReadCSV reads a questions table exported as CSV. Every cell is text.
func ReadCSV(r io.Reader) ([]question.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	record, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []question.RawRow{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(record) > 0 {
		record[0] = strings.TrimPrefix(record[0], "\ufeff")
	}
	header := headerNames(record)

	rows := make([]question.RawRow, 0)
	for rowNumber := 2; ; rowNumber++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		cells := make(map[string]question.Cell, len(header))
		for col, name := range header {
			if name == "" {
				continue
			}
			if col >= len(record) || record[col] == "" {
				cells[name] = question.Cell{}
				continue
			}
			cells[name] = question.Text(record[col])
		}
		rows = append(rows, question.RawRow{Number: rowNumber, Cells: cells})
	}
	return rows, nil
}
