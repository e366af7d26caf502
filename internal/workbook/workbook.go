package workbook

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"seiyo-exam/internal/question"
)

const (
	SheetQuestions = "Questions"
	SheetSubjects  = "Subjects"
)

var ErrSheetNotFound = errors.New("sheet not found")

type SheetNotFoundError struct {
	Sheet     string
	Available []string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("sheet %q not found (available: %s)", e.Sheet, strings.Join(e.Available, ", "))
}

func (e *SheetNotFoundError) Is(target error) bool {
	return target == ErrSheetNotFound
}

// Tables holds the two logical tables of a question workbook. Subjects is
// empty when the workbook has no Subjects sheet.
type Tables struct {
	Subjects  []question.RawRow
	Questions []question.RawRow
}

// ReadFile reads an .xlsx workbook, or a .csv file holding only questions.
func ReadFile(path string) (Tables, error) {
	file, err := os.Open(path)
	if err != nil {
		return Tables{}, err
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		questions, err := ReadCSV(file)
		if err != nil {
			return Tables{}, fmt.Errorf("read %s: %w", path, err)
		}
		return Tables{Questions: questions}, nil
	}

	tables, err := Read(file)
	if err != nil {
		return Tables{}, fmt.Errorf("read %s: %w", path, err)
	}
	return tables, nil
}

// Read extracts the Questions and Subjects sheets from an xlsx stream.
// Sheet names are matched case-insensitively.
func Read(r io.Reader) (Tables, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Tables{}, err
	}
	defer f.Close()

	sheets := f.GetSheetList()

	questionsSheet, ok := findSheet(sheets, SheetQuestions)
	if !ok {
		return Tables{}, &SheetNotFoundError{Sheet: SheetQuestions, Available: sheets}
	}
	questions, err := readSheet(f, questionsSheet)
	if err != nil {
		return Tables{}, err
	}

	tables := Tables{Questions: questions, Subjects: []question.RawRow{}}
	if subjectsSheet, ok := findSheet(sheets, SheetSubjects); ok {
		tables.Subjects, err = readSheet(f, subjectsSheet)
		if err != nil {
			return Tables{}, err
		}
	}
	return tables, nil
}

func findSheet(sheets []string, name string) (string, bool) {
	for _, sheet := range sheets {
		if strings.EqualFold(strings.TrimSpace(sheet), name) {
			return sheet, true
		}
	}
	return "", false
}

func readSheet(f *excelize.File, sheet string) ([]question.RawRow, error) {
	grid, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", sheet, err)
	}
	if len(grid) == 0 {
		return []question.RawRow{}, nil
	}

	header := headerNames(grid[0])
	rows := make([]question.RawRow, 0, len(grid)-1)
	for idx, values := range grid[1:] {
		rowNumber := idx + 2
		cells := make(map[string]question.Cell, len(header))
		for col, name := range header {
			if name == "" {
				continue
			}
			if col >= len(values) || values[col] == "" {
				cells[name] = question.Cell{}
				continue
			}
			cell, err := typedCell(f, sheet, col+1, rowNumber, values[col])
			if err != nil {
				return nil, err
			}
			cells[name] = cell
		}
		rows = append(rows, question.RawRow{Number: rowNumber, Cells: cells})
	}
	return rows, nil
}

// typedCell classifies a raw value using the cell type stored in the sheet.
// Untyped cells that parse as numbers are numbers.
func typedCell(f *excelize.File, sheet string, col, row int, raw string) (question.Cell, error) {
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return question.Cell{}, err
	}
	cellType, err := f.GetCellType(sheet, axis)
	if err != nil {
		return question.Cell{}, fmt.Errorf("sheet %s cell %s: %w", sheet, axis, err)
	}

	switch cellType {
	case excelize.CellTypeBool:
		if value, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil {
			return question.Bool(value), nil
		}
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return question.Number(value), nil
		}
	}
	return question.Text(raw), nil
}

func headerNames(values []string) []string {
	names := make([]string, len(values))
	for idx, value := range values {
		names[idx] = strings.TrimSpace(value)
	}
	return names
}
