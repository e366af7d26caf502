package question

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseError reports a cell that could not be coerced to its column type.
type ParseError struct {
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: column %s: %s (value %q)", e.Row, e.Column, e.Reason, e.Value)
}

// ToBool accepts booleans, numbers (nonzero is true) and the strings
// true/1/y/yes and false/0/n/no. ok is false when the cell holds no
// recognisable flag; that means absent, not false.
func ToBool(c Cell) (value bool, ok bool) {
	switch c.Kind {
	case CellBool:
		return c.Bool, true
	case CellNumber:
		return c.Number != 0, true
	case CellText:
		switch strings.ToLower(strings.TrimSpace(c.Text)) {
		case "true", "1", "y", "yes":
			return true, true
		case "false", "0", "n", "no":
			return false, true
		}
	}
	return false, false
}

// ToInt accepts a number (truncated toward zero) or a numeric string.
func ToInt(c Cell) (int, bool) {
	var f float64
	switch c.Kind {
	case CellNumber:
		f = c.Number
	case CellText:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(c.Text), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Trunc(f)), true
}

// ToYear4 is ToInt restricted to four-digit years.
func ToYear4(c Cell) (int, bool) {
	year, ok := ToInt(c)
	if !ok || year < 1000 || year > 9999 {
		return 0, false
	}
	return year, true
}

// HasAnyContent reports whether any content column holds a value.
func HasAnyContent(raw RawRow) bool {
	for _, column := range contentColumns {
		if !raw.Get(column).IsBlank() {
			return true
		}
	}
	return false
}

// FilterReadyRows keeps non-blank rows whose status is READY. Other rows
// are dropped without being reported.
func FilterReadyRows(rows []RawRow) []RawRow {
	ready := make([]RawRow, 0, len(rows))
	for _, raw := range rows {
		if !HasAnyContent(raw) {
			continue
		}
		if strings.ToUpper(raw.text(ColStatus)) != StatusReady {
			continue
		}
		ready = append(ready, raw)
	}
	return ready
}

// Parse coerces a raw row into a typed Row. It does not derive answer
// flags; see Normalize.
func Parse(raw RawRow) (Row, error) {
	row := Row{
		Number:           raw.Number,
		QuestionID:       raw.text(ColQuestionID),
		CourseID:         raw.text(ColCourseID),
		SubjectID:        raw.text(ColSubjectID),
		ExamYearRaw:      raw.text(ColExamYear),
		QuestionTextJA:   raw.text(ColQuestionTextJA),
		QuestionTextVI:   raw.text(ColQuestionTextVI),
		QuestionImage:    raw.text(ColQuestionImage),
		ExplanationJA:    raw.text(ColExplanationJA),
		ExplanationVI:    raw.text(ColExplanationVI),
		ExplanationImage: raw.text(ColExplanationImage),
		Status:           strings.ToUpper(raw.text(ColStatus)),
		Version:          raw.text(ColVersion),
		SourceNote:       raw.text(ColSourceNote),
		Tags:             splitTags(raw.text(ColTags)),
		Difficulty:       raw.text(ColDifficulty),
	}
	row.ExamYear, row.YearValid = ToYear4(raw.Get(ColExamYear))

	for slot := 1; slot <= OptionCount; slot++ {
		option := Option{
			TextJA:        raw.text(OptionColumn(slot, FieldTextJA)),
			TextVI:        raw.text(OptionColumn(slot, FieldTextVI)),
			Image:         raw.text(OptionColumn(slot, FieldImage)),
			ExplanationJA: raw.text(OptionColumn(slot, FieldExplanationJA)),
			ExplanationVI: raw.text(OptionColumn(slot, FieldExplanationVI)),
		}

		column := OptionColumn(slot, FieldIsAnswer)
		cell := raw.Get(column)
		if !cell.IsBlank() {
			flag, ok := ToBool(cell)
			if !ok {
				return Row{}, &ParseError{Row: raw.Number, Column: column, Value: cell.String(), Reason: "not a boolean"}
			}
			option.IsAnswer = &flag
		}
		row.Options[slot-1] = option
	}

	if cell := raw.Get(ColAnswerIsOption); !cell.IsBlank() {
		index, ok := ToInt(cell)
		if !ok || index < 1 || index > OptionCount {
			return Row{}, &ParseError{Row: raw.Number, Column: ColAnswerIsOption, Value: cell.String(), Reason: "must be an option number 1-5"}
		}
		row.AnswerIsOption = index
	}

	return row, nil
}

// Normalize parses a raw row and derives answer flags from AnswerIsOption.
func Normalize(raw RawRow) (Row, error) {
	row, err := Parse(raw)
	if err != nil {
		return Row{}, err
	}
	row.AnswerIndexMismatch = ApplyAnswerFromIndex(&row)
	return row, nil
}

// ApplyAnswerFromIndex marks exactly the AnswerIsOption slot as the answer
// when no option carries an explicit flag. Explicit flags always win; the
// return value reports whether they disagree with the index.
func ApplyAnswerFromIndex(row *Row) (mismatch bool) {
	if row.AnswerIsOption < 1 || row.AnswerIsOption > OptionCount {
		return false
	}

	explicit := false
	for _, option := range row.Options {
		if option.IsAnswer != nil {
			explicit = true
			break
		}
	}

	if explicit {
		return !row.Options[row.AnswerIsOption-1].Correct()
	}

	for idx := range row.Options {
		flag := idx == row.AnswerIsOption-1
		row.Options[idx].IsAnswer = &flag
	}
	return false
}

func splitTags(value string) []string {
	if value == "" {
		return nil
	}
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';' || r == '、' || r == '\n'
	})

	seen := make(map[string]struct{}, len(fields))
	tags := make([]string, 0, len(fields))
	for _, field := range fields {
		tag := strings.TrimSpace(field)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
