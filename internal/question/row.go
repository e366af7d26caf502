package question

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	OptionCount = 5

	DefaultCourseID  = "KTS2"
	DefaultSubjectID = "GEN"

	StatusReady = "READY"
)

// Spreadsheet column names. Option columns are built with OptionColumn.
const (
	ColQuestionID       = "questionId"
	ColCourseID         = "courseId"
	ColSubjectID        = "subjectId"
	ColExamYear         = "examYear"
	ColQuestionTextJA   = "questionTextJA"
	ColQuestionTextVI   = "questionTextVI"
	ColQuestionImage    = "questionImage"
	ColAnswerIsOption   = "AnswerIsOption"
	ColExplanationJA    = "explanationGeneralJA"
	ColExplanationVI    = "explanationGeneralVI"
	ColExplanationImage = "explanationImage"
	ColStatus           = "status"
	ColVersion          = "version"
	ColSourceNote       = "sourceNote"
	ColTags             = "tags"
	ColDifficulty       = "difficulty"
)

const (
	FieldTextJA        = "TextJA"
	FieldTextVI        = "TextVI"
	FieldImage         = "Image"
	FieldIsAnswer      = "IsAnswer"
	FieldExplanationJA = "ExplanationJA"
	FieldExplanationVI = "ExplanationVI"
)

var optionFields = []string{FieldTextJA, FieldTextVI, FieldImage, FieldIsAnswer, FieldExplanationJA, FieldExplanationVI}

// OptionColumn returns the column name for a 1-based option slot, e.g.
// OptionColumn(3, FieldIsAnswer) == "option3IsAnswer".
func OptionColumn(slot int, field string) string {
	return "option" + strconv.Itoa(slot) + field
}

// contentColumns decide whether a spreadsheet row is blank.
var contentColumns = buildContentColumns()

func buildContentColumns() []string {
	columns := []string{
		ColQuestionTextJA,
		ColQuestionTextVI,
		ColQuestionImage,
		ColAnswerIsOption,
		ColExplanationJA,
		ColExplanationVI,
		ColExplanationImage,
	}
	for slot := 1; slot <= OptionCount; slot++ {
		for _, field := range optionFields {
			columns = append(columns, OptionColumn(slot, field))
		}
	}
	return columns
}

type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellBool
)

// Cell is one spreadsheet value. Exactly one of Text, Number or Bool is
// meaningful, selected by Kind.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Bool   bool
}

func Text(value string) Cell {
	return Cell{Kind: CellText, Text: value}
}

func Number(value float64) Cell {
	return Cell{Kind: CellNumber, Number: value}
}

func Bool(value bool) Cell {
	return Cell{Kind: CellBool, Bool: value}
}

// String renders the cell the way a spreadsheet would display it.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellBool:
		if c.Bool {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}

func (c Cell) IsBlank() bool {
	switch c.Kind {
	case CellText:
		return strings.TrimSpace(c.Text) == ""
	case CellNumber, CellBool:
		return false
	default:
		return true
	}
}

// RawRow is a spreadsheet row keyed by header name. Number is the 1-based
// sheet row, used in issue reports.
type RawRow struct {
	Number int
	Cells  map[string]Cell
}

func (r RawRow) Get(column string) Cell {
	if r.Cells == nil {
		return Cell{}
	}
	return r.Cells[column]
}

func (r RawRow) text(column string) string {
	return strings.TrimSpace(r.Get(column).String())
}

type Option struct {
	TextJA        string
	TextVI        string
	Image         string
	IsAnswer      *bool
	ExplanationJA string
	ExplanationVI string
}

// Exists reports whether the slot carries any visible content.
func (o Option) Exists() bool {
	return o.TextJA != "" || o.TextVI != "" || o.Image != ""
}

func (o Option) Correct() bool {
	return o.IsAnswer != nil && *o.IsAnswer
}

// Row is a fully typed question row.
type Row struct {
	Number int

	QuestionID  string
	GeneratedID bool
	CourseID    string
	SubjectID   string
	ExamYear    int
	YearValid   bool
	ExamYearRaw string

	QuestionTextJA string
	QuestionTextVI string
	QuestionImage  string
	Options        [OptionCount]Option
	AnswerIsOption int

	ExplanationJA    string
	ExplanationVI    string
	ExplanationImage string

	Status     string
	Version    string
	SourceNote string
	Tags       []string
	Difficulty string

	AnswerIndexMismatch bool
}

// Course returns the course id, falling back to DefaultCourseID.
func (r Row) Course() string {
	if r.CourseID == "" {
		return DefaultCourseID
	}
	return r.CourseID
}

// Subject returns the subject id, falling back to DefaultSubjectID.
func (r Row) Subject() string {
	if r.SubjectID == "" {
		return DefaultSubjectID
	}
	return r.SubjectID
}

func (r Row) label() string {
	if r.QuestionID != "" {
		return fmt.Sprintf("row %d [%s]", r.Number, r.QuestionID)
	}
	return fmt.Sprintf("row %d", r.Number)
}
