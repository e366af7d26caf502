package question

import (
	"fmt"
	"regexp"
)

// Issue codes. The first group blocks publishing of the row; the second is
// informational.
const (
	CodeNoCorrect      = "NO_CORRECT"
	CodeTooManyCorrect = "TOO_MANY_CORRECT"
	CodeInvalidYear    = "INVALID_YEAR"
	CodeInvalidID      = "INVALID_ID"
	CodeDuplicateID    = "DUPLICATE_ID"
	CodeParseError     = "PARSE_ERROR"

	CodeMultiCorrect        = "MULTI_CORRECT"
	CodeAnswerIndexMismatch = "ANSWER_INDEX_MISMATCH"
)

// MaxCorrect is the largest number of options that may be marked correct.
const MaxCorrect = 2

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

type Issue struct {
	Code       string `json:"code"`
	QuestionID string `json:"questionId,omitempty"`
	Row        int    `json:"row"`
	Message    string `json:"message"`
}

func (i Issue) String() string {
	if i.QuestionID != "" {
		return fmt.Sprintf("row %d [%s] %s: %s", i.Row, i.QuestionID, i.Code, i.Message)
	}
	return fmt.Sprintf("row %d %s: %s", i.Row, i.Code, i.Message)
}

type Report struct {
	Errors []Issue `json:"errors"`
	Warns  []Issue `json:"warns"`
}

func (r *Report) addError(row Row, code, format string, args ...any) {
	r.Errors = append(r.Errors, Issue{Code: code, QuestionID: row.QuestionID, Row: row.Number, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) addWarn(row Row, code, format string, args ...any) {
	r.Warns = append(r.Warns, Issue{Code: code, QuestionID: row.QuestionID, Row: row.Number, Message: fmt.Sprintf(format, args...)})
}

// Valid returns the rows whose questionId has no error. Warnings never
// exclude a row.
func (r Report) Valid(rows []Row) []Row {
	rejected := make(map[string]struct{}, len(r.Errors))
	for _, issue := range r.Errors {
		if issue.QuestionID != "" {
			rejected[issue.QuestionID] = struct{}{}
		}
	}

	valid := make([]Row, 0, len(rows))
	for _, row := range rows {
		if _, bad := rejected[row.QuestionID]; bad {
			continue
		}
		valid = append(valid, row)
	}
	return valid
}

// CorrectCount counts present options flagged as the answer.
func CorrectCount(row Row) int {
	count := 0
	for _, option := range row.Options {
		if option.Exists() && option.Correct() {
			count++
		}
	}
	return count
}

// Validate checks every row and collects all issues; it never stops at the
// first problem.
func Validate(rows []Row) Report {
	var report Report
	firstSeen := make(map[string]int, len(rows))

	for _, row := range rows {
		if !identifierPattern.MatchString(row.QuestionID) {
			report.addError(row, CodeInvalidID, "questionId %q is not a valid identifier", row.QuestionID)
		}
		if row.CourseID != "" && !identifierPattern.MatchString(row.CourseID) {
			report.addError(row, CodeInvalidID, "courseId %q is not a valid identifier", row.CourseID)
		}
		if row.SubjectID != "" && !identifierPattern.MatchString(row.SubjectID) {
			report.addError(row, CodeInvalidID, "subjectId %q is not a valid identifier", row.SubjectID)
		}

		if first, dup := firstSeen[row.QuestionID]; dup {
			report.addError(row, CodeDuplicateID, "questionId already used on row %d", first)
		} else {
			firstSeen[row.QuestionID] = row.Number
		}

		if !row.YearValid {
			report.addError(row, CodeInvalidYear, "examYear %q is not a four-digit year", row.ExamYearRaw)
		}

		switch correct := CorrectCount(row); {
		case correct == 0:
			report.addError(row, CodeNoCorrect, "no option is marked as the answer")
		case correct > MaxCorrect:
			report.addError(row, CodeTooManyCorrect, "%d options are marked as the answer (max %d)", correct, MaxCorrect)
		case correct == MaxCorrect:
			report.addWarn(row, CodeMultiCorrect, "%d options are marked as the answer; any of them counts as correct", correct)
		}

		if row.AnswerIndexMismatch {
			report.addWarn(row, CodeAnswerIndexMismatch, "AnswerIsOption=%d disagrees with the option flags; flags are used", row.AnswerIsOption)
		}
	}

	return report
}
