package question

import (
	"errors"
	"sort"
)

// Batch is the outcome of running raw spreadsheet rows through the whole
// normalize/validate stage.
type Batch struct {
	Ready  int
	Rows   []Row
	Report Report
}

// Published returns the rows that may be written to snapshots.
func (b Batch) Published() []Row {
	return b.Report.Valid(b.Rows)
}

// Prepare filters ready rows, normalizes them, assigns missing ids and
// validates the result. Rows that fail to parse are reported as
// PARSE_ERROR and left out of Rows.
func Prepare(raw []RawRow, newSuffix SuffixFunc) Batch {
	ready := FilterReadyRows(raw)
	batch := Batch{
		Ready: len(ready),
		Rows:  make([]Row, 0, len(ready)),
	}

	var parseIssues []Issue
	for _, item := range ready {
		row, err := Normalize(item)
		if err != nil {
			issue := Issue{
				Code:       CodeParseError,
				QuestionID: item.text(ColQuestionID),
				Row:        item.Number,
				Message:    err.Error(),
			}
			var parseErr *ParseError
			if errors.As(err, &parseErr) {
				issue.Message = parseErr.Column + ": " + parseErr.Reason + " (" + parseErr.Value + ")"
			}
			parseIssues = append(parseIssues, issue)
			continue
		}
		batch.Rows = append(batch.Rows, row)
	}

	AssignIDs(batch.Rows, newSuffix)
	batch.Report = Validate(batch.Rows)
	batch.Report.Errors = append(parseIssues, batch.Report.Errors...)
	sort.SliceStable(batch.Report.Errors, func(i, j int) bool {
		return batch.Report.Errors[i].Row < batch.Report.Errors[j].Row
	})
	return batch
}
