package question

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const maxIDAttempts = 16

// SuffixFunc returns a short random id suffix.
type SuffixFunc func() string

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

// AssignIDs gives every row without a questionId a generated
// "{subject}-{year}-{suffix}" id that does not collide with any other id in
// the batch. Rows that keep colliding after maxIDAttempts fall back to the
// full uuid.
func AssignIDs(rows []Row, newSuffix SuffixFunc) {
	if newSuffix == nil {
		newSuffix = randomSuffix
	}

	taken := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if row.QuestionID != "" {
			taken[row.QuestionID] = struct{}{}
		}
	}

	for idx := range rows {
		if rows[idx].QuestionID != "" {
			continue
		}

		prefix := fmt.Sprintf("%s-%04d-", rows[idx].Subject(), rows[idx].ExamYear)
		id := ""
		for attempt := 0; attempt < maxIDAttempts; attempt++ {
			candidate := prefix + newSuffix()
			if _, used := taken[candidate]; !used {
				id = candidate
				break
			}
		}
		if id == "" {
			id = prefix + uuid.NewString()
		}

		taken[id] = struct{}{}
		rows[idx].QuestionID = id
		rows[idx].GeneratedID = true
	}
}
