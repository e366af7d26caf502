package exam

import (
	"context"
	"errors"
	"time"

	"seiyo-exam/internal/question"
)

var ErrInvalidUser = errors.New("invalid user")

// AnswerKey is the scoring data kept for one published question. Bit i of
// Mask is set when option slot i+1 is an answer; bit i of Options is set
// when that slot has content.
type AnswerKey struct {
	QuestionID string
	CourseID   string
	SubjectID  string
	ExamYear   int
	Mask       uint8
	Options    uint8
	Tags       []string
	Version    int64
}

// PublishRun records one snapshot publish.
type PublishRun struct {
	Version       int64
	GeneratedAt   time.Time
	QuestionCount int
	Fresh         bool
}

type Attempt struct {
	AttemptID  string    `json:"attemptId"`
	UserID     string    `json:"userId"`
	CourseID   string    `json:"courseId"`
	SubjectID  string    `json:"subjectId"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
}

type AttemptAnswer struct {
	AttemptID  string
	QuestionID string
	Answer     string
	Correct    bool
	SubjectID  string
	Tags       []string
}

type QuestionRepository interface {
	RecordPublish(ctx context.Context, run PublishRun, items []question.SnapshotItem) error
	GetAnswerKeys(ctx context.Context, questionIDs []string) (map[string]AnswerKey, error)
}

type AttemptRepository interface {
	CreateAttempt(ctx context.Context, attempt Attempt, answers []AttemptAnswer) error
	ListAttempts(ctx context.Context, start, end time.Time, limit int) ([]Attempt, error)
	ListAttemptAnswers(ctx context.Context, attemptIDs []string) ([]AttemptAnswer, error)
}

// KeyFromItem derives the answer key stored for a snapshot item.
func KeyFromItem(item question.SnapshotItem, version int64) AnswerKey {
	return AnswerKey{
		QuestionID: item.QuestionID,
		CourseID:   item.CourseID,
		SubjectID:  item.SubjectID,
		ExamYear:   item.ExamYear,
		Mask:       item.AnswerMask(),
		Options:    item.OptionMask(),
		Tags:       item.Tags,
		Version:    version,
	}
}
