package exam

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type SubmittedAnswer struct {
	QuestionID string `json:"questionId" validate:"required"`
	Answer     string `json:"answer"`
}

// Submission is one finished practice session.
type Submission struct {
	CourseID  string            `json:"courseId" validate:"required"`
	SubjectID string            `json:"subjectId" validate:"required"`
	StartedAt *time.Time        `json:"startedAt,omitempty"`
	Answers   []SubmittedAnswer `json:"answers" validate:"required,min=1,dive"`
}

type AnswerResult struct {
	QuestionID string `json:"questionId"`
	Status     string `json:"status"`
}

type AttemptResult struct {
	Attempt Attempt        `json:"attempt"`
	Results []AnswerResult `json:"results"`
}

type Service struct {
	questions QuestionRepository
	attempts  AttemptRepository
	validate  *validator.Validate
	now       func() time.Time

	mu         sync.Mutex
	answerKeys map[string]AnswerKey
}

func NewService(questions QuestionRepository, attempts AttemptRepository) *Service {
	return &Service{
		questions:  questions,
		attempts:   attempts,
		validate:   validator.New(),
		now:        func() time.Time { return time.Now().UTC() },
		answerKeys: make(map[string]AnswerKey),
	}
}

// ValidateSubmission checks the request shape without touching storage.
func (s *Service) ValidateSubmission(submission Submission) error {
	return s.validate.Struct(submission)
}

// SubmitAttempt scores every answer and stores the attempt. Unknown
// questions and unusable letters are reported per answer and left out of
// the score.
func (s *Service) SubmitAttempt(ctx context.Context, userID string, submission Submission) (AttemptResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return AttemptResult{}, ErrInvalidUser
	}
	if err := s.ValidateSubmission(submission); err != nil {
		return AttemptResult{}, err
	}
	if s.questions == nil || s.attempts == nil {
		return AttemptResult{}, errors.New("attempt storage is not configured")
	}

	ids := make([]string, 0, len(submission.Answers))
	for _, answer := range submission.Answers {
		ids = append(ids, answer.QuestionID)
	}
	keys, err := s.loadAnswerKeys(ctx, ids)
	if err != nil {
		return AttemptResult{}, err
	}

	finishedAt := s.now()
	attempt := Attempt{
		AttemptID:  uuid.NewString(),
		UserID:     userID,
		CourseID:   submission.CourseID,
		SubjectID:  submission.SubjectID,
		StartedAt:  finishedAt,
		FinishedAt: finishedAt,
	}
	if submission.StartedAt != nil && !submission.StartedAt.After(finishedAt) {
		attempt.StartedAt = submission.StartedAt.UTC()
	}

	results := make([]AnswerResult, 0, len(submission.Answers))
	answers := make([]AttemptAnswer, 0, len(submission.Answers))
	seen := make(map[string]struct{}, len(submission.Answers))
	for _, submitted := range submission.Answers {
		key, ok := keys[submitted.QuestionID]
		if !ok {
			results = append(results, AnswerResult{QuestionID: submitted.QuestionID, Status: StatusInvalidQuestion})
			continue
		}

		status := Evaluate(key, submitted.Answer)
		results = append(results, AnswerResult{QuestionID: submitted.QuestionID, Status: status})
		if status == StatusInvalidOption {
			continue
		}
		// Only the first answer to a question within an attempt counts.
		if _, dup := seen[submitted.QuestionID]; dup {
			continue
		}
		seen[submitted.QuestionID] = struct{}{}

		correct := status == StatusCorrect
		attempt.Total++
		if correct {
			attempt.Score++
		}
		answers = append(answers, AttemptAnswer{
			AttemptID:  attempt.AttemptID,
			QuestionID: submitted.QuestionID,
			Answer:     NormalizeLetter(submitted.Answer),
			Correct:    correct,
			SubjectID:  key.SubjectID,
			Tags:       key.Tags,
		})
	}

	if err := s.attempts.CreateAttempt(ctx, attempt, answers); err != nil {
		return AttemptResult{}, err
	}
	return AttemptResult{Attempt: attempt, Results: results}, nil
}

func (s *Service) loadAnswerKeys(ctx context.Context, ids []string) (map[string]AnswerKey, error) {
	keys, missing := s.getCachedAnswerKeys(ids)
	if len(missing) == 0 {
		return keys, nil
	}

	loaded, err := s.questions.GetAnswerKeys(ctx, missing)
	if err != nil {
		return nil, err
	}
	s.setCachedAnswerKeys(loaded)
	for id, key := range loaded {
		keys[id] = key
	}
	return keys, nil
}
