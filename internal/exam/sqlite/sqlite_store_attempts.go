package sqlite

import (
	"context"
	"errors"
	"time"

	"seiyo-exam/internal/exam"
)

// CreateAttempt stores an attempt and its answers in one transaction.
// Answers repeat the subject and tags of the question at answer time so
// analytics stay stable across republishes.
func (s *SQLiteStore) CreateAttempt(ctx context.Context, attempt exam.Attempt, answers []exam.AttemptAnswer) error {
	if attempt.AttemptID == "" {
		return errors.New("attempt id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO attempts (attempt_id, user_id, course_id, subject_id, started_at_unix, finished_at_unix, score, total)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.AttemptID,
		attempt.UserID,
		attempt.CourseID,
		attempt.SubjectID,
		attempt.StartedAt.UnixNano(),
		attempt.FinishedAt.UnixNano(),
		attempt.Score,
		attempt.Total,
	); err != nil {
		return err
	}

	for _, answer := range answers {
		tagsJSON, err := encodeTags(answer.Tags)
		if err != nil {
			return err
		}
		correct := 0
		if answer.Correct {
			correct = 1
		}
		// Duplicate question ids within one attempt keep the first answer.
		if _, err := tx.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO attempt_answers (attempt_id, question_id, answer_letter, correct, subject_id, tags_json)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			attempt.AttemptID,
			answer.QuestionID,
			answer.Answer,
			correct,
			answer.SubjectID,
			tagsJSON,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListAttempts returns attempts finished in [start, end), newest first.
func (s *SQLiteStore) ListAttempts(ctx context.Context, start, end time.Time, limit int) ([]exam.Attempt, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT attempt_id, user_id, course_id, subject_id, started_at_unix, finished_at_unix, score, total
		 FROM attempts
		 WHERE finished_at_unix >= ? AND finished_at_unix < ?
		 ORDER BY finished_at_unix DESC, attempt_id ASC
		 LIMIT ?`,
		start.UnixNano(),
		end.UnixNano(),
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make([]exam.Attempt, 0)
	for rows.Next() {
		var (
			attempt    exam.Attempt
			startedAt  int64
			finishedAt int64
		)
		if err := rows.Scan(&attempt.AttemptID, &attempt.UserID, &attempt.CourseID, &attempt.SubjectID, &startedAt, &finishedAt, &attempt.Score, &attempt.Total); err != nil {
			return nil, err
		}
		attempt.StartedAt = unixNano(startedAt)
		attempt.FinishedAt = unixNano(finishedAt)
		attempts = append(attempts, attempt)
	}

	return attempts, rows.Err()
}

// answerBatchSize keeps IN lists well under SQLite's bound-variable limit.
const answerBatchSize = 500

func (s *SQLiteStore) ListAttemptAnswers(ctx context.Context, attemptIDs []string) ([]exam.AttemptAnswer, error) {
	answers := make([]exam.AttemptAnswer, 0)
	for start := 0; start < len(attemptIDs); start += answerBatchSize {
		end := start + answerBatchSize
		if end > len(attemptIDs) {
			end = len(attemptIDs)
		}
		batch, err := s.listAttemptAnswers(ctx, attemptIDs[start:end])
		if err != nil {
			return nil, err
		}
		answers = append(answers, batch...)
	}
	return answers, nil
}

func (s *SQLiteStore) listAttemptAnswers(ctx context.Context, attemptIDs []string) ([]exam.AttemptAnswer, error) {
	args := make([]any, 0, len(attemptIDs))
	for _, id := range attemptIDs {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT attempt_id, question_id, answer_letter, correct, subject_id, tags_json
		 FROM attempt_answers
		 WHERE attempt_id IN (`+placeholders(len(args))+`)
		 ORDER BY attempt_id ASC, question_id ASC`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := make([]exam.AttemptAnswer, 0)
	for rows.Next() {
		var (
			answer   exam.AttemptAnswer
			correct  int
			tagsJSON string
		)
		if err := rows.Scan(&answer.AttemptID, &answer.QuestionID, &answer.Answer, &correct, &answer.SubjectID, &tagsJSON); err != nil {
			return nil, err
		}
		answer.Correct = correct != 0
		if answer.Tags, err = decodeTags(tagsJSON); err != nil {
			return nil, err
		}
		answers = append(answers, answer)
	}

	return answers, rows.Err()
}

func unixNano(value int64) time.Time {
	return time.Unix(0, value).UTC()
}
