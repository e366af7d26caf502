package sqlite

import (
	"context"
	"encoding/json"
	"errors"

	"seiyo-exam/internal/exam"
	"seiyo-exam/internal/question"
)

// RecordPublish stores a publish run and upserts the answer key of every
// published question in one transaction.
func (s *SQLiteStore) RecordPublish(ctx context.Context, run exam.PublishRun, items []question.SnapshotItem) error {
	if run.Version <= 0 {
		return errors.New("publish version is required")
	}
	if run.QuestionCount <= 0 {
		run.QuestionCount = len(items)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	fresh := 0
	if run.Fresh {
		fresh = 1
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO publish_runs (version, generated_at_unix, question_count, fresh) VALUES (?, ?, ?, ?)`,
		run.Version,
		run.GeneratedAt.UnixNano(),
		run.QuestionCount,
		fresh,
	); err != nil {
		return err
	}

	for _, item := range items {
		key := exam.KeyFromItem(item, run.Version)
		tagsJSON, err := encodeTags(key.Tags)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO questions (question_id, course_id, subject_id, exam_year, answer_mask, option_mask, tags_json, published_version)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(question_id) DO UPDATE SET
				course_id = excluded.course_id,
				subject_id = excluded.subject_id,
				exam_year = excluded.exam_year,
				answer_mask = excluded.answer_mask,
				option_mask = excluded.option_mask,
				tags_json = excluded.tags_json,
				published_version = excluded.published_version`,
			key.QuestionID,
			key.CourseID,
			key.SubjectID,
			key.ExamYear,
			int(key.Mask),
			int(key.Options),
			tagsJSON,
			key.Version,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetAnswerKeys returns the keys it knows; unknown ids are simply absent.
func (s *SQLiteStore) GetAnswerKeys(ctx context.Context, questionIDs []string) (map[string]exam.AnswerKey, error) {
	keys := make(map[string]exam.AnswerKey, len(questionIDs))
	if len(questionIDs) == 0 {
		return keys, nil
	}

	args := make([]any, 0, len(questionIDs))
	for _, id := range questionIDs {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT question_id, course_id, subject_id, exam_year, answer_mask, option_mask, tags_json, published_version
		 FROM questions
		 WHERE question_id IN (`+placeholders(len(args))+`)`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key        exam.AnswerKey
			answerMask int
			optionMask int
			tagsJSON   string
		)
		if err := rows.Scan(&key.QuestionID, &key.CourseID, &key.SubjectID, &key.ExamYear, &answerMask, &optionMask, &tagsJSON, &key.Version); err != nil {
			return nil, err
		}
		key.Mask = uint8(answerMask)
		key.Options = uint8(optionMask)
		if key.Tags, err = decodeTags(tagsJSON); err != nil {
			return nil, err
		}
		keys[key.QuestionID] = key
	}

	return keys, rows.Err()
}

// LatestPublish returns the most recent publish run.
func (s *SQLiteStore) LatestPublish(ctx context.Context) (exam.PublishRun, error) {
	var (
		run       exam.PublishRun
		generated int64
		fresh     int
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT version, generated_at_unix, question_count, fresh FROM publish_runs ORDER BY version DESC LIMIT 1`,
	).Scan(&run.Version, &generated, &run.QuestionCount, &fresh)
	if err != nil {
		return exam.PublishRun{}, err
	}
	run.GeneratedAt = unixNano(generated)
	run.Fresh = fresh != 0
	return run, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func decodeTags(value string) ([]string, error) {
	var tags []string
	if value == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(value), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}
