package sqlite

import (
	"context"
)

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	// No FK constraints: a republish replaces question rows while old
	// attempts keep pointing at their question ids.
	statements := []string{
		`CREATE TABLE IF NOT EXISTS publish_runs (
			version INTEGER PRIMARY KEY,
			generated_at_unix INTEGER NOT NULL,
			question_count INTEGER NOT NULL,
			fresh INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS questions (
			question_id TEXT PRIMARY KEY,
			course_id TEXT NOT NULL,
			subject_id TEXT NOT NULL,
			exam_year INTEGER NOT NULL,
			answer_mask INTEGER NOT NULL,
			option_mask INTEGER NOT NULL,
			tags_json TEXT NOT NULL,
			published_version INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			attempt_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			course_id TEXT NOT NULL,
			subject_id TEXT NOT NULL,
			started_at_unix INTEGER NOT NULL,
			finished_at_unix INTEGER NOT NULL,
			score INTEGER NOT NULL,
			total INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempt_answers (
			attempt_id TEXT NOT NULL,
			question_id TEXT NOT NULL,
			answer_letter TEXT NOT NULL,
			correct INTEGER NOT NULL,
			subject_id TEXT NOT NULL,
			tags_json TEXT NOT NULL,
			PRIMARY KEY (attempt_id, question_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_questions_course_subject ON questions(course_id, subject_id);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_finished_at ON attempts(finished_at_unix DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_user ON attempts(user_id, finished_at_unix DESC);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
