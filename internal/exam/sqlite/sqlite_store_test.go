package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"seiyo-exam/internal/exam"
	"seiyo-exam/internal/question"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
		_ = os.Remove(path)
		_ = os.Remove(path + "-wal")
		_ = os.Remove(path + "-shm")
		_ = os.Remove(path + "-journal")
	})
	return store
}

func sampleItems() []question.SnapshotItem {
	img := "img/c.png"
	return []question.SnapshotItem{
		{
			QuestionID: "TK-1",
			CourseID:   "KTS2",
			SubjectID:  "TK",
			ExamYear:   2024,
			Tags:       []string{"法規"},
			Options: [question.OptionCount]question.SnapshotOption{
				{TextJA: "A", IsAnswer: true},
				{TextJA: "B"},
				{Image: &img},
			},
		},
		{
			QuestionID: "TK-2",
			CourseID:   "KTS2",
			SubjectID:  "TK",
			ExamYear:   2023,
			Options: [question.OptionCount]question.SnapshotOption{
				{TextJA: "A"},
				{TextJA: "B", IsAnswer: true},
				{TextJA: "C", IsAnswer: true},
			},
		},
	}
}

func TestSQLiteStoreRecordPublishAndAnswerKeys(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	generatedAt := time.Unix(1700000000, 123).UTC()
	if err := store.RecordPublish(ctx, exam.PublishRun{Version: 1700000000000, GeneratedAt: generatedAt}, sampleItems()); err != nil {
		t.Fatalf("RecordPublish failed: %v", err)
	}

	keys, err := store.GetAnswerKeys(ctx, []string{"TK-1", "TK-2", "missing"})
	if err != nil {
		t.Fatalf("GetAnswerKeys failed: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %+v", keys)
	}
	if key := keys["TK-1"]; key.Mask != 0b001 || key.Options != 0b111 || len(key.Tags) != 1 || key.Tags[0] != "法規" {
		t.Fatalf("unexpected TK-1 key: %+v", key)
	}
	if key := keys["TK-2"]; key.Mask != 0b110 || key.ExamYear != 2023 || key.Version != 1700000000000 {
		t.Fatalf("unexpected TK-2 key: %+v", key)
	}

	run, err := store.LatestPublish(ctx)
	if err != nil {
		t.Fatalf("LatestPublish failed: %v", err)
	}
	if run.Version != 1700000000000 || run.QuestionCount != 2 || !run.GeneratedAt.Equal(generatedAt) {
		t.Fatalf("unexpected publish run: %+v", run)
	}
}

func TestSQLiteStoreRecordPublishUpserts(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	items := sampleItems()
	if err := store.RecordPublish(ctx, exam.PublishRun{Version: 1, GeneratedAt: time.Unix(1, 0)}, items); err != nil {
		t.Fatalf("RecordPublish initial failed: %v", err)
	}

	items[0].Options[0].IsAnswer = false
	items[0].Options[1].IsAnswer = true
	if err := store.RecordPublish(ctx, exam.PublishRun{Version: 2, GeneratedAt: time.Unix(2, 0), Fresh: true}, items[:1]); err != nil {
		t.Fatalf("RecordPublish republish failed: %v", err)
	}

	keys, err := store.GetAnswerKeys(ctx, []string{"TK-1"})
	if err != nil {
		t.Fatalf("GetAnswerKeys failed: %v", err)
	}
	if keys["TK-1"].Mask != 0b010 || keys["TK-1"].Version != 2 {
		t.Fatalf("expected republished key, got %+v", keys["TK-1"])
	}

	run, err := store.LatestPublish(ctx)
	if err != nil {
		t.Fatalf("LatestPublish failed: %v", err)
	}
	if run.Version != 2 || !run.Fresh || run.QuestionCount != 1 {
		t.Fatalf("unexpected latest run: %+v", run)
	}
}

func TestSQLiteStoreLatestPublishEmpty(t *testing.T) {
	store := newTestSQLiteStore(t)
	if _, err := store.LatestPublish(context.Background()); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestSQLiteStoreAttemptsRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	base := time.Unix(1700000000, 0).UTC()
	attempts := []exam.Attempt{
		{AttemptID: "a1", UserID: "u1", CourseID: "KTS2", SubjectID: "TK", StartedAt: base, FinishedAt: base.Add(time.Minute), Score: 1, Total: 2},
		{AttemptID: "a2", UserID: "u2", CourseID: "KTS2", SubjectID: "HO", StartedAt: base, FinishedAt: base.Add(2 * time.Minute), Score: 0, Total: 1},
		{AttemptID: "a3", UserID: "u1", CourseID: "KTS2", SubjectID: "TK", StartedAt: base, FinishedAt: base.Add(48 * time.Hour), Score: 1, Total: 1},
	}
	for _, attempt := range attempts {
		answers := []exam.AttemptAnswer{
			{AttemptID: attempt.AttemptID, QuestionID: "TK-1", Answer: "A", Correct: true, SubjectID: attempt.SubjectID, Tags: []string{"法規"}},
			{AttemptID: attempt.AttemptID, QuestionID: "TK-1", Answer: "B", Correct: false, SubjectID: attempt.SubjectID},
			{AttemptID: attempt.AttemptID, QuestionID: "TK-2", Answer: "C", Correct: false, SubjectID: attempt.SubjectID},
		}
		if err := store.CreateAttempt(ctx, attempt, answers); err != nil {
			t.Fatalf("CreateAttempt(%s) failed: %v", attempt.AttemptID, err)
		}
	}

	listed, err := store.ListAttempts(ctx, base, base.Add(24*time.Hour), 10)
	if err != nil {
		t.Fatalf("ListAttempts failed: %v", err)
	}
	if len(listed) != 2 || listed[0].AttemptID != "a2" || listed[1].AttemptID != "a1" {
		t.Fatalf("expected a2, a1 newest first, got %+v", listed)
	}
	if !listed[1].FinishedAt.Equal(base.Add(time.Minute)) || listed[1].Score != 1 || listed[1].Total != 2 {
		t.Fatalf("unexpected attempt fields: %+v", listed[1])
	}

	limited, err := store.ListAttempts(ctx, base, base.Add(72*time.Hour), 1)
	if err != nil {
		t.Fatalf("ListAttempts limited failed: %v", err)
	}
	if len(limited) != 1 || limited[0].AttemptID != "a3" {
		t.Fatalf("expected only newest attempt, got %+v", limited)
	}

	answers, err := store.ListAttemptAnswers(ctx, []string{"a1"})
	if err != nil {
		t.Fatalf("ListAttemptAnswers failed: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("expected duplicate answer ignored, got %+v", answers)
	}
	if answers[0].QuestionID != "TK-1" || !answers[0].Correct || answers[0].Answer != "A" || len(answers[0].Tags) != 1 {
		t.Fatalf("unexpected first answer: %+v", answers[0])
	}

	none, err := store.ListAttemptAnswers(ctx, nil)
	if err != nil || len(none) != 0 {
		t.Fatalf("ListAttemptAnswers(nil) = (%+v, %v)", none, err)
	}
}

func TestSQLiteStoreCreateAttemptRequiresID(t *testing.T) {
	store := newTestSQLiteStore(t)
	if err := store.CreateAttempt(context.Background(), exam.Attempt{UserID: "u1"}, nil); err == nil {
		t.Fatalf("expected error for missing attempt id")
	}
}

func TestPlaceholders(t *testing.T) {
	if got := placeholders(3); got != "?, ?, ?" {
		t.Fatalf("placeholders(3) = %q", got)
	}
	if got := placeholders(0); got != "" {
		t.Fatalf("placeholders(0) = %q", got)
	}
}
