package analytics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"seiyo-exam/internal/exam"
)

type fakeAttemptRepo struct {
	attempts   []exam.Attempt
	answers    []exam.AttemptAnswer
	lastStart  time.Time
	lastEnd    time.Time
	lastLimit  int
	lastAnswer []string
}

func (f *fakeAttemptRepo) CreateAttempt(_ context.Context, _ exam.Attempt, _ []exam.AttemptAnswer) error {
	return nil
}

func (f *fakeAttemptRepo) ListAttempts(_ context.Context, start, end time.Time, limit int) ([]exam.Attempt, error) {
	f.lastStart, f.lastEnd, f.lastLimit = start, end, limit
	if limit < len(f.attempts) {
		return f.attempts[:limit], nil
	}
	return f.attempts, nil
}

func (f *fakeAttemptRepo) ListAttemptAnswers(_ context.Context, ids []string) ([]exam.AttemptAnswer, error) {
	f.lastAnswer = ids
	return f.answers, nil
}

func TestAggregate(t *testing.T) {
	day1 := time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC)
	day2 := time.Date(2024, 5, 2, 0, 10, 0, 0, time.UTC)
	attempts := []exam.Attempt{
		{AttemptID: "a1", UserID: "u1", CourseID: "KTS2", SubjectID: "TK", FinishedAt: day1, Score: 1, Total: 2},
		{AttemptID: "a2", UserID: "u2", CourseID: "KTS2", SubjectID: "HO", FinishedAt: day2, Score: 2, Total: 2},
		{AttemptID: "a3", UserID: "u1", CourseID: "KTS2", SubjectID: "TK", FinishedAt: day2, Score: 0, Total: 1},
	}
	answers := []exam.AttemptAnswer{
		{AttemptID: "a1", QuestionID: "q1", Correct: true, Tags: []string{"法規", "電気"}},
		{AttemptID: "a1", QuestionID: "q2", Correct: false, Tags: []string{"法規"}},
		{AttemptID: "a2", QuestionID: "q3", Correct: true, Tags: []string{"電気"}},
		{AttemptID: "a2", QuestionID: "q4", Correct: true, Tags: []string{"安全"}},
		{AttemptID: "a3", QuestionID: "q2", Correct: false, Tags: []string{"法規"}},
		{AttemptID: "other", QuestionID: "q9", Correct: false, Tags: []string{"安全"}},
	}

	report := Aggregate(attempts, answers)

	if report.Scanned != 3 {
		t.Fatalf("Scanned = %d, want 3", report.Scanned)
	}
	if len(report.Daily) != 2 || report.Daily[0].Date != "2024-05-01" || report.Daily[1].Date != "2024-05-02" {
		t.Fatalf("unexpected daily buckets: %+v", report.Daily)
	}
	if day := report.Daily[1]; day.Attempts != 2 || day.Answered != 3 || day.Correct != 2 {
		t.Fatalf("unexpected 2024-05-02 bucket: %+v", day)
	}

	if len(report.Subjects) != 2 || report.Subjects[0].SubjectID != "HO" || report.Subjects[1].SubjectID != "TK" {
		t.Fatalf("unexpected subjects: %+v", report.Subjects)
	}
	if tk := report.Subjects[1]; tk.Attempts != 2 || tk.Answered != 3 || tk.Correct != 1 {
		t.Fatalf("unexpected TK stats: %+v", tk)
	}

	wantTags := []string{"法規", "電気", "安全"}
	if len(report.WorstTags) != len(wantTags) {
		t.Fatalf("unexpected tags: %+v", report.WorstTags)
	}
	for idx, tag := range wantTags {
		if report.WorstTags[idx].Tag != tag {
			t.Fatalf("tag %d = %q, want %q (%+v)", idx, report.WorstTags[idx].Tag, tag, report.WorstTags)
		}
	}
	if safety := report.WorstTags[2]; safety.Answered != 1 || safety.Accuracy != 1 {
		t.Fatalf("answers of unknown attempts must be ignored: %+v", safety)
	}

	if len(report.Recent) != 3 || report.Recent[0].AttemptID != "a2" || report.Recent[1].AttemptID != "a3" || report.Recent[2].AttemptID != "a1" {
		t.Fatalf("unexpected recent order: %+v", report.Recent)
	}
	if report.Recent[2].FinishedAt != day1.UnixMilli() {
		t.Fatalf("recent finishedAt = %d, want %d", report.Recent[2].FinishedAt, day1.UnixMilli())
	}
}

func TestAggregateCapsTagsAndRecent(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	attempts := make([]exam.Attempt, 0, MaxRecent+5)
	answers := make([]exam.AttemptAnswer, 0)
	for i := 0; i < MaxRecent+5; i++ {
		id := fmt.Sprintf("a%03d", i)
		attempts = append(attempts, exam.Attempt{AttemptID: id, FinishedAt: base.Add(time.Duration(i) * time.Minute), Total: 1})
		answers = append(answers, exam.AttemptAnswer{AttemptID: id, QuestionID: "q", Tags: []string{fmt.Sprintf("tag%02d", i%30)}})
	}

	report := Aggregate(attempts, answers)
	if len(report.Recent) != MaxRecent {
		t.Fatalf("recent length = %d, want %d", len(report.Recent), MaxRecent)
	}
	if report.Recent[0].AttemptID != fmt.Sprintf("a%03d", MaxRecent+4) {
		t.Fatalf("newest attempt should be first, got %s", report.Recent[0].AttemptID)
	}
	if len(report.WorstTags) != MaxWorstTags {
		t.Fatalf("worst tags length = %d, want %d", len(report.WorstTags), MaxWorstTags)
	}
	// All tags are 0% so the most answered come first.
	if report.WorstTags[0].Answered < report.WorstTags[MaxWorstTags-1].Answered {
		t.Fatalf("ties should prefer volume: %+v", report.WorstTags)
	}
}

func TestAggregateEmpty(t *testing.T) {
	report := Aggregate(nil, nil)
	if report.Daily == nil || report.Subjects == nil || report.WorstTags == nil || report.Recent == nil {
		t.Fatalf("empty report must use empty slices: %+v", report)
	}
}

func TestResolveRange(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	start, end, err := ResolveRange(nil, nil, now)
	if err != nil {
		t.Fatalf("ResolveRange default failed: %v", err)
	}
	if !end.Equal(now) || !start.Equal(now.Add(-DefaultWindow)) {
		t.Fatalf("default range = [%v, %v)", start, end)
	}

	startMS := int64(1714521600000)
	endMS := int64(1714608000000)
	start, end, err = ResolveRange(&startMS, &endMS, now)
	if err != nil {
		t.Fatalf("ResolveRange explicit failed: %v", err)
	}
	if start.UnixMilli() != startMS || end.UnixMilli() != endMS {
		t.Fatalf("explicit range = [%v, %v)", start, end)
	}

	if _, _, err := ResolveRange(&endMS, &startMS, now); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestServiceReportTruncatesScan(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeAttemptRepo{}
	for i := 0; i < MaxScanned+3; i++ {
		repo.attempts = append(repo.attempts, exam.Attempt{AttemptID: fmt.Sprintf("a%05d", i), FinishedAt: base})
	}

	service := NewService(repo)
	service.now = func() time.Time { return base.Add(time.Hour) }

	report, err := service.Report(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if repo.lastLimit != MaxScanned+1 {
		t.Fatalf("ListAttempts limit = %d, want %d", repo.lastLimit, MaxScanned+1)
	}
	if !report.Truncated || report.Scanned != MaxScanned || len(repo.lastAnswer) != MaxScanned {
		t.Fatalf("expected truncated scan of %d, got truncated=%t scanned=%d", MaxScanned, report.Truncated, report.Scanned)
	}
	if report.End != base.Add(time.Hour).UnixMilli() || report.Start != base.Add(time.Hour-DefaultWindow).UnixMilli() {
		t.Fatalf("unexpected report range: %d..%d", report.Start, report.End)
	}
}

func TestServiceReportRejectsInvalidRange(t *testing.T) {
	service := NewService(&fakeAttemptRepo{})
	start := int64(2000)
	end := int64(1000)
	if _, err := service.Report(context.Background(), &start, &end); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}
