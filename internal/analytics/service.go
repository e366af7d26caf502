package analytics

import (
	"context"
	"errors"
	"time"

	"seiyo-exam/internal/exam"
)

// DefaultWindow is the range used when a request names no start.
const DefaultWindow = 30 * 24 * time.Hour

var ErrInvalidRange = errors.New("start must be before end")

type Service struct {
	attempts exam.AttemptRepository
	now      func() time.Time
}

func NewService(attempts exam.AttemptRepository) *Service {
	return &Service{
		attempts: attempts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ResolveRange turns optional unix-millisecond bounds into a [start, end)
// window. A missing end is now; a missing start is DefaultWindow before end.
func ResolveRange(startMS, endMS *int64, now time.Time) (time.Time, time.Time, error) {
	end := now.UTC()
	if endMS != nil {
		end = time.UnixMilli(*endMS).UTC()
	}
	start := end.Add(-DefaultWindow)
	if startMS != nil {
		start = time.UnixMilli(*startMS).UTC()
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	return start, end, nil
}

// Report scans at most MaxScanned of the newest attempts in range.
func (s *Service) Report(ctx context.Context, startMS, endMS *int64) (Report, error) {
	if s.attempts == nil {
		return Report{}, errors.New("attempt storage is not configured")
	}

	start, end, err := ResolveRange(startMS, endMS, s.now())
	if err != nil {
		return Report{}, err
	}

	attempts, err := s.attempts.ListAttempts(ctx, start, end, MaxScanned+1)
	if err != nil {
		return Report{}, err
	}
	truncated := len(attempts) > MaxScanned
	if truncated {
		attempts = attempts[:MaxScanned]
	}

	ids := make([]string, 0, len(attempts))
	for _, attempt := range attempts {
		ids = append(ids, attempt.AttemptID)
	}
	answers, err := s.attempts.ListAttemptAnswers(ctx, ids)
	if err != nil {
		return Report{}, err
	}

	report := Aggregate(attempts, answers)
	report.Start = start.UnixMilli()
	report.End = end.UnixMilli()
	report.Truncated = truncated
	return report, nil
}
