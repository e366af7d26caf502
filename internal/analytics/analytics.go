package analytics

import (
	"sort"

	"seiyo-exam/internal/exam"
)

const (
	MaxScanned   = 2000
	MaxRecent    = 200
	MaxWorstTags = 20
)

const dateLayout = "2006-01-02"

type DailyStat struct {
	Date     string  `json:"date"`
	Attempts int     `json:"attempts"`
	Answered int     `json:"answered"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

type SubjectStat struct {
	CourseID  string  `json:"courseId"`
	SubjectID string  `json:"subjectId"`
	Attempts  int     `json:"attempts"`
	Answered  int     `json:"answered"`
	Correct   int     `json:"correct"`
	Accuracy  float64 `json:"accuracy"`
}

type TagStat struct {
	Tag      string  `json:"tag"`
	Answered int     `json:"answered"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

type RecentAttempt struct {
	AttemptID  string `json:"attemptId"`
	UserID     string `json:"userId"`
	CourseID   string `json:"courseId"`
	SubjectID  string `json:"subjectId"`
	FinishedAt int64  `json:"finishedAt"`
	Score      int    `json:"score"`
	Total      int    `json:"total"`
}

// Report is the admin dashboard payload. Start and End are unix
// milliseconds; Truncated is set when more than MaxScanned attempts fell in
// the range and only the newest were scanned.
type Report struct {
	Start     int64           `json:"start"`
	End       int64           `json:"end"`
	Scanned   int             `json:"scanned"`
	Truncated bool            `json:"truncated"`
	Daily     []DailyStat     `json:"daily"`
	Subjects  []SubjectStat   `json:"subjects"`
	WorstTags []TagStat       `json:"worstTags"`
	Recent    []RecentAttempt `json:"recent"`
}

type subjectKey struct {
	course  string
	subject string
}

// Aggregate folds attempts and their answers into a Report. Answers whose
// attempt is not in attempts are ignored.
func Aggregate(attempts []exam.Attempt, answers []exam.AttemptAnswer) Report {
	report := Report{
		Scanned:   len(attempts),
		Daily:     make([]DailyStat, 0),
		Subjects:  make([]SubjectStat, 0),
		WorstTags: make([]TagStat, 0),
		Recent:    make([]RecentAttempt, 0),
	}

	daily := make(map[string]*DailyStat)
	subjects := make(map[subjectKey]*SubjectStat)
	known := make(map[string]struct{}, len(attempts))

	for _, attempt := range attempts {
		known[attempt.AttemptID] = struct{}{}

		date := attempt.FinishedAt.UTC().Format(dateLayout)
		day, ok := daily[date]
		if !ok {
			day = &DailyStat{Date: date}
			daily[date] = day
		}
		day.Attempts++
		day.Answered += attempt.Total
		day.Correct += attempt.Score

		key := subjectKey{course: attempt.CourseID, subject: attempt.SubjectID}
		subject, ok := subjects[key]
		if !ok {
			subject = &SubjectStat{CourseID: attempt.CourseID, SubjectID: attempt.SubjectID}
			subjects[key] = subject
		}
		subject.Attempts++
		subject.Answered += attempt.Total
		subject.Correct += attempt.Score
	}

	tags := make(map[string]*TagStat)
	for _, answer := range answers {
		if _, ok := known[answer.AttemptID]; !ok {
			continue
		}
		for _, tag := range answer.Tags {
			stat, ok := tags[tag]
			if !ok {
				stat = &TagStat{Tag: tag}
				tags[tag] = stat
			}
			stat.Answered++
			if answer.Correct {
				stat.Correct++
			}
		}
	}

	for _, day := range daily {
		day.Accuracy = accuracy(day.Correct, day.Answered)
		report.Daily = append(report.Daily, *day)
	}
	sort.Slice(report.Daily, func(i, j int) bool {
		return report.Daily[i].Date < report.Daily[j].Date
	})

	for _, subject := range subjects {
		subject.Accuracy = accuracy(subject.Correct, subject.Answered)
		report.Subjects = append(report.Subjects, *subject)
	}
	sort.Slice(report.Subjects, func(i, j int) bool {
		a, b := report.Subjects[i], report.Subjects[j]
		if a.CourseID != b.CourseID {
			return a.CourseID < b.CourseID
		}
		return a.SubjectID < b.SubjectID
	})

	for _, stat := range tags {
		stat.Accuracy = accuracy(stat.Correct, stat.Answered)
		report.WorstTags = append(report.WorstTags, *stat)
	}
	sort.Slice(report.WorstTags, func(i, j int) bool {
		return tagBefore(report.WorstTags[i], report.WorstTags[j])
	})
	if len(report.WorstTags) > MaxWorstTags {
		report.WorstTags = report.WorstTags[:MaxWorstTags]
	}

	recent := make([]exam.Attempt, len(attempts))
	copy(recent, attempts)
	sort.SliceStable(recent, func(i, j int) bool {
		if !recent[i].FinishedAt.Equal(recent[j].FinishedAt) {
			return recent[i].FinishedAt.After(recent[j].FinishedAt)
		}
		return recent[i].AttemptID < recent[j].AttemptID
	})
	if len(recent) > MaxRecent {
		recent = recent[:MaxRecent]
	}
	for _, attempt := range recent {
		report.Recent = append(report.Recent, RecentAttempt{
			AttemptID:  attempt.AttemptID,
			UserID:     attempt.UserID,
			CourseID:   attempt.CourseID,
			SubjectID:  attempt.SubjectID,
			FinishedAt: attempt.FinishedAt.UnixMilli(),
			Score:      attempt.Score,
			Total:      attempt.Total,
		})
	}

	return report
}

func tagBefore(a, b TagStat) bool {
	// Lowest accuracy first, then the tag seen most, then name.
	if a.Accuracy != b.Accuracy {
		return a.Accuracy < b.Accuracy
	}
	if a.Answered != b.Answered {
		return a.Answered > b.Answered
	}
	return a.Tag < b.Tag
}

func accuracy(correct, answered int) float64 {
	if answered == 0 {
		return 0
	}
	return float64(correct) / float64(answered)
}
