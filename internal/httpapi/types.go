package httpapi

import "seiyo-exam/internal/exam"

type submittedAnswer struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

type submitAttemptRequest struct {
	CourseID  string            `json:"courseId"`
	SubjectID string            `json:"subjectId"`
	StartedAt *int64            `json:"startedAt,omitempty"`
	Answers   []submittedAnswer `json:"answers"`
}

type attemptResponse struct {
	AttemptID  string              `json:"attemptId"`
	CourseID   string              `json:"courseId"`
	SubjectID  string              `json:"subjectId"`
	StartedAt  int64               `json:"startedAt"`
	FinishedAt int64               `json:"finishedAt"`
	Score      int                 `json:"score"`
	Total      int                 `json:"total"`
	Results    []exam.AnswerResult `json:"results"`
}

type analyticsRequest struct {
	Start *int64 `json:"start,omitempty"`
	End   *int64 `json:"end,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}
