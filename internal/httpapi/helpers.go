package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"seiyo-exam/internal/analytics"
	"seiyo-exam/internal/exam"
)

const maxBodyBytes = 1 << 20

func writeServiceError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, exam.ErrInvalidUser):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "X-User-ID header is required"})
	case errors.As(err, &validationErrs):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: describeValidation(validationErrs)})
	case errors.Is(err, analytics.ErrInvalidRange):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

func isServerError(err error) bool {
	var validationErrs validator.ValidationErrors
	return !errors.Is(err, exam.ErrInvalidUser) &&
		!errors.Is(err, analytics.ErrInvalidRange) &&
		!errors.As(err, &validationErrs)
}

func describeValidation(errs validator.ValidationErrors) string {
	fields := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		fields = append(fields, fieldErr.Namespace()+" failed "+fieldErr.Tag())
	}
	return "invalid request: " + strings.Join(fields, ", ")
}

// decodeJSON reads a JSON body. An empty body leaves dst untouched when
// allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func tokenMatches(got, want string) bool {
	if got == "" || want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func toSubmission(request submitAttemptRequest) exam.Submission {
	submission := exam.Submission{
		CourseID:  strings.TrimSpace(request.CourseID),
		SubjectID: strings.TrimSpace(request.SubjectID),
		Answers:   make([]exam.SubmittedAnswer, 0, len(request.Answers)),
	}
	if request.StartedAt != nil {
		startedAt := time.UnixMilli(*request.StartedAt).UTC()
		submission.StartedAt = &startedAt
	}
	for _, answer := range request.Answers {
		submission.Answers = append(submission.Answers, exam.SubmittedAnswer{
			QuestionID: strings.TrimSpace(answer.QuestionID),
			Answer:     answer.Answer,
		})
	}
	return submission
}

func toAttemptResponse(result exam.AttemptResult) attemptResponse {
	return attemptResponse{
		AttemptID:  result.Attempt.AttemptID,
		CourseID:   result.Attempt.CourseID,
		SubjectID:  result.Attempt.SubjectID,
		StartedAt:  result.Attempt.StartedAt.UnixMilli(),
		FinishedAt: result.Attempt.FinishedAt.UnixMilli(),
		Score:      result.Attempt.Score,
		Total:      result.Attempt.Total,
		Results:    result.Results,
	}
}

func writeMethodNotAllowed(w http.ResponseWriter, allowedMethod string) {
	w.Header().Set("Allow", allowedMethod)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
