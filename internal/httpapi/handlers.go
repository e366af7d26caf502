package httpapi

import (
	"net/http"
)

func (a *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// HandleSubmitAttempt scores and stores one practice attempt for the user
// named by the X-User-ID header.
func (a *API) HandleSubmitAttempt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	if a.exams == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "exam service unavailable"})
		return
	}

	var request submitAttemptRequest
	if err := decodeJSON(w, r, &request, false); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	result, err := a.exams.SubmitAttempt(r.Context(), r.Header.Get("X-User-ID"), toSubmission(request))
	if err != nil {
		if isServerError(err) {
			a.log.Error("submit attempt failed", "error", err)
		}
		writeServiceError(w, err)
		return
	}

	a.log.Debug("attempt stored", "attempt_id", result.Attempt.AttemptID, "score", result.Attempt.Score, "total", result.Attempt.Total)
	writeJSON(w, http.StatusCreated, toAttemptResponse(result))
}

// HandleAnalytics returns the admin report for an optional {start, end}
// range in unix milliseconds.
func (a *API) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	if a.adminToken == "" {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "admin access is disabled"})
		return
	}
	if !tokenMatches(bearerToken(r), a.adminToken) {
		w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "admin token required"})
		return
	}
	if a.analytics == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "analytics unavailable"})
		return
	}

	var request analyticsRequest
	if err := decodeJSON(w, r, &request, true); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	report, err := a.analytics.Report(r.Context(), request.Start, request.End)
	if err != nil {
		if isServerError(err) {
			a.log.Error("analytics failed", "error", err)
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
