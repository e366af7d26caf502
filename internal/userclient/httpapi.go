package userclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"seiyo-exam/internal/question"
	"seiyo-exam/internal/snapshot"
)

var ErrServiceUnavailable = errors.New("exam service unavailable")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

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

type answerResult struct {
	QuestionID string `json:"questionId"`
	Status     string `json:"status"`
}

type attemptResponse struct {
	AttemptID  string         `json:"attemptId"`
	CourseID   string         `json:"courseId"`
	SubjectID  string         `json:"subjectId"`
	StartedAt  int64          `json:"startedAt"`
	FinishedAt int64          `json:"finishedAt"`
	Score      int            `json:"score"`
	Total      int            `json:"total"`
	Results    []answerResult `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultServer
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *HTTPClient) GetManifest(ctx context.Context) (snapshot.Manifest, error) {
	var manifest snapshot.Manifest
	if err := c.doJSON(ctx, http.MethodGet, "/snapshots/"+snapshot.ManifestFile, nil, nil, &manifest); err != nil {
		return snapshot.Manifest{}, err
	}
	return manifest, nil
}

// GetSnapshot fetches a snapshot by its manifest path.
func (c *HTTPClient) GetSnapshot(ctx context.Context, path string) ([]question.SnapshotItem, error) {
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "" {
		return nil, errors.New("snapshot path is required")
	}

	var items []question.SnapshotItem
	if err := c.doJSON(ctx, http.MethodGet, "/snapshots/"+path, nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *HTTPClient) SubmitAttempt(ctx context.Context, userID string, request submitAttemptRequest) (attemptResponse, error) {
	headers := map[string]string{"X-User-ID": userID}

	var response attemptResponse
	if err := c.doJSON(ctx, http.MethodPost, "/attempts", headers, request, &response); err != nil {
		return attemptResponse{}, err
	}
	return response, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, headers map[string]string, requestBody any, responseBody any) error {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			apiErr.Message = payload.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}
