package userclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"seiyo-exam/internal/question"
	"seiyo-exam/internal/snapshot"
)

func sampleItems() []question.SnapshotItem {
	first := question.SnapshotItem{QuestionID: "TK-1", CourseID: "KTS2", SubjectID: "TK", QuestionTextJA: "一"}
	first.Options[0] = question.SnapshotOption{TextJA: "A", IsAnswer: true}
	first.Options[1] = question.SnapshotOption{TextJA: "B"}

	second := question.SnapshotItem{QuestionID: "TK-2", CourseID: "KTS2", SubjectID: "TK", QuestionTextJA: "二"}
	second.Options[0] = question.SnapshotOption{TextJA: "A"}
	second.Options[1] = question.SnapshotOption{TextJA: "B", IsAnswer: true}
	second.Options[2] = question.SnapshotOption{TextJA: "C", IsAnswer: true}

	return []question.SnapshotItem{first, second}
}

func TestParsePlayArgs(t *testing.T) {
	course, subject, ok := parsePlayArgs([]string{"play", "TK"})
	if !ok || course != question.DefaultCourseID || subject != "TK" {
		t.Fatalf("parsePlayArgs single = (%q, %q, %t)", course, subject, ok)
	}
	course, subject, ok = parsePlayArgs([]string{"play", "KTS1", "HO"})
	if !ok || course != "KTS1" || subject != "HO" {
		t.Fatalf("parsePlayArgs pair = (%q, %q, %t)", course, subject, ok)
	}
	if _, _, ok := parsePlayArgs([]string{"play"}); ok {
		t.Fatalf("expected usage error without subject")
	}
}

func TestRunPlayWithItemsSubmitsAttempt(t *testing.T) {
	submitted := make(chan submitAttemptRequest, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request submitAttemptRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		submitted <- request
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(attemptResponse{AttemptID: "att-9", Score: 2, Total: 2})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, server.Client())
	entry := snapshot.ManifestEntry{Path: "KTS2/TK-questions.v1.json", CourseID: "KTS2", SubjectID: "TK", Version: 1}
	reader := bufio.NewReader(strings.NewReader("a\nc\n"))
	var out bytes.Buffer

	if err := runPlayWithItems(context.Background(), reader, &out, client, "user-1", entry, sampleItems()); err != nil {
		t.Fatalf("runPlayWithItems failed: %v", err)
	}

	request := <-submitted
	if request.CourseID != "KTS2" || request.SubjectID != "TK" || request.StartedAt == nil || len(request.Answers) != 2 {
		t.Fatalf("unexpected submitted request: %+v", request)
	}
	if request.Answers[0].Answer != "A" || request.Answers[1].Answer != "C" {
		t.Fatalf("unexpected answers: %+v", request.Answers)
	}

	text := out.String()
	if strings.Count(text, "Correct!") != 2 || !strings.Contains(text, "Score: 2/2") || !strings.Contains(text, "attempt_id=att-9") {
		t.Fatalf("unexpected output: %s", text)
	}
}

func TestRunPlayWithItemsReportsUnsavedScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: "request failed"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, server.Client())
	entry := snapshot.ManifestEntry{CourseID: "KTS2", SubjectID: "TK", Version: 1}
	reader := bufio.NewReader(strings.NewReader("b\nb\n"))
	var out bytes.Buffer

	err := runPlayWithItems(context.Background(), reader, &out, client, "user-1", entry, sampleItems())
	if err == nil {
		t.Fatalf("expected submit error")
	}
	if !strings.Contains(out.String(), "Score: 1/2 (not saved)") {
		t.Fatalf("expected local score, got: %s", out.String())
	}
}

func TestRunCommandLoop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(snapshot.Manifest{
			Version:     1,
			GeneratedAt: "2024-01-01T00:00:00.000Z",
			Files:       []snapshot.ManifestEntry{{Path: "KTS2/TK-questions.v1.json", CourseID: "KTS2", SubjectID: "TK", Version: 1}},
		})
	}))
	defer server.Close()

	var out bytes.Buffer
	err := Run(context.Background(), strings.NewReader("subjects\nplay\nplay HO\nbogus\nexit\n"), &out, Config{UserID: "user-1", ServerURL: server.URL})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"1. KTS2 TK (v1)",
		"usage: play [course_id] <subject_id>",
		"error: subject KTS2/HO is not published",
		"unknown command.",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}

	if err := Run(context.Background(), strings.NewReader(""), &out, Config{}); err == nil {
		t.Fatalf("expected error without user id")
	}
}
