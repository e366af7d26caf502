package userclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"seiyo-exam/internal/cli"
	"seiyo-exam/internal/exam"
	"seiyo-exam/internal/question"
	"seiyo-exam/internal/snapshot"
)

const (
	defaultServer        = "http://127.0.0.1:8080"
	defaultHTTPTimeout   = 5 * time.Second
	defaultSubmitTimeout = 10 * time.Second
)

type Config struct {
	UserID      string
	ServerURL   string
	HTTPTimeout time.Duration
}

// Run is an interactive practice session against a running exam service.
// Answers are checked locally for feedback and the finished attempt is
// submitted once, so the server score is authoritative.
func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	userID := strings.TrimSpace(cfg.UserID)
	if userID == "" {
		return errors.New("user id is required")
	}

	serverURL := strings.TrimSpace(cfg.ServerURL)
	if serverURL == "" {
		serverURL = defaultServer
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	client := NewHTTPClient(serverURL, &http.Client{Timeout: timeout})
	reader := bufio.NewReader(in)

	fmt.Fprintf(out, "exam-client\nuser=%s\nserver=%s\n\n", userID, serverURL)
	printHelp(out)

	for {
		fmt.Fprint(out, "\n> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		args := strings.Fields(line)
		command := strings.ToLower(args[0])

		switch command {
		case "help":
			printHelp(out)
		case "exit":
			return nil
		case "subjects":
			if err := runSubjects(ctx, out, client, serverURL); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		case "play":
			courseID, subjectID, ok := parsePlayArgs(args)
			if !ok {
				fmt.Fprintln(out, "usage: play [course_id] <subject_id>")
				continue
			}
			if err := runPlay(ctx, reader, out, client, userID, courseID, subjectID, serverURL); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		default:
			fmt.Fprintln(out, "unknown command. type 'help' for usage.")
		}
	}
}

func runSubjects(ctx context.Context, out io.Writer, client *HTTPClient, serverURL string) error {
	manifest, err := client.GetManifest(ctx)
	if err != nil {
		return describeClientError(err, serverURL)
	}

	if len(manifest.Files) == 0 {
		fmt.Fprintln(out, "No published subjects.")
		return nil
	}

	fmt.Fprintf(out, "Published subjects (generated %s):\n", manifest.GeneratedAt)
	for idx, entry := range manifest.Files {
		fmt.Fprintf(out, "%d. %s %s (v%d)\n", idx+1, entry.CourseID, entry.SubjectID, entry.Version)
	}
	return nil
}

func runPlay(ctx context.Context, reader *bufio.Reader, out io.Writer, client *HTTPClient, userID, courseID, subjectID, serverURL string) error {
	manifest, err := client.GetManifest(ctx)
	if err != nil {
		return describeClientError(err, serverURL)
	}
	entry, ok := manifest.Lookup(courseID, subjectID)
	if !ok {
		return fmt.Errorf("subject %s/%s is not published", courseID, subjectID)
	}

	items, err := client.GetSnapshot(ctx, entry.Path)
	if err != nil {
		return describeClientError(err, serverURL)
	}
	return runPlayWithItems(ctx, reader, out, client, userID, entry, items)
}

func runPlayWithItems(ctx context.Context, reader *bufio.Reader, out io.Writer, client *HTTPClient, userID string, entry snapshot.ManifestEntry, items []question.SnapshotItem) error {
	if len(items) == 0 {
		fmt.Fprintf(out, "%s/%s has no questions.\n", entry.CourseID, entry.SubjectID)
		return nil
	}

	startedAt := time.Now().UnixMilli()
	request := submitAttemptRequest{
		CourseID:  entry.CourseID,
		SubjectID: entry.SubjectID,
		StartedAt: &startedAt,
		Answers:   make([]submittedAnswer, 0, len(items)),
	}

	localScore := 0
	for idx, item := range items {
		cli.PrintQuestion(out, idx+1, item)
		letter, ok := cli.Ask(reader, out, item)
		if !ok {
			fmt.Fprintln(out, "Skipping question after multiple invalid responses.")
			continue
		}

		if exam.Evaluate(exam.KeyFromItem(item, entry.Version), letter) == exam.StatusCorrect {
			localScore++
			fmt.Fprintln(out, "Correct!")
		} else {
			fmt.Fprintf(out, "Wrong. Correct answer: %s\n", cli.CorrectAnswers(item))
		}
		request.Answers = append(request.Answers, submittedAnswer{QuestionID: item.QuestionID, Answer: letter})
	}

	fmt.Fprintln(out)
	if len(request.Answers) == 0 {
		fmt.Fprintln(out, "No scored answers in this run.")
		return nil
	}

	submitCtx, cancel := context.WithTimeout(ctx, defaultSubmitTimeout)
	defer cancel()
	response, err := client.SubmitAttempt(submitCtx, userID, request)
	if err != nil {
		fmt.Fprintf(out, "Score: %d/%d (not saved)\n", localScore, len(request.Answers))
		return err
	}

	fmt.Fprintf(out, "Score: %d/%d\n", response.Score, response.Total)
	fmt.Fprintf(out, "attempt_id=%s\n", response.AttemptID)
	return nil
}
