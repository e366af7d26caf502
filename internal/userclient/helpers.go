package userclient

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"seiyo-exam/internal/question"
)

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  help")
	fmt.Fprintln(out, "  subjects")
	fmt.Fprintln(out, "  play [course_id] <subject_id>")
	fmt.Fprintln(out, "  exit")
}

// parsePlayArgs accepts "play TK" (default course) or "play KTS2 TK".
func parsePlayArgs(args []string) (string, string, bool) {
	switch len(args) {
	case 2:
		return question.DefaultCourseID, strings.TrimSpace(args[1]), true
	case 3:
		return strings.TrimSpace(args[1]), strings.TrimSpace(args[2]), true
	default:
		return "", "", false
	}
}

func describeClientError(err error, serverURL string) error {
	if errors.Is(err, ErrServiceUnavailable) {
		return fmt.Errorf("exam service unavailable at %s", serverURL)
	}
	return err
}
