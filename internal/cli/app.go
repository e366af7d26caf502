package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"seiyo-exam/internal/exam"
	"seiyo-exam/internal/question"
	"seiyo-exam/internal/snapshot"
)

const maxAttempts = 3

var optionLetters = [question.OptionCount]string{"A", "B", "C", "D", "E"}

type Config struct {
	SnapshotDir string
	CourseID    string
	SubjectID   string
	// Limit caps the number of questions asked; zero asks all.
	Limit int
}

// Run practises one published subject from a local snapshot tree. When no
// subject is configured the learner picks one from the manifest.
func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	dir := cfg.SnapshotDir
	if dir == "" {
		dir = "public/snapshots"
	}

	manifest, ok := snapshot.LoadManifest(filepath.Join(dir, snapshot.ManifestFile))
	if !ok || len(manifest.Files) == 0 {
		return fmt.Errorf("no published snapshots in %s", dir)
	}

	reader := bufio.NewReader(in)
	entry, err := chooseEntry(reader, out, manifest, cfg.CourseID, cfg.SubjectID)
	if err != nil {
		return err
	}

	items, err := snapshot.ReadItems(filepath.Join(dir, filepath.FromSlash(entry.Path)))
	if err != nil {
		return err
	}
	if cfg.Limit > 0 && cfg.Limit < len(items) {
		items = items[:cfg.Limit]
	}

	fmt.Fprintf(out, "%s / %s: %d questions\n", entry.CourseID, entry.SubjectID, len(items))
	score, answered := 0, 0
	for idx, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		PrintQuestion(out, idx+1, item)
		letter, ok := Ask(reader, out, item)
		fmt.Fprintln(out)
		if !ok {
			fmt.Fprintf(out, "Skipping. Correct answer: %s\n", CorrectAnswers(item))
			continue
		}

		answered++
		if exam.Evaluate(exam.KeyFromItem(item, entry.Version), letter) == exam.StatusCorrect {
			score++
			fmt.Fprintln(out, "Correct!")
		} else {
			fmt.Fprintf(out, "Wrong. Correct answer: %s\n", CorrectAnswers(item))
		}
		printExplanation(out, item, letter)
	}

	fmt.Fprintf(out, "\nFinal score: %d/%d\n", score, answered)
	return nil
}

func chooseEntry(reader *bufio.Reader, out io.Writer, manifest snapshot.Manifest, courseID, subjectID string) (snapshot.ManifestEntry, error) {
	if subjectID != "" {
		if courseID == "" {
			courseID = question.DefaultCourseID
		}
		entry, ok := manifest.Lookup(courseID, subjectID)
		if !ok {
			return snapshot.ManifestEntry{}, fmt.Errorf("subject %s/%s is not published", courseID, subjectID)
		}
		return entry, nil
	}

	fmt.Fprintln(out, "Published subjects:")
	for idx, entry := range manifest.Files {
		fmt.Fprintf(out, "%d. %s / %s\n", idx+1, entry.CourseID, entry.SubjectID)
	}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		fmt.Fprintf(out, "Choose a subject (1-%d): ", len(manifest.Files))
		line, err := reader.ReadString('\n')
		if err != nil && strings.TrimSpace(line) == "" {
			return snapshot.ManifestEntry{}, errors.New("no subject chosen")
		}
		choice, convErr := strconv.Atoi(strings.TrimSpace(line))
		if convErr == nil && choice >= 1 && choice <= len(manifest.Files) {
			return manifest.Files[choice-1], nil
		}
		fmt.Fprintln(out, "Invalid choice.")
	}
	return snapshot.ManifestEntry{}, errors.New("no subject chosen")
}

// PrintQuestion shows the bilingual question text and every present option.
func PrintQuestion(out io.Writer, number int, item question.SnapshotItem) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Q%d [%s]: %s\n", number, item.QuestionID, item.QuestionTextJA)
	if item.QuestionTextVI != "" {
		fmt.Fprintf(out, "    %s\n", item.QuestionTextVI)
	}
	if item.QuestionImage != nil {
		fmt.Fprintf(out, "    (image: %s)\n", *item.QuestionImage)
	}
	fmt.Fprintln(out)
	mask := item.OptionMask()
	for idx, option := range item.Options {
		if mask&(1<<idx) == 0 {
			continue
		}
		text := option.TextJA
		if option.TextVI != "" {
			text += " / " + option.TextVI
		}
		if option.Image != nil {
			text += " (image: " + *option.Image + ")"
		}
		fmt.Fprintf(out, "%s. %s\n", optionLetters[idx], strings.TrimSpace(text))
	}
	fmt.Fprintln(out)
}

// Ask reads a letter naming a present option, allowing a few retries.
func Ask(reader *bufio.Reader, out io.Writer, item question.SnapshotItem) (string, bool) {
	mask := item.OptionMask()
	if mask == 0 {
		return "", false
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		fmt.Fprint(out, "Your answer: ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", false
		}

		index, ok := exam.LetterIndex(line)
		if ok && mask&(1<<index) != 0 {
			return optionLetters[index], true
		}
		if attempt < maxAttempts {
			fmt.Fprintln(out, "Invalid input. Please enter one of the listed letters.")
		}
	}
	return "", false
}

// CorrectAnswers lists the flagged letters, e.g. "B or C".
func CorrectAnswers(item question.SnapshotItem) string {
	letters := make([]string, 0, 2)
	for idx, option := range item.Options {
		if option.IsAnswer {
			letters = append(letters, optionLetters[idx])
		}
	}
	if len(letters) == 0 {
		return "unknown"
	}
	return strings.Join(letters, " or ")
}

func printExplanation(out io.Writer, item question.SnapshotItem, letter string) {
	index, ok := exam.LetterIndex(letter)
	if ok {
		option := item.Options[index]
		if option.ExplanationJA != "" {
			fmt.Fprintf(out, "  %s\n", option.ExplanationJA)
		}
		if option.ExplanationVI != "" {
			fmt.Fprintf(out, "  %s\n", option.ExplanationVI)
		}
	}
	if item.ExplanationJA != "" {
		fmt.Fprintf(out, "  %s\n", item.ExplanationJA)
	}
	if item.ExplanationVI != "" {
		fmt.Fprintf(out, "  %s\n", item.ExplanationVI)
	}
}
