package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

const checkWorkers = 8

// FileError is a JSON file that failed to parse. Line and Column are
// 1-based and zero when the failure is not a syntax error.
type FileError struct {
	Path   string
	Line   int
	Column int
	Err    error
}

func (e FileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %v", e.Path, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// CheckTree parses every **/*.json file under dir. It returns the number of
// files checked and the failures sorted by path. The error is non-nil only
// when the tree itself cannot be scanned.
func CheckTree(ctx context.Context, dir string) (int, []FileError, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.json")
	if err != nil {
		return 0, nil, err
	}
	sort.Strings(matches)

	var (
		mu       sync.Mutex
		failures []FileError
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(checkWorkers)
	for _, match := range matches {
		rel := match
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
			if err != nil {
				return err
			}
			if failure, bad := checkJSON(rel, data); bad {
				mu.Lock()
				failures = append(failures, failure)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, nil, err
	}

	sort.Slice(failures, func(i, j int) bool { return failures[i].Path < failures[j].Path })
	return len(matches), failures, nil
}

func checkJSON(rel string, data []byte) (FileError, bool) {
	var v any
	err := json.Unmarshal(data, &v)
	if err == nil {
		return FileError{}, false
	}

	failure := FileError{Path: rel, Err: err}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		failure.Line, failure.Column = lineColumn(data, syntaxErr.Offset)
	}
	return failure, true
}

func lineColumn(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	if offset < 1 {
		return 1, 1
	}
	prefix := data[:offset]
	line := bytes.Count(prefix, []byte("\n")) + 1
	column := len(prefix) - bytes.LastIndexByte(prefix, '\n') - 1
	return line, column
}
