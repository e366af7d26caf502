package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"seiyo-exam/internal/logger"
	"seiyo-exam/internal/question"
)

// Writer publishes grouped questions under OutDir and maintains the
// manifest. A Writer assumes it is the only publisher touching OutDir.
type Writer struct {
	OutDir string
	Fresh  bool
	Log    *logger.Logger
}

// Published describes one snapshot file written in a run.
type Published struct {
	Entry ManifestEntry
	Items []question.SnapshotItem
}

type Result struct {
	Manifest  Manifest
	Published []Published
}

// FileName returns the snapshot file name for a subject and version.
func FileName(subjectID string, version int64) string {
	return fmt.Sprintf("%s-questions.v%d.json", subjectID, version)
}

// Write writes one snapshot per group, merges the manifest and rewrites
// subjects.json. Every file of the run carries the version derived from
// publishedAt. The first file-system error aborts the run.
func (w *Writer) Write(groups []Group, subjects Subjects, publishedAt time.Time) (Result, error) {
	log := w.Log
	if log == nil {
		log = logger.Nop()
	}
	version := Version(publishedAt)

	if err := os.MkdirAll(w.OutDir, 0o755); err != nil {
		return Result{}, err
	}

	result := Result{Published: make([]Published, 0, len(groups))}
	produced := make([]ManifestEntry, 0, len(groups))
	for _, group := range groups {
		relPath := path.Join(group.CourseID, FileName(group.SubjectID, version))
		items := group.Items()
		if err := writeJSONFile(filepath.Join(w.OutDir, filepath.FromSlash(relPath)), items); err != nil {
			return Result{}, fmt.Errorf("write snapshot %s: %w", relPath, err)
		}

		entry := ManifestEntry{
			Path:      relPath,
			CourseID:  group.CourseID,
			SubjectID: group.SubjectID,
			Version:   version,
		}
		produced = append(produced, entry)
		result.Published = append(result.Published, Published{Entry: entry, Items: items})
		log.Info("snapshot written", "path", relPath, "questions", len(items))
	}

	manifestPath := filepath.Join(w.OutDir, ManifestFile)
	existing, found := LoadManifest(manifestPath)
	if !found {
		log.Debug("no usable manifest, starting fresh", "path", manifestPath)
	}
	result.Manifest = MergeManifest(existing, produced, w.Fresh, publishedAt)
	if err := writeJSONFile(manifestPath, result.Manifest); err != nil {
		return Result{}, fmt.Errorf("write manifest: %w", err)
	}
	log.Info("manifest written", "entries", len(result.Manifest.Files), "version", version, "fresh", w.Fresh)

	if err := writeJSONFile(filepath.Join(w.OutDir, SubjectsFile), subjects); err != nil {
		return Result{}, fmt.Errorf("write subjects: %w", err)
	}
	return result, nil
}

// writeJSONFile writes v as indented JSON through a temp file in the
// target directory, then renames it into place.
func writeJSONFile(target string, v any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return err
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// ReadItems loads a snapshot file.
func ReadItems(file string) ([]question.SnapshotItem, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var items []question.SnapshotItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", file, err)
	}
	return items, nil
}
