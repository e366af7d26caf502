package snapshot

import (
	"encoding/json"
	"os"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	ManifestFile = "manifest.json"
	SubjectsFile = "subjects.json"

	generatedAtLayout = "2006-01-02T15:04:05.000Z"
)

var validate = validator.New()

type ManifestEntry struct {
	Path      string `json:"path" validate:"required"`
	CourseID  string `json:"courseId" validate:"required"`
	SubjectID string `json:"subjectId" validate:"required"`
	Version   int64  `json:"version" validate:"gt=0"`
}

type Manifest struct {
	Version     int64           `json:"version"`
	GeneratedAt string          `json:"generatedAt"`
	Files       []ManifestEntry `json:"files"`
}

// Lookup returns the entry for a (course, subject) pair.
func (m Manifest) Lookup(courseID, subjectID string) (ManifestEntry, bool) {
	for _, entry := range m.Files {
		if entry.CourseID == courseID && entry.SubjectID == subjectID {
			return entry, true
		}
	}
	return ManifestEntry{}, false
}

// Version returns the snapshot version for a publish time.
func Version(publishedAt time.Time) int64 {
	return publishedAt.UnixMilli()
}

// GeneratedAt formats a publish time as an ISO-8601 UTC timestamp.
func GeneratedAt(publishedAt time.Time) string {
	return publishedAt.UTC().Format(generatedAtLayout)
}

// LoadManifest reads a manifest file. A missing or unreadable manifest is
// treated as empty; entries that fail validation are dropped. The bool
// reports whether a usable manifest was found.
func LoadManifest(path string) (Manifest, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, false
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, false
	}

	kept := make([]ManifestEntry, 0, len(manifest.Files))
	for _, entry := range manifest.Files {
		if validate.Struct(entry) != nil {
			continue
		}
		kept = append(kept, entry)
	}
	manifest.Files = kept
	return manifest, true
}

// MergeManifest replaces the entries for every pair in produced and keeps
// the other existing entries unless fresh is set. The result is sorted by
// courseId+subjectId and stamped with publishedAt.
func MergeManifest(existing Manifest, produced []ManifestEntry, fresh bool, publishedAt time.Time) Manifest {
	byPair := make(map[string]ManifestEntry, len(existing.Files)+len(produced))
	if !fresh {
		for _, entry := range existing.Files {
			byPair[pairKey(entry.CourseID, entry.SubjectID)] = entry
		}
	}
	for _, entry := range produced {
		byPair[pairKey(entry.CourseID, entry.SubjectID)] = entry
	}

	files := make([]ManifestEntry, 0, len(byPair))
	for _, entry := range byPair {
		files = append(files, entry)
	}
	sort.Slice(files, func(i, j int) bool {
		left := files[i].CourseID + files[i].SubjectID
		right := files[j].CourseID + files[j].SubjectID
		if left != right {
			return left < right
		}
		return files[i].CourseID < files[j].CourseID
	})

	return Manifest{
		Version:     Version(publishedAt),
		GeneratedAt: GeneratedAt(publishedAt),
		Files:       files,
	}
}

func pairKey(courseID, subjectID string) string {
	return courseID + "\x00" + subjectID
}
