package snapshot

import (
	"sort"
	"strings"

	"seiyo-exam/internal/question"
)

// Subjects sheet columns.
const (
	colCourseNameJA  = "courseNameJA"
	colCourseNameVI  = "courseNameVI"
	colSubjectNameJA = "subjectNameJA"
	colSubjectNameVI = "subjectNameVI"
	colOrder         = "order"
)

type Subject struct {
	SubjectID string `json:"subjectId"`
	NameJA    string `json:"nameJA"`
	NameVI    string `json:"nameVI"`
	Order     int    `json:"order"`
}

type Course struct {
	CourseID string    `json:"courseId"`
	NameJA   string    `json:"nameJA"`
	NameVI   string    `json:"nameVI"`
	Subjects []Subject `json:"subjects"`
}

type Subjects struct {
	Courses []Course `json:"courses"`
}

// BuildSubjects turns Subjects sheet rows into display metadata. Rows
// without a subjectId are skipped. Subjects are ordered by the order
// column, then by sheet order.
func BuildSubjects(rows []question.RawRow) Subjects {
	courses := make([]Course, 0)
	courseIndex := make(map[string]int)

	for position, row := range rows {
		subjectID := cellText(row, question.ColSubjectID)
		if subjectID == "" {
			continue
		}
		courseID := cellText(row, question.ColCourseID)
		if courseID == "" {
			courseID = question.DefaultCourseID
		}

		idx, ok := courseIndex[courseID]
		if !ok {
			idx = len(courses)
			courseIndex[courseID] = idx
			courses = append(courses, Course{CourseID: courseID, Subjects: []Subject{}})
		}
		course := &courses[idx]
		if course.NameJA == "" {
			course.NameJA = cellText(row, colCourseNameJA)
		}
		if course.NameVI == "" {
			course.NameVI = cellText(row, colCourseNameVI)
		}

		order, ok := question.ToInt(row.Get(colOrder))
		if !ok {
			order = position + 1
		}
		course.Subjects = append(course.Subjects, Subject{
			SubjectID: subjectID,
			NameJA:    cellText(row, colSubjectNameJA),
			NameVI:    cellText(row, colSubjectNameVI),
			Order:     order,
		})
	}

	for idx := range courses {
		subjects := courses[idx].Subjects
		sort.SliceStable(subjects, func(i, j int) bool {
			return subjects[i].Order < subjects[j].Order
		})
	}
	return Subjects{Courses: courses}
}

func cellText(row question.RawRow, column string) string {
	return strings.TrimSpace(row.Get(column).String())
}
