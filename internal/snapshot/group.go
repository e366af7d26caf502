package snapshot

import "seiyo-exam/internal/question"

// Group is every published row of one (course, subject) pair, in
// spreadsheet order.
type Group struct {
	CourseID  string
	SubjectID string
	Rows      []question.Row
}

// GroupRows groups rows by course then subject. Missing ids fall back to
// question.DefaultCourseID and question.DefaultSubjectID. Groups are
// returned in order of first appearance.
func GroupRows(rows []question.Row) []Group {
	byCourse := make(map[string]map[string]int)
	groups := make([]Group, 0)

	for _, row := range rows {
		course, subject := row.Course(), row.Subject()
		subjects, ok := byCourse[course]
		if !ok {
			subjects = make(map[string]int)
			byCourse[course] = subjects
		}
		idx, ok := subjects[subject]
		if !ok {
			idx = len(groups)
			subjects[subject] = idx
			groups = append(groups, Group{CourseID: course, SubjectID: subject})
		}
		groups[idx].Rows = append(groups[idx].Rows, row)
	}
	return groups
}

// Items converts the group's rows to their published form.
func (g Group) Items() []question.SnapshotItem {
	items := make([]question.SnapshotItem, 0, len(g.Rows))
	for _, row := range g.Rows {
		items = append(items, question.ToSnapshotItem(row))
	}
	return items
}
