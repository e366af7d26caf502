package question

import (
	"encoding/json"
	"fmt"
)

type SnapshotOption struct {
	TextJA        string
	TextVI        string
	Image         *string
	IsAnswer      bool
	ExplanationJA string
	ExplanationVI string
}

// SnapshotItem is the published form of a question. It always carries five
// option slots and is encoded with flat option{N}... keys.
type SnapshotItem struct {
	QuestionID       string
	CourseID         string
	SubjectID        string
	ExamYear         int
	QuestionTextJA   string
	QuestionTextVI   string
	QuestionImage    *string
	Options          [OptionCount]SnapshotOption
	ExplanationJA    string
	ExplanationVI    string
	ExplanationImage *string
	Tags             []string
	Difficulty       string
	Version          string
	SourceNote       string
}

// ToSnapshotItem converts a validated row. Absent options become empty
// text, a null image and false.
func ToSnapshotItem(row Row) SnapshotItem {
	item := SnapshotItem{
		QuestionID:       row.QuestionID,
		CourseID:         row.Course(),
		SubjectID:        row.Subject(),
		ExamYear:         row.ExamYear,
		QuestionTextJA:   row.QuestionTextJA,
		QuestionTextVI:   row.QuestionTextVI,
		QuestionImage:    optionalString(row.QuestionImage),
		ExplanationJA:    row.ExplanationJA,
		ExplanationVI:    row.ExplanationVI,
		ExplanationImage: optionalString(row.ExplanationImage),
		Tags:             append([]string{}, row.Tags...),
		Difficulty:       row.Difficulty,
		Version:          row.Version,
		SourceNote:       row.SourceNote,
	}
	for idx, option := range row.Options {
		if !option.Exists() {
			continue
		}
		item.Options[idx] = SnapshotOption{
			TextJA:        option.TextJA,
			TextVI:        option.TextVI,
			Image:         optionalString(option.Image),
			IsAnswer:      option.Correct(),
			ExplanationJA: option.ExplanationJA,
			ExplanationVI: option.ExplanationVI,
		}
	}
	return item
}

// AnswerMask has bit i set when option slot i+1 is an answer.
func (s SnapshotItem) AnswerMask() uint8 {
	var mask uint8
	for idx, option := range s.Options {
		if option.IsAnswer {
			mask |= 1 << idx
		}
	}
	return mask
}

// OptionMask has bit i set when option slot i+1 has content.
func (s SnapshotItem) OptionMask() uint8 {
	var mask uint8
	for idx, option := range s.Options {
		if option.TextJA != "" || option.TextVI != "" || option.Image != nil {
			mask |= 1 << idx
		}
	}
	return mask
}

func (s SnapshotItem) MarshalJSON() ([]byte, error) {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	fields := map[string]any{
		ColQuestionID:       s.QuestionID,
		ColCourseID:         s.CourseID,
		ColSubjectID:        s.SubjectID,
		ColExamYear:         s.ExamYear,
		ColQuestionTextJA:   s.QuestionTextJA,
		ColQuestionTextVI:   s.QuestionTextVI,
		ColQuestionImage:    s.QuestionImage,
		ColExplanationJA:    s.ExplanationJA,
		ColExplanationVI:    s.ExplanationVI,
		ColExplanationImage: s.ExplanationImage,
		ColTags:             tags,
		ColDifficulty:       s.Difficulty,
		ColVersion:          s.Version,
		ColSourceNote:       s.SourceNote,
	}
	for idx, option := range s.Options {
		slot := idx + 1
		fields[OptionColumn(slot, FieldTextJA)] = option.TextJA
		fields[OptionColumn(slot, FieldTextVI)] = option.TextVI
		fields[OptionColumn(slot, FieldImage)] = option.Image
		fields[OptionColumn(slot, FieldIsAnswer)] = option.IsAnswer
		fields[OptionColumn(slot, FieldExplanationJA)] = option.ExplanationJA
		fields[OptionColumn(slot, FieldExplanationVI)] = option.ExplanationVI
	}
	return json.Marshal(fields)
}

func (s *SnapshotItem) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var item SnapshotItem
	decode := func(key string, target any) error {
		raw, ok := fields[key]
		if !ok {
			return nil
		}
		if err := json.Unmarshal(raw, target); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	}

	targets := map[string]any{
		ColQuestionID:       &item.QuestionID,
		ColCourseID:         &item.CourseID,
		ColSubjectID:        &item.SubjectID,
		ColExamYear:         &item.ExamYear,
		ColQuestionTextJA:   &item.QuestionTextJA,
		ColQuestionTextVI:   &item.QuestionTextVI,
		ColQuestionImage:    &item.QuestionImage,
		ColExplanationJA:    &item.ExplanationJA,
		ColExplanationVI:    &item.ExplanationVI,
		ColExplanationImage: &item.ExplanationImage,
		ColTags:             &item.Tags,
		ColDifficulty:       &item.Difficulty,
		ColVersion:          &item.Version,
		ColSourceNote:       &item.SourceNote,
	}
	for idx := range item.Options {
		slot := idx + 1
		option := &item.Options[idx]
		targets[OptionColumn(slot, FieldTextJA)] = &option.TextJA
		targets[OptionColumn(slot, FieldTextVI)] = &option.TextVI
		targets[OptionColumn(slot, FieldImage)] = &option.Image
		targets[OptionColumn(slot, FieldIsAnswer)] = &option.IsAnswer
		targets[OptionColumn(slot, FieldExplanationJA)] = &option.ExplanationJA
		targets[OptionColumn(slot, FieldExplanationVI)] = &option.ExplanationVI
	}

	for key, target := range targets {
		if err := decode(key, target); err != nil {
			return err
		}
	}

	*s = item
	return nil
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
