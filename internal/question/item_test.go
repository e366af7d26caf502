package question

import (
	"encoding/json"
	"testing"
)

func TestToSnapshotItemFillsFiveSlots(t *testing.T) {
	raw := flagged(2, 1)
	delete(raw.Cells, OptionColumn(4, FieldTextJA))
	delete(raw.Cells, OptionColumn(5, FieldTextJA))
	raw.Cells[OptionColumn(2, FieldImage)] = Text("img/opt2.png")

	row, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	item := ToSnapshotItem(row)

	encoded, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(encoded, &fields); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if fields["option1IsAnswer"] != true {
		t.Fatalf("option1IsAnswer = %v, want true", fields["option1IsAnswer"])
	}
	if fields["option5TextJA"] != "" || fields["option5Image"] != nil || fields["option5IsAnswer"] != false {
		t.Fatalf("absent option not rendered empty: %v %v %v", fields["option5TextJA"], fields["option5Image"], fields["option5IsAnswer"])
	}
	if fields["option2Image"] != "img/opt2.png" {
		t.Fatalf("option2Image = %v", fields["option2Image"])
	}
	if fields["examYear"] != float64(2024) {
		t.Fatalf("examYear = %v, want 2024", fields["examYear"])
	}
	if fields["courseId"] != "KTS2" || fields["subjectId"] != "TK" {
		t.Fatalf("unexpected identity fields: %v", fields)
	}

	var decoded SnapshotItem
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("decode SnapshotItem failed: %v", err)
	}
	if decoded.AnswerMask() != 0b00001 || decoded.OptionMask() != 0b00111 {
		t.Fatalf("answers=%b options=%b, want 1 and 111", decoded.AnswerMask(), decoded.OptionMask())
	}
}

func TestToSnapshotItemDefaultsGroup(t *testing.T) {
	item := ToSnapshotItem(Row{QuestionID: "q1", ExamYear: 2020})
	if item.CourseID != DefaultCourseID || item.SubjectID != DefaultSubjectID {
		t.Fatalf("defaults not applied: %s/%s", item.CourseID, item.SubjectID)
	}
	if item.Tags == nil {
		t.Fatalf("tags should encode as an empty list")
	}
}
