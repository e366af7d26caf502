package exam

import "strings"

const (
	StatusCorrect         = "correct"
	StatusIncorrect       = "incorrect"
	StatusInvalidQuestion = "invalid_question"
	StatusInvalidOption   = "invalid_option"
)

// NormalizeLetter upper-cases a single answer letter; anything else becomes "".
func NormalizeLetter(answer string) string {
	letter := strings.ToUpper(strings.TrimSpace(answer))
	if len(letter) != 1 {
		return ""
	}
	return letter
}

// LetterIndex maps A..E to option indexes 0..4.
func LetterIndex(answer string) (int, bool) {
	letter := NormalizeLetter(answer)
	if letter == "" {
		return -1, false
	}
	index := int(letter[0]) - 'A'
	if index < 0 || index >= 5 {
		return -1, false
	}
	return index, true
}

// IsCorrect is an any-of match: choosing any flagged slot counts.
func (k AnswerKey) IsCorrect(index int) bool {
	if index < 0 || index >= 8 {
		return false
	}
	return k.Mask&(1<<index) != 0
}

// Evaluate scores one answer letter against a key.
func Evaluate(key AnswerKey, answer string) string {
	index, ok := LetterIndex(answer)
	if !ok {
		return StatusInvalidOption
	}
	if key.Options != 0 && key.Options&(1<<index) == 0 {
		return StatusInvalidOption
	}
	if key.IsCorrect(index) {
		return StatusCorrect
	}
	return StatusIncorrect
}
