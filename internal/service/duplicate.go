package service

import (
	"strings"
	"unicode"
)

// Duplicate detection thresholds. Similarity is Jaccard overlap of the
// lowercase token sets of title plus content.
const (
	duplicateThreshold = 0.85
	duplicateScanLimit = 200
)

// DuplicateWarning flags an existing prompt whose text closely matches a
// candidate. Creation proceeds regardless; the warning is advisory.
type DuplicateWarning struct {
	PromptID   string  `json:"prompt_id"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
}

// tokenSet splits text into a set of lowercase word tokens.
func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		set[tok] = struct{}{}
	}
	return set
}

// jaccard computes intersection over union for two token sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
