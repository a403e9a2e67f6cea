// Package parser turns free-text model replies into a classification and explanation.
package parser

import (
	"fmt"
	"strings"

	"NewsClassifier/internal/domain"
)

const (
	classificationLabel = "Classification:"
	explanationLabel    = "Explanation:"
)

// Parse extracts the labelled classification and explanation from raw.
// Empty return values stand for "absent". Parse never fails: unknown labels become
// domain.LabelUnknown and a missing explanation falls back to the whole reply.
func Parse(raw string) (classification, explanation string) {
	if raw == "" {
		return "", ""
	}

	var foundClass, foundExpl bool
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		switch {
		case !foundClass && strings.HasPrefix(line, classificationLabel):
			classification = strings.TrimSpace(strings.TrimPrefix(line, classificationLabel))
			foundClass = true
		case !foundExpl && strings.HasPrefix(line, explanationLabel):
			explanation = strings.TrimSpace(strings.TrimPrefix(line, explanationLabel))
			foundExpl = true
		}
	}

	if !domain.ValidLabel(classification) {
		classification = domain.LabelUnknown
	}
	if explanation == "" {
		explanation = raw
	}

	return classification, explanation
}

// Format renders a pair back into the two-line answer format the model is asked for.
func Format(classification, explanation string) string {
	return fmt.Sprintf("%s %s\n%s %s", classificationLabel, classification, explanationLabel, explanation)
}
