// Package alert detects the sentinel token the vision service appends to an
// answer when it observes an alert condition.
package alert

import "strings"

// Classifier strips a fixed sentinel substring from analysis answers.
// Matching is verbatim: no case folding, no partial matches.
type Classifier struct {
	sentinel string
}

// NewClassifier is the constructor for Classifier.
func NewClassifier(sentinel string) *Classifier {
	return &Classifier{sentinel: sentinel}
}

// Classify reports whether the raw answer contains the sentinel and returns
// the answer with the first occurrence removed and surrounding whitespace
// trimmed.
func (c *Classifier) Classify(raw string) (clean string, alerted bool) {
	if c.sentinel == "" || !strings.Contains(raw, c.sentinel) {
		return strings.TrimSpace(raw), false
	}

	return strings.TrimSpace(strings.Replace(raw, c.sentinel, "", 1)), true
}
