package alert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_Classify_SentinelPresent(t *testing.T) {
	classifier := NewClassifier("yyeess")

	clean, alerted := classifier.Classify("All clear. yyeess")

	assert.True(t, alerted)
	assert.Equal(t, "All clear.", clean)
}

func TestClassifier_Classify_NoSentinel(t *testing.T) {
	classifier := NewClassifier("yyeess")

	clean, alerted := classifier.Classify("All clear.")

	assert.False(t, alerted)
	assert.Equal(t, "All clear.", clean)
}

func TestClassifier_Classify_MatchIsVerbatim(t *testing.T) {
	classifier := NewClassifier("yyeess")

	// Different casing must not match.
	clean, alerted := classifier.Classify("Danger ahead YYEESS")
	assert.False(t, alerted)
	assert.Equal(t, "Danger ahead YYEESS", clean)

	// A partial sentinel must not match either.
	clean, alerted = classifier.Classify("yes, yyees")
	assert.False(t, alerted)
	assert.Equal(t, "yes, yyees", clean)
}

func TestClassifier_Classify_SentinelMidAnswer(t *testing.T) {
	classifier := NewClassifier("yyeess")

	clean, alerted := classifier.Classify("Smoke yyeess visible near the door")

	assert.True(t, alerted)
	assert.Equal(t, "Smoke  visible near the door", clean)
}

func TestClassifier_Classify_OnlyFirstOccurrenceRemoved(t *testing.T) {
	classifier := NewClassifier("yyeess")

	clean, alerted := classifier.Classify("yyeess yyeess")

	assert.True(t, alerted)
	assert.Equal(t, "yyeess", clean)
}

func TestClassifier_Classify_WhitespaceTrimmed(t *testing.T) {
	classifier := NewClassifier("yyeess")

	clean, alerted := classifier.Classify("  Everything normal  ")

	assert.False(t, alerted)
	assert.Equal(t, "Everything normal", clean)
}

func TestClassifier_Classify_EmptySentinelNeverMatches(t *testing.T) {
	classifier := NewClassifier("")

	clean, alerted := classifier.Classify("anything at all")

	assert.False(t, alerted)
	assert.Equal(t, "anything at all", clean)
}
