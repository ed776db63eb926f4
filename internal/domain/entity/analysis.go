package entity

import "time"

// AnalysisResult is the post-processed answer of one external analysis call.
type AnalysisResult struct {
	Answer     string    // Cleaned text, sentinel stripped.
	Alert      bool      // True when the sentinel was present in the raw answer.
	ComputedAt time.Time // Instant the external call completed.
}
