package domain

import (
	"errors"
	"time"
)

// ErrNotPending is returned when a result is written for an article that is no longer PENDING.
var ErrNotPending = errors.New("article is not pending")

// Article is a news record owned by the store and classified by the pipeline.
type Article struct {
	ID            int64
	Status        Status
	Title         string
	Link          string
	Summary       string
	DatePublished *time.Time
	Source        string
	AddedAt       *time.Time
}

// Status enumerates the article lifecycle as persisted in the store.
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusClassified     Status = "CLASSIFIED"
	StatusFailedNoReply  Status = "FAILED (no response)"
	StatusFailedUnparsed Status = "FAILED (to parse response)"
)

// Terminal reports whether the pipeline is done with an article in this status.
func (s Status) Terminal() bool {
	switch s {
	case StatusClassified, StatusFailedNoReply, StatusFailedUnparsed:
		return true
	default:
		return false
	}
}

// Classification labels produced by the model, plus the sentinel for anything else.
const (
	LabelThreat      = "Threat"
	LabelOpportunity = "Opportunity"
	LabelNeutral     = "Neutral"
	LabelUnknown     = "Error: Unknown"
)

// ValidLabel reports whether label is one of the accepted model answers.
func ValidLabel(label string) bool {
	switch label {
	case LabelThreat, LabelOpportunity, LabelNeutral:
		return true
	default:
		return false
	}
}

// FinishReasonLength marks a completion cut off by the output token limit.
const FinishReasonLength = "length"

// Completion is the raw model reply for one article.
type Completion struct {
	Content      string
	Reasoning    string
	FinishReason string
}

// Truncated reports whether the model stopped because it ran out of tokens.
func (c Completion) Truncated() bool {
	return c.FinishReason == FinishReasonLength
}

// ResultUpdate is the set of columns written back for one article. Nil pointers persist as NULL.
type ResultUpdate struct {
	Status         Status
	Classification *string
	Explanation    *string
	Reasoning      *string
}

// ClassifiedUpdate builds the update for a successfully parsed reply.
func ClassifiedUpdate(classification, explanation, reasoning string) ResultUpdate {
	return ResultUpdate{
		Status:         StatusClassified,
		Classification: &classification,
		Explanation:    &explanation,
		Reasoning:      &reasoning,
	}
}

// FailedUpdate builds an update that clears every result column.
func FailedUpdate(status Status) ResultUpdate {
	return ResultUpdate{Status: status}
}

// RunSummary aggregates the outcome of one pipeline run.
type RunSummary struct {
	Total      int
	Successful int
	Failed     int
	Threats    []Article
}
