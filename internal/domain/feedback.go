package domain

import (
	"strings"
	"time"
)

// Dimension is an axis along which readers judge a prep.
type Dimension string

// Feedback dimensions.
const (
	DimensionCorrect    Dimension = "CORRECT"
	DimensionIncorrect  Dimension = "INCORRECT"
	DimensionFun        Dimension = "FUN"
	DimensionBoring     Dimension = "BORING"
	DimensionUseful     Dimension = "USEFUL"
	DimensionSurprising Dimension = "SURPRISING"
	DimensionNotUseful  Dimension = "NOT_USEFUL"
	DimensionConfusing  Dimension = "CONFUSING"
	DimensionCommon     Dimension = "COMMON"
	DimensionSparse     Dimension = "SPARSE"
)

// Dimensions lists every dimension in canonical display order.
// Payloads and persisted tallies always follow this order.
var Dimensions = []Dimension{
	DimensionCorrect,
	DimensionIncorrect,
	DimensionFun,
	DimensionBoring,
	DimensionUseful,
	DimensionSurprising,
	DimensionNotUseful,
	DimensionConfusing,
	DimensionCommon,
	DimensionSparse,
}

// ParseDimension matches s case-insensitively against the known dimensions.
func ParseDimension(s string) (Dimension, bool) {
	d := Dimension(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Dimensions {
		if d == known {
			return d, true
		}
	}
	return "", false
}

// VoteValue is the polarity of a feedback event or legacy vote.
type VoteValue string

// Vote values.
const (
	VoteAgree    VoteValue = "AGREE"
	VoteDisagree VoteValue = "DISAGREE"
)

// ParseVoteValue matches s case-insensitively.
func ParseVoteValue(s string) (VoteValue, bool) {
	switch v := VoteValue(strings.ToUpper(strings.TrimSpace(s))); v {
	case VoteAgree, VoteDisagree:
		return v, true
	default:
		return "", false
	}
}

// FeedbackEvent is one reader's judgement of a prep along one dimension.
// Events are append-only; a reader may record many.
type FeedbackEvent struct {
	ID        string    `json:"id"`
	PrepID    string    `json:"prep_id"`
	UserID    string    `json:"user_id"`
	Dimension Dimension `json:"dimension"`
	Value     VoteValue `json:"value"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LegacyVote is the single undimensioned vote a reader may hold per prep.
type LegacyVote struct {
	PrepID    string    `json:"prep_id"`
	UserID    string    `json:"user_id"`
	Value     VoteValue `json:"value"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FeedbackAggregate is one row of feedback counts grouped by dimension and value.
type FeedbackAggregate struct {
	Dimension Dimension
	Value     VoteValue
	Count     int
}

// DimensionTally counts votes for one dimension.
type DimensionTally struct {
	Agree    int `json:"agree"`
	Disagree int `json:"disagree"`
	Total    int `json:"total"`
}

// PromptScore is the cached score of a prep. It is derived entirely from
// feedback events and can always be rebuilt.
type PromptScore struct {
	PrepID         string     `json:"prep_id"`
	AgreeCount     int        `json:"agree_count"`
	DisagreeCount  int        `json:"disagree_count"`
	TotalCount     int        `json:"total_count"`
	Score          float64    `json:"score"`
	Dimensions     []byte     `json:"-"` // JSON object keyed by dimension name
	LastFeedbackAt *time.Time `json:"last_feedback_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
