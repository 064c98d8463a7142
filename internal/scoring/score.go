// Package scoring turns reader feedback on a prep into a bounded,
// confidence-weighted score with a per-dimension breakdown.
package scoring

import (
	"encoding/json"
	"math"
	"time"

	"github.com/bookprepper/bookprepper-server/internal/domain"
)

const (
	// baseWeight is the multiplier applied to the balance at a single vote.
	baseWeight = 0.7
	// confidenceWeight is the share unlocked as the sample grows.
	confidenceWeight = 0.3
	// scorePrecision rounds scores to four decimal places.
	scorePrecision = 1e4
)

// Summary is a computed score with its per-dimension breakdown.
type Summary struct {
	Agree      int
	Disagree   int
	Total      int
	Score      float64
	Dimensions map[domain.Dimension]domain.DimensionTally
}

// CalculateScore returns a score in [-1, 1]. The balance of agree over
// disagree votes is attenuated when few votes exist:
//
//	balance    = (agree - disagree) / (agree + disagree)
//	confidence = min(1, log10(total + 1) / 2)
//	score      = balance * (0.7 + confidence * 0.3)
//
// Confidence saturates at 99 votes. Zero votes score exactly 0.
func CalculateScore(agree, disagree int) float64 {
	total := agree + disagree
	if total <= 0 {
		return 0
	}
	balance := float64(agree-disagree) / float64(total)
	confidence := math.Min(1, math.Log10(float64(total)+1)/2)
	score := balance * (baseWeight + confidence*confidenceWeight)
	return math.Round(score*scorePrecision) / scorePrecision
}

// emptyDimensions returns a tally for every dimension, all zero.
func emptyDimensions() map[domain.Dimension]domain.DimensionTally {
	dims := make(map[domain.Dimension]domain.DimensionTally, len(domain.Dimensions))
	for _, d := range domain.Dimensions {
		dims[d] = domain.DimensionTally{}
	}
	return dims
}

// SummarizeAggregates folds grouped (dimension, value, count) rows into a
// summary. Rows for unknown dimensions count toward the totals but are not
// broken out.
func SummarizeAggregates(rows []domain.FeedbackAggregate) Summary {
	s := Summary{Dimensions: emptyDimensions()}

	for _, row := range rows {
		if row.Count <= 0 {
			continue
		}
		tally, known := s.Dimensions[row.Dimension]
		switch row.Value {
		case domain.VoteAgree:
			s.Agree += row.Count
			tally.Agree += row.Count
		case domain.VoteDisagree:
			s.Disagree += row.Count
			tally.Disagree += row.Count
		default:
			continue
		}
		if known {
			tally.Total = tally.Agree + tally.Disagree
			s.Dimensions[row.Dimension] = tally
		}
	}

	s.Total = s.Agree + s.Disagree
	s.Score = CalculateScore(s.Agree, s.Disagree)
	return s
}

// Record builds the cache row for s. LastFeedbackAt is set only when there
// is at least one vote.
func (s Summary) Record(prepID string, at time.Time) (*domain.PromptScore, error) {
	blob, err := EncodeDimensions(s.Dimensions)
	if err != nil {
		return nil, err
	}
	rec := &domain.PromptScore{
		PrepID:        prepID,
		AgreeCount:    s.Agree,
		DisagreeCount: s.Disagree,
		TotalCount:    s.Total,
		Score:         s.Score,
		Dimensions:    blob,
		UpdatedAt:     at,
	}
	if s.Total > 0 {
		last := at
		rec.LastFeedbackAt = &last
	}
	return rec, nil
}

// EncodeDimensions renders the persisted tally object:
// {"CORRECT":{"agree":1,"disagree":0,"total":1}, ...} with every dimension present.
func EncodeDimensions(dims map[domain.Dimension]domain.DimensionTally) ([]byte, error) {
	out := make(map[domain.Dimension]domain.DimensionTally, len(domain.Dimensions))
	for _, d := range domain.Dimensions {
		out[d] = dims[d]
	}
	return json.Marshal(out)
}

// DecodeDimensions parses a stored tally object. Anything missing or
// malformed, at any level, reads as zero.
func DecodeDimensions(blob []byte) map[domain.Dimension]domain.DimensionTally {
	dims := emptyDimensions()
	if len(blob) == 0 {
		return dims
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(blob, &raw); err != nil {
		return dims
	}

	for _, d := range domain.Dimensions {
		entry, ok := raw[string(d)]
		if !ok {
			continue
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(entry, &fields); err != nil {
			continue
		}
		dims[d] = domain.DimensionTally{
			Agree:    intField(fields, "agree"),
			Disagree: intField(fields, "disagree"),
			Total:    intField(fields, "total"),
		}
	}
	return dims
}

func intField(fields map[string]json.RawMessage, key string) int {
	raw, ok := fields[key]
	if !ok {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0
	}
	return int(f)
}

// SummaryFromRecord rebuilds a summary from a cache row, or returns nil when
// the prep has never been scored. Stored counts and score are used as is.
func SummaryFromRecord(rec *domain.PromptScore) *Summary {
	if rec == nil {
		return nil
	}
	return &Summary{
		Agree:      rec.AgreeCount,
		Disagree:   rec.DisagreeCount,
		Total:      rec.TotalCount,
		Score:      rec.Score,
		Dimensions: DecodeDimensions(rec.Dimensions),
	}
}
