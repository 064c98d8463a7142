package scoring

import "github.com/bookprepper/bookprepper-server/internal/domain"

// DimensionPayload is one dimension's tally in API responses.
type DimensionPayload struct {
	Dimension domain.Dimension `json:"dimension"`
	Agree     int              `json:"agree"`
	Disagree  int              `json:"disagree"`
	Total     int              `json:"total"`
}

// Payload is the external representation of a score.
type Payload struct {
	Agree      int                `json:"agree"`
	Disagree   int                `json:"disagree"`
	Total      int                `json:"total"`
	Score      float64            `json:"score"`
	Dimensions []DimensionPayload `json:"dimensions"`
}

// ToPayload flattens s with dimensions in canonical order. All ten
// dimensions are always present.
func ToPayload(s Summary) Payload {
	p := Payload{
		Agree:      s.Agree,
		Disagree:   s.Disagree,
		Total:      s.Total,
		Score:      s.Score,
		Dimensions: make([]DimensionPayload, len(domain.Dimensions)),
	}
	for i, d := range domain.Dimensions {
		tally := s.Dimensions[d]
		p.Dimensions[i] = DimensionPayload{
			Dimension: d,
			Agree:     tally.Agree,
			Disagree:  tally.Disagree,
			Total:     tally.Total,
		}
	}
	return p
}

// PayloadFromRecord is ToPayload(SummaryFromRecord(rec)), falling back to
// an all-zero payload for preps that were never scored.
func PayloadFromRecord(rec *domain.PromptScore) Payload {
	if s := SummaryFromRecord(rec); s != nil {
		return ToPayload(*s)
	}
	return ToPayload(Summary{Dimensions: emptyDimensions()})
}
