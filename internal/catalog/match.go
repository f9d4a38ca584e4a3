package catalog

import "github.com/hbollon/go-edlib"

// MatchConfidence represents the confidence level of a taxon match.
type MatchConfidence int

const (
	ConfidenceNone   MatchConfidence = iota // Score < 0.70
	ConfidenceLow                           // Score >= 0.70
	ConfidenceMedium                        // Score >= 0.85
	ConfidenceHigh                          // Score >= 0.95
)

func (c MatchConfidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "none"
	}
}

// TaxonMatch is the best candidate for a user-typed category or country.
type TaxonMatch struct {
	Taxon      Taxon
	Score      float64
	Confidence MatchConfidence
}

// MatchTaxon finds the taxon whose slug or accent-folded name is closest to input.
// An exact slug match always wins with score 1. Otherwise Jaro-Winkler similarity
// is computed against both the slug and the slugified name.
func MatchTaxon(input string, candidates []Taxon) TaxonMatch {
	key := Slugify(input)
	if key == "" || len(candidates) == 0 {
		return TaxonMatch{Confidence: ConfidenceNone}
	}

	best := TaxonMatch{}
	for _, c := range candidates {
		if c.Slug == input || c.Slug == key {
			return TaxonMatch{Taxon: c, Score: 1, Confidence: ConfidenceHigh}
		}
		score := float64(edlib.JaroWinklerSimilarity(key, c.Slug))
		if byName := float64(edlib.JaroWinklerSimilarity(key, Slugify(c.Name))); byName > score {
			score = byName
		}
		if score > best.Score {
			best = TaxonMatch{Taxon: c, Score: score}
		}
	}

	switch {
	case best.Score >= 0.95:
		best.Confidence = ConfidenceHigh
	case best.Score >= 0.85:
		best.Confidence = ConfidenceMedium
	case best.Score >= 0.70:
		best.Confidence = ConfidenceLow
	default:
		best.Confidence = ConfidenceNone
	}
	return best
}
