package compat

import "sort"

const defaultRankLimit = 20

type Candidate struct {
	ID          string           `json:"id"`
	Preferences PreferenceVector `json:"preferences"`
}

type Ranked struct {
	ID    string `json:"id"`
	Score int    `json:"score"`
}

// Rank scores candidates against mine, best first, ties broken by id.
func (s *Scorer) Rank(mine *PreferenceVector, candidates []Candidate, limit int) []Ranked {
	out := make([]Ranked, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, Ranked{ID: c.ID, Score: s.Score(mine, c.Preferences)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if limit <= 0 {
		limit = defaultRankLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
