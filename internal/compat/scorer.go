package compat

import (
	"math"
	"strings"
)

// NeutralScore is returned when the caller has no preferences yet.
const NeutralScore = 50

type Scorer struct {
	weights Weights
}

func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

var defaultScorer = NewScorer(DefaultWeights())

// Score rates other against mine with the default weights.
func Score(mine *PreferenceVector, other PreferenceVector) int {
	return defaultScorer.Score(mine, other)
}

// Contribution is the points one attribute earned out of its weight.
type Contribution struct {
	Attribute string `json:"attribute"`
	Points    int    `json:"points"`
	Max       int    `json:"max"`
}

// Score returns a 0..100 closeness of other to mine. A nil mine yields
// NeutralScore.
func (s *Scorer) Score(mine *PreferenceVector, other PreferenceVector) int {
	if mine == nil {
		return NeutralScore
	}
	total, max := 0, 0
	for _, c := range s.Explain(*mine, other) {
		total += c.Points
		max += c.Max
	}
	if max <= 0 {
		return NeutralScore
	}
	score := math.Round(100 * float64(total) / float64(max))
	return int(clamp(score, 0, 100))
}

// Explain breaks the score down per attribute.
func (s *Scorer) Explain(mine, other PreferenceVector) []Contribution {
	w := s.weights
	return []Contribution{
		{"sleep_schedule", categorical(mine.SleepSchedule == other.SleepSchedule,
			mine.SleepSchedule == SleepIntermediate || other.SleepSchedule == SleepIntermediate, w.SleepSchedule), w.SleepSchedule},
		{"cleanliness", cleanliness(mine.CleanlinessLevel, other.CleanlinessLevel, w.Cleanliness, w.CleanlinessPenalty), w.Cleanliness},
		{"noise_level", categorical(mine.NoiseLevel == other.NoiseLevel,
			mine.NoiseLevel == NoiseModerate || other.NoiseLevel == NoiseModerate, w.NoiseLevel), w.NoiseLevel},
		{"smoking", categorical(mine.SmokingAllowed == other.SmokingAllowed, false, w.Smoking), w.Smoking},
		// Allowing pets is partially compatible with someone who has none.
		{"pets", categorical(mine.PetsAllowed == other.PetsAllowed, mine.PetsAllowed, w.Pets), w.Pets},
		{"social_level", categorical(mine.SocialLevel == other.SocialLevel,
			mine.SocialLevel == SocialAmbivert || other.SocialLevel == SocialAmbivert, w.SocialLevel), w.SocialLevel},
		{"guests_frequency", categorical(mine.GuestsFrequency == other.GuestsFrequency, false, w.GuestsFrequency), w.GuestsFrequency},
		{"budget", budget(mine, other, w.Budget, w.BudgetOverlapThreshold), w.Budget},
		{"interests", interests(mine.Interests, other.Interests, w.Interests, w.PointsPerSharedInterest), w.Interests},
	}
}

func categorical(equal, partial bool, weight int) int {
	switch {
	case equal:
		return weight
	case partial:
		return half(weight)
	default:
		return 0
	}
}

// half rounds up, so a weight of 15 gives 8.
func half(weight int) int {
	return (weight + 1) / 2
}

func cleanliness(a, b, weight, penalty int) int {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	if v := weight - diff*penalty; v > 0 {
		return v
	}
	return 0
}

// BudgetOverlap returns the length of the intersection of the two budget
// ranges; zero or negative means they are disjoint.
func BudgetOverlap(a, b PreferenceVector) float64 {
	return math.Min(a.BudgetMax, b.BudgetMax) - math.Max(a.BudgetMin, b.BudgetMin)
}

func budget(a, b PreferenceVector, weight int, threshold float64) int {
	overlap := BudgetOverlap(a, b)
	switch {
	case overlap > threshold:
		return weight
	case overlap > 0:
		return half(weight)
	default:
		return 0
	}
}

func interests(mine, other []string, weight, perShared int) int {
	v := len(SharedInterests(mine, other)) * perShared
	if v > weight {
		return weight
	}
	return v
}

// SharedInterests returns the tags of mine that other also has, compared
// case-insensitively, in mine's order and without duplicates.
func SharedInterests(mine, other []string) []string {
	have := make(map[string]struct{}, len(other))
	for _, t := range other {
		have[normalizeTag(t)] = struct{}{}
	}
	seen := make(map[string]struct{}, len(mine))
	var out []string
	for _, t := range mine {
		k := normalizeTag(t)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := have[k]; ok {
			out = append(out, t)
		}
	}
	return out
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
