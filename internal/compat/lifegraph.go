package compat

import "math"

const (
	lifeGraphMin = 1
	lifeGraphMax = 5
)

// LifeGraph is the five-axis 1..5 profile shown as a spider chart on
// roommate cards.
type LifeGraph struct {
	Cleanliness int `json:"cleanliness"`
	Party       int `json:"party"`
	Study       int `json:"study"`
	Visits      int `json:"visits"`
	Noise       int `json:"noise"`
}

func (g LifeGraph) axes() []int {
	return []int{g.Cleanliness, g.Party, g.Study, g.Visits, g.Noise}
}

// LifeGraphScore is 100 for identical graphs and falls linearly with the
// summed per-axis distance.
func LifeGraphScore(a, b LifeGraph) int {
	aa, bb := a.axes(), b.axes()
	maxDistance := len(aa) * (lifeGraphMax - lifeGraphMin)

	distance := 0
	for i := range aa {
		d := aa[i] - bb[i]
		if d < 0 {
			d = -d
		}
		distance += d
	}
	score := math.Round(100 * float64(maxDistance-distance) / float64(maxDistance))
	return int(clamp(score, 0, 100))
}
