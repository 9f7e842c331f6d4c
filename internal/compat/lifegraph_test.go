package compat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLifeGraphScore(t *testing.T) {
	mine := LifeGraph{Cleanliness: 4, Party: 2, Study: 5, Visits: 2, Noise: 1}

	tests := []struct {
		name  string
		other LifeGraph
		want  int
	}{
		{"identical", mine, 100},
		{"opposite", LifeGraph{1, 5, 1, 5, 5}, 15},
		{"one step off", LifeGraph{5, 2, 5, 2, 1}, 95},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LifeGraphScore(mine, tt.other))
		})
	}

	lo := LifeGraph{1, 1, 1, 1, 1}
	hi := LifeGraph{5, 5, 5, 5, 5}
	assert.Equal(t, 0, LifeGraphScore(lo, hi))
	assert.Equal(t, LifeGraphScore(lo, hi), LifeGraphScore(hi, lo))
}

func TestLifeGraphScoreClampsOutOfRange(t *testing.T) {
	got := LifeGraphScore(LifeGraph{0, 0, 0, 0, 0}, LifeGraph{9, 9, 9, 9, 9})
	assert.Equal(t, 0, got)
}

func ptr[T any](v T) *T { return &v }

func TestMatchTags(t *testing.T) {
	mine := &RoommateProfile{
		Faculty:           "Ingeniería",
		BudgetMin:         ptr(300.0),
		BudgetMax:         ptr(450.0),
		SmokingAllowed:    ptr(false),
		PetsAllowed:       ptr(true),
		PreferredLocation: "Centro, Delicias",
		Interests:         []string{"Cine", "Gym"},
	}
	other := &RoommateProfile{
		Faculty:           "Ingeniería",
		BudgetMin:         ptr(400.0),
		BudgetMax:         ptr(600.0),
		SmokingAllowed:    ptr(false),
		PetsAllowed:       ptr(false),
		PreferredLocation: "delicias",
		Interests:         []string{"gym", "Yoga"},
	}

	var kinds []TagKind
	for _, tag := range MatchTags(mine, other) {
		kinds = append(kinds, tag.Kind)
	}
	assert.Equal(t, []TagKind{TagSameFaculty, TagBudgetFits, TagSmokingMatches, TagSharedLocation, TagCommonInterests}, kinds)

	assert.Empty(t, MatchTags(nil, other))

	a := DefaultPreferences()
	b := DefaultPreferences()
	b.SmokingAllowed = true
	b.BudgetMin, b.BudgetMax = 600, 900
	pa, pb := ProfileFromPreferences("a", a), ProfileFromPreferences("b", b)
	assert.Equal(t, []Tag{{TagPetsMatch, "Mascotas compatible"}}, MatchTags(&pa, &pb))
	assert.Empty(t, MatchTags(mine, &RoommateProfile{}))
}
