package compat

import (
	"fmt"
	"strings"
	"unicode"
)

// RoommateProfile is the public part of a roommate listing used to explain
// a match.
type RoommateProfile struct {
	ID                string   `json:"id"`
	Faculty           string   `json:"faculty,omitempty"`
	BudgetMin         *float64 `json:"budget_min,omitempty"`
	BudgetMax         *float64 `json:"budget_max,omitempty"`
	SmokingAllowed    *bool    `json:"smoking_allowed,omitempty"`
	PetsAllowed       *bool    `json:"pets_allowed,omitempty"`
	PreferredLocation string   `json:"preferred_location,omitempty"`
	Interests         []string `json:"interests,omitempty"`
}

// ProfileFromPreferences fills the parts of a profile a preference vector
// knows about: budget, smoking, pets and interests.
func ProfileFromPreferences(id string, vec PreferenceVector) RoommateProfile {
	budgetMin, budgetMax := vec.BudgetMin, vec.BudgetMax
	smoking, pets := vec.SmokingAllowed, vec.PetsAllowed
	return RoommateProfile{
		ID:             id,
		BudgetMin:      &budgetMin,
		BudgetMax:      &budgetMax,
		SmokingAllowed: &smoking,
		PetsAllowed:    &pets,
		Interests:      vec.Interests,
	}
}

type TagKind string

const (
	TagSameFaculty     TagKind = "same_faculty"
	TagBudgetFits      TagKind = "budget_fits"
	TagSmokingMatches  TagKind = "smoking_matches"
	TagPetsMatch       TagKind = "pets_match"
	TagSharedLocation  TagKind = "shared_location"
	TagCommonInterests TagKind = "common_interests"
)

type Tag struct {
	Kind  TagKind `json:"kind"`
	Label string  `json:"label"`
}

// MatchTags lists the reasons two profiles fit together. Fields unset on
// either side are skipped.
func MatchTags(mine, other *RoommateProfile) []Tag {
	if mine == nil || other == nil {
		return nil
	}
	var tags []Tag

	if mine.Faculty != "" && other.Faculty != "" && mine.Faculty == other.Faculty {
		tags = append(tags, Tag{TagSameFaculty, "Misma Facultad"})
	}

	if mine.BudgetMin != nil && mine.BudgetMax != nil && other.BudgetMin != nil && other.BudgetMax != nil &&
		*other.BudgetMin <= *mine.BudgetMax && *other.BudgetMax >= *mine.BudgetMin {
		tags = append(tags, Tag{TagBudgetFits, "Presupuesto encaja"})
	}

	if mine.SmokingAllowed != nil && other.SmokingAllowed != nil && *mine.SmokingAllowed == *other.SmokingAllowed {
		tags = append(tags, Tag{TagSmokingMatches, "Hábito compatible"})
	}

	if mine.PetsAllowed != nil && other.PetsAllowed != nil && *mine.PetsAllowed == *other.PetsAllowed {
		tags = append(tags, Tag{TagPetsMatch, "Mascotas compatible"})
	}

	if sharesLocation(mine.PreferredLocation, other.PreferredLocation) {
		tags = append(tags, Tag{TagSharedLocation, "Zona común"})
	}

	if n := len(SharedInterests(mine.Interests, other.Interests)); n > 0 {
		tags = append(tags, Tag{TagCommonInterests, fmt.Sprintf("%d intereses comunes", n)})
	}

	return tags
}

func sharesLocation(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	mine := make(map[string]struct{})
	for _, w := range locationWords(a) {
		mine[w] = struct{}{}
	}
	for _, w := range locationWords(b) {
		if _, ok := mine[w]; ok {
			return true
		}
	}
	return false
}

func locationWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}
