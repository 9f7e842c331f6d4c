package compat

import "time"

type SleepSchedule string

const (
	SleepEarly        SleepSchedule = "early"
	SleepIntermediate SleepSchedule = "intermediate"
	SleepNight        SleepSchedule = "night"
)

type NoiseLevel string

const (
	NoiseQuiet    NoiseLevel = "quiet"
	NoiseModerate NoiseLevel = "moderate"
	NoiseSocial   NoiseLevel = "social"
)

type SocialLevel string

const (
	SocialIntrovert SocialLevel = "introvert"
	SocialAmbivert  SocialLevel = "ambivert"
	SocialExtrovert SocialLevel = "extrovert"
)

type GuestFrequency string

const (
	GuestsNever      GuestFrequency = "never"
	GuestsOccasional GuestFrequency = "occasional"
	GuestsFrequent   GuestFrequency = "frequent"
)

// PreferenceVector holds the lifestyle attributes a user fills in on the
// roommate questionnaire.
type PreferenceVector struct {
	SleepSchedule    SleepSchedule  `json:"sleep_schedule" yaml:"sleep_schedule"`
	CleanlinessLevel int            `json:"cleanliness_level" yaml:"cleanliness_level"` // 1..5
	NoiseLevel       NoiseLevel     `json:"noise_level" yaml:"noise_level"`
	SmokingAllowed   bool           `json:"smoking_allowed" yaml:"smoking_allowed"`
	PetsAllowed      bool           `json:"pets_allowed" yaml:"pets_allowed"`
	SocialLevel      SocialLevel    `json:"social_level" yaml:"social_level"`
	GuestsFrequency  GuestFrequency `json:"guests_frequency" yaml:"guests_frequency"`
	BudgetMin        float64        `json:"budget_min" yaml:"budget_min"`
	BudgetMax        float64        `json:"budget_max" yaml:"budget_max"`
	Interests        []string       `json:"interests" yaml:"interests"`

	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"-"`
	Version     int        `json:"version" yaml:"-"`
}

// DefaultPreferences is the vector a new user starts from.
func DefaultPreferences() PreferenceVector {
	return PreferenceVector{
		SleepSchedule:    SleepIntermediate,
		CleanlinessLevel: 3,
		NoiseLevel:       NoiseModerate,
		SmokingAllowed:   false,
		PetsAllowed:      true,
		SocialLevel:      SocialAmbivert,
		GuestsFrequency:  GuestsOccasional,
		BudgetMin:        250,
		BudgetMax:        500,
		Interests:        []string{},
		Version:          1,
	}
}
