package compat

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Weights sets the maximum points each attribute contributes, plus the knobs
// of the partial-credit rules.
type Weights struct {
	SleepSchedule   int `yaml:"sleep_schedule"`
	Cleanliness     int `yaml:"cleanliness"`
	NoiseLevel      int `yaml:"noise_level"`
	Smoking         int `yaml:"smoking"`
	Pets            int `yaml:"pets"`
	SocialLevel     int `yaml:"social_level"`
	GuestsFrequency int `yaml:"guests_frequency"`
	Budget          int `yaml:"budget"`
	Interests       int `yaml:"interests"`

	// Points lost per step of cleanliness difference.
	CleanlinessPenalty int `yaml:"cleanliness_penalty"`
	// Overlap (in euros) above which budget ranges count as fully compatible.
	BudgetOverlapThreshold  float64 `yaml:"budget_overlap_threshold"`
	PointsPerSharedInterest int     `yaml:"points_per_shared_interest"`
}

// DefaultWeights sums to 100.
func DefaultWeights() Weights {
	return Weights{
		SleepSchedule:           15,
		Cleanliness:             15,
		NoiseLevel:              12,
		Smoking:                 10,
		Pets:                    8,
		SocialLevel:             10,
		GuestsFrequency:         8,
		Budget:                  12,
		Interests:               10,
		CleanlinessPenalty:      4,
		BudgetOverlapThreshold:  100,
		PointsPerSharedInterest: 2,
	}
}

// Max returns the highest attainable raw score.
func (w Weights) Max() int {
	return w.SleepSchedule + w.Cleanliness + w.NoiseLevel + w.Smoking + w.Pets +
		w.SocialLevel + w.GuestsFrequency + w.Budget + w.Interests
}

// LoadWeightsFromFile reads YAML weights on top of the defaults. On error the
// defaults are returned together with the error.
func LoadWeightsFromFile(path string) (Weights, error) {
	w := DefaultWeights()
	b, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("read weights file: %w", err)
	}
	loaded := w
	if err := yaml.Unmarshal(b, &loaded); err != nil {
		return w, fmt.Errorf("unmarshal weights: %w", err)
	}
	if err := loaded.validate(); err != nil {
		return w, err
	}
	return loaded, nil
}

func (w Weights) validate() error {
	for name, v := range map[string]int{
		"sleep_schedule":             w.SleepSchedule,
		"cleanliness":                w.Cleanliness,
		"noise_level":                w.NoiseLevel,
		"smoking":                    w.Smoking,
		"pets":                       w.Pets,
		"social_level":               w.SocialLevel,
		"guests_frequency":           w.GuestsFrequency,
		"budget":                     w.Budget,
		"interests":                  w.Interests,
		"cleanliness_penalty":        w.CleanlinessPenalty,
		"points_per_shared_interest": w.PointsPerSharedInterest,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s must not be negative", name)
		}
	}
	if w.Max() == 0 {
		return fmt.Errorf("at least one weight must be positive")
	}
	return nil
}
