// Package preferences persists each user's PreferenceVector. Only the owner
// writes it; anyone may read it to compute compatibility.
package preferences

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/livix/roommates/internal/compat"
	"github.com/livix/roommates/internal/store"
)

const keyPrefix = "livix_user_preferences_"

// CurrentVersion is stamped on every saved vector.
const CurrentVersion = 1

var ErrInvalid = errors.New("invalid preferences")

type Store struct {
	profiles *store.Profiles
	now      func() time.Time
}

func NewStore(profiles *store.Profiles) *Store {
	return &Store{profiles: profiles, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) scoped(userID string) store.Storage {
	return s.profiles.For(userID)
}

// Key is the storage key for userID inside the profile namespace.
func Key(userID string) string {
	return keyPrefix + userID
}

// Defaults returns the questionnaire's starting answers.
func Defaults() compat.PreferenceVector {
	return compat.DefaultPreferences()
}

// Save validates vec, stamps it and stores it as userID's preferences.
func (s *Store) Save(userID string, vec compat.PreferenceVector) (compat.PreferenceVector, error) {
	if strings.TrimSpace(userID) == "" {
		return compat.PreferenceVector{}, fmt.Errorf("%w: empty user id", ErrInvalid)
	}
	if err := Validate(vec); err != nil {
		return compat.PreferenceVector{}, err
	}

	now := s.now()
	vec.CompletedAt = &now
	vec.Version = CurrentVersion
	if vec.Interests == nil {
		vec.Interests = []string{}
	}

	raw, err := json.Marshal(vec)
	if err != nil {
		return compat.PreferenceVector{}, fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if err := s.scoped(userID).Set(Key(userID), string(raw)); err != nil {
		return compat.PreferenceVector{}, fmt.Errorf("failed to save preferences for %s: %w", userID, err)
	}
	return vec, nil
}

// Get returns userID's saved preferences. found is false when the user has
// not completed the questionnaire.
func (s *Store) Get(userID string) (vec compat.PreferenceVector, found bool, err error) {
	raw, ok, err := s.scoped(userID).Get(Key(userID))
	if err != nil {
		return compat.PreferenceVector{}, false, fmt.Errorf("failed to read preferences for %s: %w", userID, err)
	}
	if !ok {
		return compat.PreferenceVector{}, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &vec); err != nil {
		return compat.PreferenceVector{}, false, fmt.Errorf("failed to decode preferences for %s: %w", userID, err)
	}
	return vec, true, nil
}

// Reset deletes userID's preferences.
func (s *Store) Reset(userID string) error {
	if err := s.scoped(userID).Delete(Key(userID)); err != nil {
		return fmt.Errorf("failed to reset preferences for %s: %w", userID, err)
	}
	return nil
}

func Validate(vec compat.PreferenceVector) error {
	switch vec.SleepSchedule {
	case compat.SleepEarly, compat.SleepIntermediate, compat.SleepNight:
	default:
		return fmt.Errorf("%w: sleep schedule %q", ErrInvalid, vec.SleepSchedule)
	}
	switch vec.NoiseLevel {
	case compat.NoiseQuiet, compat.NoiseModerate, compat.NoiseSocial:
	default:
		return fmt.Errorf("%w: noise level %q", ErrInvalid, vec.NoiseLevel)
	}
	switch vec.SocialLevel {
	case compat.SocialIntrovert, compat.SocialAmbivert, compat.SocialExtrovert:
	default:
		return fmt.Errorf("%w: social level %q", ErrInvalid, vec.SocialLevel)
	}
	switch vec.GuestsFrequency {
	case compat.GuestsNever, compat.GuestsOccasional, compat.GuestsFrequent:
	default:
		return fmt.Errorf("%w: guests frequency %q", ErrInvalid, vec.GuestsFrequency)
	}
	if vec.CleanlinessLevel < 1 || vec.CleanlinessLevel > 5 {
		return fmt.Errorf("%w: cleanliness level %d out of 1..5", ErrInvalid, vec.CleanlinessLevel)
	}
	if vec.BudgetMin < 0 || vec.BudgetMin > vec.BudgetMax {
		return fmt.Errorf("%w: budget %.0f..%.0f", ErrInvalid, vec.BudgetMin, vec.BudgetMax)
	}
	return nil
}
