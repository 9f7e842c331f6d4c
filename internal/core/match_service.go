package core

import (
	"errors"
	"fmt"

	"github.com/livix/roommates/internal/chatstore"
	"github.com/livix/roommates/internal/compat"
	"github.com/livix/roommates/internal/logger"
	"github.com/livix/roommates/internal/preferences"
	"github.com/livix/roommates/internal/store"
)

var ErrSelfLike = errors.New("cannot like your own profile")

// LikeStore records one-directional roommate likes.
type LikeStore interface {
	CreateLike(likerID, likedID string) error
	DeleteLike(likerID, likedID string) (bool, error)
	HasLike(likerID, likedID string) (bool, error)
	GetLikesByLiker(likerID string) ([]store.Like, error)
	GetMatchesByUserID(userID string) ([]store.Match, error)
}

type MatchService struct {
	likes  LikeStore
	prefs  *preferences.Store
	scorer *compat.Scorer
	chats  *ChatService
	log    *logger.Logger
}

func NewMatchService(likes LikeStore, prefs *preferences.Store, scorer *compat.Scorer, chats *ChatService, log *logger.Logger) *MatchService {
	return &MatchService{
		likes:  likes,
		prefs:  prefs,
		scorer: scorer,
		chats:  chats,
		log:    log.With("service", "MatchService"),
	}
}

// LikeProfile records that likerID likes likedID. When the like is mutual
// both profiles get a roommate conversation with each other.
func (s *MatchService) LikeProfile(likerID, likedID string) (matched bool, err error) {
	if likerID == likedID {
		return false, ErrSelfLike
	}
	if err := s.likes.CreateLike(likerID, likedID); err != nil {
		return false, fmt.Errorf("failed to like profile: %w", err)
	}
	matched, err = s.likes.HasLike(likedID, likerID)
	if err != nil {
		return false, fmt.Errorf("failed to check reverse like: %w", err)
	}
	if !matched {
		return false, nil
	}

	s.chats.EnsureConversation(likerID, likedID, chatstore.TypeRoommate)
	s.chats.EnsureConversation(likedID, likerID, chatstore.TypeRoommate)
	s.log.Info("Roommate match", "user1", likerID, "user2", likedID)
	return true, nil
}

// UnlikeProfile removes the like. Existing conversations are kept.
func (s *MatchService) UnlikeProfile(likerID, likedID string) (bool, error) {
	removed, err := s.likes.DeleteLike(likerID, likedID)
	if err != nil {
		return false, fmt.Errorf("failed to unlike profile: %w", err)
	}
	return removed, nil
}

// Likes lists the profiles userID has liked.
func (s *MatchService) Likes(userID string) ([]store.Like, error) {
	likes, err := s.likes.GetLikesByLiker(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get likes: %w", err)
	}
	if likes == nil {
		likes = []store.Like{}
	}
	return likes, nil
}

func (s *MatchService) Matches(userID string) ([]store.Match, error) {
	matches, err := s.likes.GetMatchesByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}
	if matches == nil {
		matches = []store.Match{}
	}
	return matches, nil
}

// CompatibilityResult is the score of other from userID's point of view.
type CompatibilityResult struct {
	UserID          string                `json:"user_id"`
	Score           int                   `json:"score"`
	Breakdown       []compat.Contribution `json:"breakdown,omitempty"`
	SharedInterests []string              `json:"shared_interests"`
	Tags            []compat.Tag          `json:"tags"`
	HasPreferences  bool                  `json:"has_preferences"`
}

// Compatibility scores otherID against userID. A user who has not saved
// preferences gets the neutral score; an other without preferences is scored
// as if they kept the defaults.
func (s *MatchService) Compatibility(userID, otherID string) (CompatibilityResult, error) {
	mine, err := s.loadPreferences(userID)
	if err != nil {
		return CompatibilityResult{}, err
	}
	other, err := s.otherPreferences(otherID)
	if err != nil {
		return CompatibilityResult{}, err
	}

	res := CompatibilityResult{
		UserID:          otherID,
		Score:           s.scorer.Score(mine, other),
		SharedInterests: []string{},
		Tags:            []compat.Tag{},
	}
	if mine != nil {
		res.HasPreferences = true
		res.Breakdown = s.scorer.Explain(*mine, other)
		if shared := compat.SharedInterests(mine.Interests, other.Interests); shared != nil {
			res.SharedInterests = shared
		}
		myProfile := compat.ProfileFromPreferences(userID, *mine)
		otherProfile := compat.ProfileFromPreferences(otherID, other)
		if tags := compat.MatchTags(&myProfile, &otherProfile); tags != nil {
			res.Tags = tags
		}
	}
	return res, nil
}

// RankCandidates scores each id against userID and returns the best first.
func (s *MatchService) RankCandidates(userID string, ids []string, limit int) ([]compat.Ranked, error) {
	mine, err := s.loadPreferences(userID)
	if err != nil {
		return nil, err
	}
	candidates := make([]compat.Candidate, 0, len(ids))
	for _, id := range ids {
		if id == userID {
			continue
		}
		other, err := s.otherPreferences(id)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, compat.Candidate{ID: id, Preferences: other})
	}
	return s.scorer.Rank(mine, candidates, limit), nil
}

func (s *MatchService) loadPreferences(userID string) (*compat.PreferenceVector, error) {
	vec, found, err := s.prefs.Get(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &vec, nil
}

func (s *MatchService) otherPreferences(userID string) (compat.PreferenceVector, error) {
	vec, err := s.loadPreferences(userID)
	if err != nil {
		return compat.PreferenceVector{}, err
	}
	if vec == nil {
		return preferences.Defaults(), nil
	}
	return *vec, nil
}
