package store

import "time"

type Like struct {
	LikerID   string    `json:"liker_id"`
	LikedID   string    `json:"liked_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Match struct {
	User1ID   string    `json:"user_1_id"`
	User2ID   string    `json:"user_2_id"`
	MatchedAt time.Time `json:"matched_at"`
}
