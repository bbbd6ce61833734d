package models

import "time"

// Row is the per (chat, user) aggregate maintained incrementally from the
// score ledger. It holds nothing that cannot be recomputed by replay.
type Row struct {
	ChatID       int64     `json:"chat_id"`
	UserID       int64     `json:"user_id"`
	TotalPoints  int       `json:"total_points"`
	Entries      int       `json:"entries"`
	LastScoredAt time.Time `json:"last_scored_at"`
}

// RankedRow is a Row plus its position in the chat ranking.
type RankedRow struct {
	Rank int `json:"rank"`
	Row
}

// DaySummary is the per-user point total for one UTC day in a chat.
type DaySummary struct {
	UserID int64 `json:"user_id"`
	Points int   `json:"points"`
}
