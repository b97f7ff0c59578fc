package models

import "time"

// WaitingEntry is a user sitting in the matchmaking pool. Keyed by user id,
// so a user can only ever hold one entry; re-entering overwrites the old one.
type WaitingEntry struct {
	UserID    string    `dynamodbav:"userId" json:"userId"`
	Category  string    `dynamodbav:"category" json:"category"`
	Status    string    `dynamodbav:"status" json:"status"` // waiting, matched, timed_out
	MatchID   string    `dynamodbav:"matchId,omitempty" json:"matchId,omitempty"`
	CreatedAt time.Time `dynamodbav:"createdAt,unixtime" json:"createdAt"`
}

// WaitingPoolTable is the DynamoDB table name for the waiting pool
const WaitingPoolTable = "WaitingPool"
