package models

import "time"

// Match records a completed pairing. Immutable once written.
type Match struct {
	MatchID        string    `dynamodbav:"matchId" json:"matchId"`
	Participants   []string  `dynamodbav:"participants" json:"participants"` // exactly two user ids
	IsMiracleMatch bool      `dynamodbav:"isMiracleMatch" json:"isMiracleMatch"`
	CreatedAt      time.Time `dynamodbav:"createdAt,unixtime" json:"createdAt"`
}

// MatchesTable is the DynamoDB table name for matches
const MatchesTable = "Matches"
