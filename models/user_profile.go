package models

import "time"

// UserProfile defines the structure for user profiles. Matchmaking only ever
// touches MiracleMatchPoints, atomically, when a miracle match commits.
type UserProfile struct {
	UserID             string    `dynamodbav:"userId" json:"userId"`
	Nickname           string    `dynamodbav:"nickname,omitempty" json:"nickname,omitempty"`
	MiracleMatchPoints int       `dynamodbav:"miracleMatchPoints" json:"miracleMatchPoints"`
	CreatedAt          time.Time `dynamodbav:"createdAt,unixtime" json:"createdAt"`
}

// UserProfilesTable is the DynamoDB table name for user profiles
const UserProfilesTable = "UserProfiles"
