package models

import "time"

// Room is a live dining session. ParticipantCount stays within
// [1, MaxParticipants] for as long as the record exists; the record is
// deleted the moment the last participant leaves.
type Room struct {
	RoomID           string    `dynamodbav:"roomId" json:"roomId"`
	Name             string    `dynamodbav:"name" json:"name"`
	Category         string    `dynamodbav:"category" json:"category"`
	BgmURL           string    `dynamodbav:"bgmUrl,omitempty" json:"bgmUrl,omitempty"`
	ParticipantCount int       `dynamodbav:"participantCount" json:"participantCount"`
	MaxParticipants  int       `dynamodbav:"maxParticipants" json:"maxParticipants"`
	CreatedBy        string    `dynamodbav:"createdBy" json:"createdBy"`
	CreatedAt        time.Time `dynamodbav:"createdAt,unixtime" json:"createdAt"`
}

// RoomsTable is the DynamoDB table name for dining rooms
const RoomsTable = "Rooms"
