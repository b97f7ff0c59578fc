package models

// Waiting entry statuses
const (
	StatusWaiting  = "waiting"
	StatusMatched  = "matched"
	StatusTimedOut = "timed_out"
)

// RoomMaxParticipants is the fixed capacity of a dining room.
const RoomMaxParticipants = 10
