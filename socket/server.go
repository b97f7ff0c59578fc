package socket

import (
	"log"

	"koshoku_server/models"
	"koshoku_server/services"

	socketio "github.com/googollee/go-socket.io"
)

func userChannel(userID string) string { return "user:" + userID }
func roomChannel(roomID string) string { return "room:" + roomID }

// NewSocketServer initializes the realtime server. Clients register their
// own user channel to receive matchFound pushes, and enter room channels by
// presenting the access token they got from joining the room.
func NewSocketServer(tokens *services.TokenService) *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(c socketio.Conn) error {
		log.Println("Socket connected:", c.ID())
		return nil
	})

	// Subscribe to the caller's own match notifications.
	server.OnEvent("/", "register", func(c socketio.Conn, userID string) string {
		if userID == "" {
			return "userId is required"
		}
		c.Join(userChannel(userID))
		return "ok"
	})

	// Enter a room channel; the token proves the caller went through
	// joinRoom for this room.
	server.OnEvent("/", "joinRoom", func(c socketio.Conn, token string) string {
		roomID, userID, err := tokens.Validate(token)
		if err != nil {
			log.Printf("Rejected room join from %s: %v", c.ID(), err)
			return "invalid token"
		}
		c.Join(roomChannel(roomID))
		server.BroadcastToRoom("/", roomChannel(roomID), "participantJoined", userID)
		return "ok"
	})

	server.OnEvent("/", "leaveRoom", func(c socketio.Conn, token string) string {
		roomID, userID, err := tokens.Validate(token)
		if err != nil {
			return "invalid token"
		}
		c.Leave(roomChannel(roomID))
		server.BroadcastToRoom("/", roomChannel(roomID), "participantLeft", userID)
		return "ok"
	})

	server.OnError("/", func(c socketio.Conn, err error) {
		log.Println("Socket error:", err)
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Println("Socket disconnected:", c.ID(), reason)
	})

	return server
}

// MatchAnnouncer pushes committed matches to both participants' user
// channels. Implements services.MatchNotifier.
type MatchAnnouncer struct {
	Server *socketio.Server
}

var _ services.MatchNotifier = (*MatchAnnouncer)(nil)

func (a *MatchAnnouncer) NotifyMatchFound(match models.Match, categories map[string]string) {
	for _, userID := range match.Participants {
		partnerCategory := ""
		for _, other := range match.Participants {
			if other != userID {
				partnerCategory = categories[other]
			}
		}
		a.Server.BroadcastToRoom("/", userChannel(userID), "matchFound", map[string]interface{}{
			"matchId":         match.MatchID,
			"isMiracleMatch":  match.IsMiracleMatch,
			"partnerCategory": partnerCategory,
		})
	}
}
