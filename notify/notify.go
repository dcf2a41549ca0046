// Package notify describes the events pushed to a user's real-time channel
// and the contract for delivering them.
package notify

import "fmt"

const (
	// Frame names sent over the socket.
	EventNotification   = "new_notification"
	EventReceiveMessage = "receive_message"

	KindMatch   = "MATCH"
	KindMessage = "MESSAGE"
)

// Frame is one server-to-client socket message.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Notification is the payload of a new_notification frame.
type Notification struct {
	Type   string `json:"type"`
	From   string `json:"from"`
	FromID string `json:"fromId,omitempty"`
	Sender string `json:"sender,omitempty"`
	Text   string `json:"text"`
}

// Publisher delivers a frame to every live connection joined to userID.
// Delivery is best effort: nobody listening is not an error, and Publish
// never blocks on slow connections.
type Publisher interface {
	Publish(userID string, frame Frame) int
}

func Match(fromID, fromName string) Frame {
	return Frame{
		Event: EventNotification,
		Data: Notification{
			Type:   KindMatch,
			From:   fromName,
			FromID: fromID,
			Text:   fmt.Sprintf("It's a Match! 💖 %s liked you back!", fromName),
		},
	}
}

func Message(senderID, senderName, text string) Frame {
	if senderName == "" {
		senderName = "A match"
	}
	return Frame{
		Event: EventNotification,
		Data: Notification{
			Type:   KindMessage,
			From:   senderName,
			Sender: senderID,
			Text:   text,
		},
	}
}

// Discard drops every frame.
type Discard struct{}

func (Discard) Publish(string, Frame) int { return 0 }
