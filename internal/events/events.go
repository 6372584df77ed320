// Package events describes the domain notifications pushed to live feed
// subscribers.
package events

import "time"

type Type string

const (
	PostCreated    Type = "post.created"
	PostUpdated    Type = "post.updated"
	PostDeleted    Type = "post.deleted"
	PostRated      Type = "post.rated"
	CommentCreated Type = "comment.created"
	CommentDeleted Type = "comment.deleted"
)

type Event struct {
	Type      Type      `json:"type"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher delivers events without blocking the caller.
type Publisher interface {
	Publish(e Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(Event) {}

// New stamps an event with the current time.
func New(t Type, postID, userID string, data any) Event {
	return Event{Type: t, PostID: postID, UserID: userID, Data: data, Timestamp: time.Now().UTC()}
}
