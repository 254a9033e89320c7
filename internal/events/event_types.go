package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPostCreated   EventType = "post_created"
	EventPostUpdated   EventType = "post_updated"
	EventPostPublished EventType = "post_published"
	EventPostDeleted   EventType = "post_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	PostID    int64       `json:"post_id"`
	ActorID   int64       `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// PostCreatedPayload payload.
type PostCreatedPayload struct {
	Title     string `json:"title"`
	Published bool   `json:"published"`
}

// PostUpdatedPayload payload.
type PostUpdatedPayload struct {
	Title     string `json:"title"`
	Published bool   `json:"published"`
}

// PostPublishedPayload payload.
type PostPublishedPayload struct {
	Title string `json:"title"`
}

// PostDeletedPayload payload.
type PostDeletedPayload struct {
	Title string `json:"title"`
}
