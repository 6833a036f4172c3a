// Package notify builds engagement notification payloads. Notifications are
// returned inline in the triggering response only; nothing here persists or
// delivers them.
package notify

import "fmt"

// Event types that may produce a notification.
const (
	EventLike    = "like"
	EventComment = "comment"
)

// Notification is the payload handed back to the requester for display to
// the content owner.
type Notification struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	ActorName string `json:"actor_name"`
	ThreadID  uint   `json:"thread_id"`
}

// Build decides whether an engagement event should notify the content owner
// and builds the payload if so. Self-actions are suppressed: nil is returned
// when the actor owns the target.
func Build(event string, actorID uint, actorName string, ownerID, threadID uint, title string) *Notification {
	if ownerID == 0 || actorID == ownerID {
		return nil
	}

	var message string
	switch event {
	case EventLike:
		message = fmt.Sprintf("liked your thread %q", title)
	case EventComment:
		message = fmt.Sprintf("commented on your thread %q", title)
	default:
		return nil
	}

	return &Notification{
		Type:      event,
		Message:   message,
		ActorName: actorName,
		ThreadID:  threadID,
	}
}
