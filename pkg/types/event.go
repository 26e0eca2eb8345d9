package types

import "time"

// ActionTag is the runtime event action emitted when an image reference is (re)tagged.
const ActionTag = "tag"

// TagEvent is a decoded runtime event.
//
// Only events whose Action is ActionTag trigger a reconciliation.
type TagEvent struct {
	Action         string
	ImageReference string // The "name" attribute, e.g. "myapp:latest".
	ActorID        string // Image ID the reference now points at.
	Time           time.Time
}

// IsTag reports whether the event is an image tag event.
func (e TagEvent) IsTag() bool {
	return e.Action == ActionTag
}
