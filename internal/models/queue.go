package models

import (
	"encoding/json"
	"time"
)

// EntityType identifies which collection a queued mutation belongs to.
type EntityType string

const (
	EntityAffirmation EntityType = "affirmation"
	EntitySession     EntityType = "session"
	EntitySettings    EntityType = "settings"
)

// Action identifies the kind of queued mutation. Deletes do not exist in
// this domain.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
)

// QueueItem is a pending mutation awaiting remote application. Items are
// flushed in insertion order (Seq ascending) and removed only after the
// corresponding remote call succeeds.
type QueueItem struct {
	// Seq is the local autoincrement sequence preserving insertion order.
	// Zero until the item has been persisted.
	Seq int64 `json:"seq"`

	Type   EntityType `json:"type"`
	Action Action     `json:"action"`

	// Payload is the record as it stood when enqueued, serialized as JSON
	// with user_id stripped. The then-current user id is reattached at
	// flush time.
	Payload json.RawMessage `json:"payload"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewQueueItem serializes v (with any user_id cleared by the caller) into a
// pending mutation.
func NewQueueItem(t EntityType, action Action, v any, now time.Time) (QueueItem, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return QueueItem{}, err
	}
	return QueueItem{Type: t, Action: action, Payload: b, EnqueuedAt: now.UTC()}, nil
}
