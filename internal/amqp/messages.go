package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Action is the kind of write a MutationEvent reports.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

func (a Action) Valid() bool {
	switch a {
	case ActionCreated, ActionUpdated, ActionDeleted:
		return true
	}
	return false
}

// MutationEvent is a lightweight notice that a resource changed on the
// backend. It carries no entity data; consumers refetch what they need.
type MutationEvent struct {
	Resource  string    `json:"resource"`
	Action    Action    `json:"action"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMutationEvent stamps an event with the current time.
func NewMutationEvent(resource string, action Action, id int64) MutationEvent {
	return MutationEvent{
		Resource:  resource,
		Action:    action,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (m MutationEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MutationEventFromJSON decodes and validates an event.
func MutationEventFromJSON(data []byte) (*MutationEvent, error) {
	var msg MutationEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Resource == "" {
		return nil, fmt.Errorf("mutation event without resource")
	}
	if !msg.Action.Valid() {
		return nil, fmt.Errorf("unknown mutation action %q", msg.Action)
	}
	return &msg, nil
}
