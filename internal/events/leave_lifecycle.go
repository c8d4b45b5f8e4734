package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const LeaveLifecycleTopic = "leave.lifecycle.v1"

const LeaveAggregateType = "leave"

const (
	LeaveSubmitted = "leave.submitted"
	LeaveUpdated   = "leave.updated"
	LeaveDeleted   = "leave.deleted"
	LeaveApproved  = "leave.approved"
	LeaveRejected  = "leave.rejected"
)

// LeaveLifecycleEvent is published once per committed change to a leave request.
// FromStage is empty for submissions.
type LeaveLifecycleEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	LeaveID     string    `json:"leave_id"`
	RequesterID string    `json:"requester_id"`
	ActorID     string    `json:"actor_id"`
	FromStage   string    `json:"from_stage,omitempty"`
	ToStage     string    `json:"to_stage"`
	Comment     *string   `json:"comment,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func NewLeaveLifecycleEvent(eventType, leaveID, requesterID, actorID, from, to string, comment *string, at time.Time) LeaveLifecycleEvent {
	return LeaveLifecycleEvent{
		EventID:     uuid.NewString(),
		EventType:   eventType,
		LeaveID:     leaveID,
		RequesterID: requesterID,
		ActorID:     actorID,
		FromStage:   from,
		ToStage:     to,
		Comment:     comment,
		OccurredAt:  at.UTC(),
	}
}

func (e LeaveLifecycleEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func DecodeLeaveLifecycleEvent(data []byte) (LeaveLifecycleEvent, error) {
	var e LeaveLifecycleEvent
	err := json.Unmarshal(data, &e)
	return e, err
}

func IsKnownLeaveEvent(eventType string) bool {
	switch eventType {
	case LeaveSubmitted, LeaveUpdated, LeaveDeleted, LeaveApproved, LeaveRejected:
		return true
	}
	return false
}
