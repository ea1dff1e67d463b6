package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds published on the report export queue.
const (
	EventBudgetChanged    = "budget_changed"
	EventPortfolioUpdated = "portfolio_updated"
	EventGoalUpdated      = "goal_updated"
)

// EventMessage is a lightweight change notification. It carries only the
// event kind and the entity ID; the worker fetches fresh records from the
// database before exporting.
type EventMessage struct {
	Kind      string    `json:"kind"`
	EntityID  int64     `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEventMessage creates a change notification for one entity.
func NewEventMessage(kind string, entityID int64) *EventMessage {
	return &EventMessage{
		Kind:      kind,
		EntityID:  entityID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventMessageFromJSON creates a message from JSON bytes
func EventMessageFromJSON(data []byte) (*EventMessage, error) {
	var msg EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
