package amqp

import (
	"encoding/json"
	"time"
)

// ChangeMessage is a lightweight entity change event. It carries only
// identifiers; consumers fetch current data from storage, so a stale or
// duplicated message is harmless.
type ChangeMessage struct {
	Entity    string    `json:"entity"` // transaction | fixed_expense | category
	Op        string    `json:"op"`     // created | updated | deleted
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage creates a change event stamped with the current time.
func NewChangeMessage(entity, op string, id, ownerID int64) *ChangeMessage {
	return &ChangeMessage{
		Entity:    entity,
		Op:        op,
		ID:        id,
		OwnerID:   ownerID,
		Timestamp: time.Now(),
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
