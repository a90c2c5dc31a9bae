package amqp

import (
	"errors"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// ProcessFileMessage asks a worker to run the pipeline over a file.
type ProcessFileMessage struct {
	ID          uuid.UUID `json:"id" validate:"required"`
	Path        string    `json:"path" validate:"required"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewProcessFileMessage creates a message with a fresh ID.
func NewProcessFileMessage(path string) *ProcessFileMessage {
	return &ProcessFileMessage{
		ID:          uuid.New(),
		Path:        path,
		RequestedAt: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ProcessFileMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ProcessFileMessageFromJSON decodes a message. A message without a path is
// rejected.
func ProcessFileMessageFromJSON(data []byte) (*ProcessFileMessage, error) {
	var msg ProcessFileMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(msg.Path) == "" {
		return nil, errors.New("message has no path")
	}
	return &msg, nil
}
