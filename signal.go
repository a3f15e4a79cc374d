package liveframe

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// clientMessage is one message from the browser client (internal protocol).
// Two shapes share it: completion signals for an in-flight attempt, and
// retry-control activations.
type clientMessage struct {
	Type      string `json:"type" validate:"required,oneof=signal retry"`
	Container string `json:"container" validate:"required"`
	Epoch     int    `json:"epoch" validate:"gte=0"`
	Event     string `json:"event" validate:"omitempty,oneof=load error"`
	Blocked   bool   `json:"blocked"`
	Snapshot  string `json:"snapshot"`
}

var messageValidator = validator.New()

// parseClientMessage decodes and validates one websocket payload
func parseClientMessage(data []byte) (*clientMessage, error) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	if err := messageValidator.Struct(&msg); err != nil {
		return nil, ValidationToMultiError(err)
	}

	if msg.Type == "signal" && msg.Event == "" {
		return nil, fmt.Errorf("signal message for %q missing event", msg.Container)
	}

	return &msg, nil
}
