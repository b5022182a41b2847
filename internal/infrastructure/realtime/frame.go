package realtime

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"

	"bazaarlink/pkg/errors"
	"bazaarlink/pkg/logger"
)

var validate = validator.New()

// InboundFrame is the only frame clients may send over the realtime channel.
// The schema is strict: every field is required and unknown fields are
// rejected, not ignored.
type InboundFrame struct {
	SessionID  string `json:"sessionId" validate:"required"`
	SenderID   string `json:"senderId" validate:"required"`
	SenderRole string `json:"senderRole" validate:"required,oneof=ADMIN FREE SUPERUSER"`
	Content    string `json:"content" validate:"required"`
	IsRead     *bool  `json:"isRead" validate:"required"`
}

// DecodeInboundFrame parses one inbound frame strictly. Any missing, extra or
// mistyped field is a schema violation; nothing downstream runs on a frame
// that fails here.
func DecodeInboundFrame(payload []byte) (*InboundFrame, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()

	var frame InboundFrame
	if err := dec.Decode(&frame); err != nil {
		return nil, errors.SchemaViolation("Malformed message frame", err)
	}
	if dec.More() {
		return nil, errors.SchemaViolation("Trailing data after message frame", nil)
	}
	if err := validate.Struct(&frame); err != nil {
		return nil, errors.SchemaViolation("Invalid message frame", err)
	}

	return &frame, nil
}

// Envelope wraps every outbound push. Recipients must tolerate unknown fields;
// new fields may be added without a version bump.
type Envelope struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

const (
	EnvelopeMessage      = "message"
	EnvelopeAck          = "ack"
	EnvelopeNotification = "notification"
	EnvelopeError        = "error"
)

// MarshalEnvelope serializes one outbound envelope. Returns nil on a marshal
// failure, which callers treat as a skipped push.
func MarshalEnvelope(envType string, data interface{}) []byte {
	payload, err := json.Marshal(Envelope{
		Type:      envType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		logger.Error("Failed to marshal %s envelope: %v", envType, err)
		return nil
	}
	return payload
}
