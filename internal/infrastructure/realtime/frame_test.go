package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bazaarlink/pkg/errors"
)

func TestDecodeInboundFrameValid(t *testing.T) {
	payload := []byte(`{"sessionId":"s1","senderId":"u1","senderRole":"FREE","content":"hello","isRead":false}`)

	frame, err := DecodeInboundFrame(payload)

	require.NoError(t, err)
	assert.Equal(t, "s1", frame.SessionID)
	assert.Equal(t, "u1", frame.SenderID)
	assert.Equal(t, "FREE", frame.SenderRole)
	assert.Equal(t, "hello", frame.Content)
	require.NotNil(t, frame.IsRead)
	assert.False(t, *frame.IsRead)
}

func TestDecodeInboundFrameMissingField(t *testing.T) {
	// senderRole absent
	payload := []byte(`{"sessionId":"s1","senderId":"u1","content":"hello","isRead":false}`)

	frame, err := DecodeInboundFrame(payload)

	assert.Nil(t, frame)
	assert.True(t, errors.Is(err, "SCHEMA_VIOLATION"))
}

func TestDecodeInboundFrameMissingIsRead(t *testing.T) {
	payload := []byte(`{"sessionId":"s1","senderId":"u1","senderRole":"FREE","content":"hello"}`)

	frame, err := DecodeInboundFrame(payload)

	assert.Nil(t, frame)
	assert.True(t, errors.Is(err, "SCHEMA_VIOLATION"))
}

func TestDecodeInboundFrameUnknownField(t *testing.T) {
	payload := []byte(`{"sessionId":"s1","senderId":"u1","senderRole":"FREE","content":"hello","isRead":false,"extra":1}`)

	frame, err := DecodeInboundFrame(payload)

	assert.Nil(t, frame)
	assert.True(t, errors.Is(err, "SCHEMA_VIOLATION"))
}

func TestDecodeInboundFrameMistypedField(t *testing.T) {
	payload := []byte(`{"sessionId":"s1","senderId":"u1","senderRole":"FREE","content":"hello","isRead":"yes"}`)

	frame, err := DecodeInboundFrame(payload)

	assert.Nil(t, frame)
	assert.True(t, errors.Is(err, "SCHEMA_VIOLATION"))
}

func TestDecodeInboundFrameInvalidRole(t *testing.T) {
	payload := []byte(`{"sessionId":"s1","senderId":"u1","senderRole":"ROOT","content":"hello","isRead":false}`)

	frame, err := DecodeInboundFrame(payload)

	assert.Nil(t, frame)
	assert.True(t, errors.Is(err, "SCHEMA_VIOLATION"))
}

func TestDecodeInboundFrameTrailingData(t *testing.T) {
	payload := []byte(`{"sessionId":"s1","senderId":"u1","senderRole":"FREE","content":"hello","isRead":false}{}`)

	frame, err := DecodeInboundFrame(payload)

	assert.Nil(t, frame)
	assert.True(t, errors.Is(err, "SCHEMA_VIOLATION"))
}

func TestDecodeInboundFrameMalformedJSON(t *testing.T) {
	frame, err := DecodeInboundFrame([]byte(`{"sessionId":`))

	assert.Nil(t, frame)
	assert.True(t, errors.Is(err, "SCHEMA_VIOLATION"))
}

func TestMarshalEnvelopeUnmarshalableData(t *testing.T) {
	payload := MarshalEnvelope(EnvelopeAck, map[string]interface{}{"ch": make(chan int)})

	assert.Nil(t, payload)
}

func TestMarshalEnvelope(t *testing.T) {
	payload := MarshalEnvelope(EnvelopeAck, map[string]string{"id": "m1"})
	require.NotNil(t, payload)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(payload, &envelope))
	assert.Equal(t, EnvelopeAck, envelope.Type)
	assert.NotEmpty(t, envelope.Timestamp)

	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "m1", data["id"])
}
