package kafka

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("booking-1").
		WithValue(map[string]string{"template": "booking_confirmation"}).
		WithEventType("email.requested").
		WithSource("hotel").
		WithCorrelationID("req-42").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "booking-1", msg.Key)
	assert.NotEmpty(t, msg.GetEventID())
	assert.Equal(t, "email.requested", msg.GetEventType())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])
	assert.Equal(t, "req-42", msg.GetCorrelationID())

	var decoded map[string]string
	require.NoError(t, msg.DecodeValue(&decoded))
	assert.Equal(t, "booking_confirmation", decoded["template"])
}

func TestMessageBuilder_UnencodableValue(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.Error(t, err)
}

func TestMessageBuilder_SkipsEmptyCorrelationID(t *testing.T) {
	msg, err := NewMessage().WithKey("k").WithRawValue([]byte("{}")).WithCorrelationID("").Build()
	require.NoError(t, err)

	_, ok := msg.Headers[HeaderCorrelationID]
	assert.False(t, ok)
}

func TestRetryCount(t *testing.T) {
	msg := Message{}
	assert.Equal(t, 0, msg.GetRetryCount())

	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	assert.Equal(t, 12, msg.GetRetryCount())
	assert.Equal(t, "12", msg.Headers[HeaderRetryCount])
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"transient wrapper", NewTransientError("smtp", errors.New("boom")), ErrorTypeTransient},
		{"permanent wrapper", NewPermanentError("decode", errors.New("boom")), ErrorTypePermanent},
		{"wrapped transient", fmt.Errorf("send: %w", NewTransientError("smtp", nil)), ErrorTypeTransient},
		{"timeout text", errors.New("dial tcp: I/O Timeout"), ErrorTypeTransient},
		{"connection refused", errors.New("connection refused"), ErrorTypeTransient},
		{"unknown defaults to permanent", errors.New("something odd"), ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("smtp", nil)

	assert.True(t, ShouldRetry(transient, 0, 3))
	assert.False(t, ShouldRetry(transient, 3, 3))
	assert.False(t, ShouldRetry(NewPermanentError("bad", nil), 0, 3))
	assert.False(t, ShouldRetry(nil, 0, 3))
}
