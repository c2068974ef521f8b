package nats

import (
	"encoding/json"
	"testing"
	"time"

	"councellorx-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_RoundTripsEnvelope(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	data, err := json.Marshal(events.ToEnvelope(events.BaseEvent{
		Type:       events.CaseAnalyzed,
		Data:       map[string]interface{}{"fallback": true},
		OccurredAt: at,
	}))
	require.NoError(t, err)

	ev, err := decode("events.CASE_ANALYZED", data)
	require.NoError(t, err)
	assert.Equal(t, events.CaseAnalyzed, ev.EventType())
	assert.Equal(t, true, ev.Payload()["fallback"])
	assert.True(t, at.Equal(ev.Timestamp()))
}

func TestDecode_TypeFallsBackToSubject(t *testing.T) {
	ev, err := decode("events.USER_LOGIN", []byte(`{"data":{"user_id":"x"}}`))
	require.NoError(t, err)
	assert.Equal(t, events.UserLogin, ev.EventType())

	_, err = decode("events.USER_LOGIN", []byte(`not json`))
	assert.Error(t, err)
}
