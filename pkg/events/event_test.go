package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeCarriesTypeAndTime(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	evt := BaseEvent{Type: SummaryCompleted, Data: map[string]interface{}{"jobId": "abc"}, OccurredAt: at}

	raw, err := json.Marshal(ToEnvelope(evt))
	require.NoError(t, err)

	var decoded Envelope
	require.NoError(t, json.Unmarshal(raw, &decoded))

	back := decoded.Event()
	assert.Equal(t, SummaryCompleted, back.EventType())
	assert.True(t, at.Equal(back.Timestamp()))
	assert.Equal(t, "abc", back.Payload()["jobId"])
}
