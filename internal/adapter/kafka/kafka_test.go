package kafka

import (
	"testing"
	"time"

	"github.com/couchcryptid/sensor-map-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2025, 8, 4, 11, 49, 56, 0, time.UTC)
	w := domain.TimeWindow{Start: 1754179200, End: 1754190000}
	event := domain.ChangeEvent{
		Kind:       domain.ChangeWindow,
		Window:     &w,
		OccurredAt: now,
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("window_changed"), msg.Key)
	assert.JSONEq(t, `{"kind":"window_changed","window":{"start":1754179200,"end":1754190000},"occurred_at":"2025-08-04T11:49:56Z"}`, string(msg.Value))
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "event_kind", msg.Headers[0].Key)
	assert.Equal(t, []byte("window_changed"), msg.Headers[0].Value)
	assert.Equal(t, "occurred_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeToMessage_RegionKey(t *testing.T) {
	msg, err := serializeToMessage(domain.ChangeEvent{Kind: domain.ChangeRegionDeleted, RegionID: "zone-1"})
	require.NoError(t, err)
	assert.Equal(t, []byte("zone-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"region_id":"zone-1"`)
}
