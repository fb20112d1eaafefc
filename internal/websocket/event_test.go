package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"id":     1,
		"amount": "100.00",
	}

	before := time.Now()
	evt := NewEvent(EventTypeCreated, EntityTypeTransaction, payload)
	after := time.Now()

	assert.Equal(t, "transaction.created", evt.Type)
	assert.Equal(t, EntityTypeTransaction, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before) && !evt.Timestamp.After(after))
}

func TestEvent_JSON_Serialization(t *testing.T) {
	fixedTime := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	payload := map[string]interface{}{
		"id":     float64(1),
		"amount": "100.00",
	}

	evt := Event{
		Type:      "transaction.created",
		Entity:    EntityTypeTransaction,
		Payload:   payload,
		Timestamp: fixedTime,
	}

	data, err := json.Marshal(evt)
	require.NoError(t, err)

	var decoded Event
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, evt.Type, decoded.Type)
	assert.Equal(t, evt.Entity, decoded.Entity)
	assert.Equal(t, fixedTime.UTC(), decoded.Timestamp.UTC())

	decodedPayload, ok := decoded.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), decodedPayload["id"])
	assert.Equal(t, "100.00", decodedPayload["amount"])
}

func TestEventHelpers(t *testing.T) {
	tests := []struct {
		name   string
		build  func(interface{}) Event
		evType string
		entity EntityType
	}{
		{"transaction created", TransactionCreated, "transaction.created", EntityTypeTransaction},
		{"transaction updated", TransactionUpdated, "transaction.updated", EntityTypeTransaction},
		{"transaction deleted", TransactionDeleted, "transaction.deleted", EntityTypeTransaction},
		{"import completed", ImportCompleted, "import.completed", EntityTypeImport},
		{"account created", AccountCreated, "account.created", EntityTypeAccount},
		{"account updated", AccountUpdated, "account.updated", EntityTypeAccount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := tt.build(map[string]interface{}{"id": float64(7)})
			assert.Equal(t, tt.evType, evt.Type)
			assert.Equal(t, tt.entity, evt.Entity)
		})
	}
}

func TestEvent_ToJSON(t *testing.T) {
	evt := NewEvent(EventTypeCompleted, EntityTypeImport, map[string]interface{}{
		"imported": float64(12),
		"skipped":  float64(2),
	})

	data, err := evt.ToJSON()
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	var decoded map[string]interface{}
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, "import.completed", decoded["type"])
	assert.Equal(t, "import", decoded["entity"])
	assert.NotNil(t, decoded["payload"])
	assert.NotNil(t, decoded["timestamp"])
}
