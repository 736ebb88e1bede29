package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestNewCloudEvent(t *testing.T) {
	ce, err := NewCloudEvent("service-catalog", "catalog.batch_published", samplePayload{Name: "x", Count: 3})
	require.NoError(t, err)
	assert.NotEmpty(t, ce.ID)
	assert.Equal(t, "service-catalog", ce.Source)
	assert.Equal(t, "catalog.batch_published", ce.Type)
	assert.WithinDuration(t, time.Now().UTC(), ce.Time, time.Second)
}

func TestParseCloudEvent_RoundTrip(t *testing.T) {
	ce, err := NewCloudEvent("service-catalog", "tracking.recorded", samplePayload{Name: "y", Count: 7})
	require.NoError(t, err)

	raw := []byte(`{"id":"` + ce.ID + `","source":"service-catalog","type":"tracking.recorded","data":{"name":"y","count":7}}`)
	parsed, err := ParseCloudEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, ce.ID, parsed.ID)

	var payload samplePayload
	require.NoError(t, parsed.ParseData(&payload))
	assert.Equal(t, "y", payload.Name)
	assert.Equal(t, 7, payload.Count)
}

func TestParseCloudEvent_RejectsMissingType(t *testing.T) {
	_, err := ParseCloudEvent([]byte(`{"id":"abc","source":"x","data":{}}`))
	assert.Error(t, err)

	_, err = ParseCloudEvent([]byte(`not json`))
	assert.Error(t, err)
}
