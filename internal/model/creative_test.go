package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreative_UnmarshalJSON_StringAggregates(t *testing.T) {
	payload := `{
		"id": "c1",
		"title": "Opening",
		"order": "2",
		"archived": "no",
		"live": 1,
		"totalFrames": "12",
		"completedFrames": 5,
		"remainingFrames": "7"
	}`

	var creative Creative
	require.NoError(t, json.Unmarshal([]byte(payload), &creative))

	assert.Equal(t, "c1", creative.ID)
	assert.Equal(t, 2, creative.Order)
	assert.False(t, creative.Archived)
	assert.True(t, creative.Live)
	assert.Equal(t, 12, creative.TotalFrames)
	assert.Equal(t, 5, creative.CompletedFrames)
	assert.Equal(t, 7, creative.RemainingFrames)
}

func TestCreative_UnmarshalJSON_BackfillsRemaining(t *testing.T) {
	var creative Creative
	require.NoError(t, json.Unmarshal([]byte(`{"id":"c1","totalFrames":10,"completedFrames":4}`), &creative))
	assert.Equal(t, 6, creative.RemainingFrames)
}

func TestCreative_AggregateViolationTolerated(t *testing.T) {
	// The server aggregate is authoritative even when inconsistent.
	var creative Creative
	require.NoError(t, json.Unmarshal([]byte(`{"id":"c1","totalFrames":2,"completedFrames":5}`), &creative))
	assert.Equal(t, 2, creative.TotalFrames)
	assert.Equal(t, 5, creative.CompletedFrames)
}

func TestCreative_CacheRoundTrip(t *testing.T) {
	creative := Creative{
		ID:              "c1",
		Title:           "Opening",
		Order:           1,
		Live:            true,
		TotalFrames:     8,
		CompletedFrames: 3,
		RemainingFrames: 5,
	}

	data, err := json.Marshal(creative)
	require.NoError(t, err)

	var decoded Creative
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, creative, decoded)
}

func TestProject_UnmarshalJSON_ScheduleRefShapes(t *testing.T) {
	var project Project
	require.NoError(t, json.Unmarshal([]byte(`{"id":"p1","name":"Pilot","activeSchedule":{"id":"s1","name":"Day 4"}}`), &project))
	require.NotNil(t, project.ActiveSchedule)
	assert.Equal(t, "s1", project.ActiveScheduleID())
	assert.Equal(t, "Day 4", project.ActiveSchedule.Name)

	// Bare id form
	require.NoError(t, json.Unmarshal([]byte(`{"id":"p1","name":"Pilot","activeSchedule":"s2"}`), &project))
	assert.Equal(t, "s2", project.ActiveScheduleID())

	// Absent
	require.NoError(t, json.Unmarshal([]byte(`{"id":"p1","name":"Pilot"}`), &project))
	assert.Nil(t, project.ActiveSchedule)
	assert.Equal(t, "", project.ActiveScheduleID())
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, StatusDone, ParseStatus("done"))
	assert.Equal(t, StatusHere, ParseStatus("HERE"))
	assert.Equal(t, StatusNext, ParseStatus(" next "))
	assert.Equal(t, StatusOmit, ParseStatus("omit"))
	assert.Equal(t, StatusNone, ParseStatus("none"))
	assert.Equal(t, StatusNone, ParseStatus(""))
	assert.Equal(t, StatusNone, ParseStatus("bogus"))
}
