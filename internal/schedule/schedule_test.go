package schedule

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_DirectItemArray(t *testing.T) {
	payload := `{
		"id": "s1",
		"name": "Main Unit",
		"schedules": [
			{"id": "day1", "title": "Day 1", "groups": [
				{"id": "g1", "title": "Morning", "blocks": [
					{"id": "b1", "type": "title", "title": "Setup"},
					{"id": "b2", "type": "shot", "storyboards": ["f1", "f2"], "duration": 30}
				]}
			]},
			{"id": "day2", "title": "Day 2"}
		]
	}`

	sched := Normalize(json.RawMessage(payload))
	assert.Equal(t, "s1", sched.ID)
	assert.Equal(t, "Main Unit", sched.Name)
	require.Len(t, sched.Items, 2)
	assert.Equal(t, "day1", sched.Items[0].ID)

	require.Len(t, sched.Items[0].Groups, 1)
	blocks := sched.Items[0].Groups[0].Blocks
	require.Len(t, blocks, 2)
	assert.Equal(t, BlockTitle, blocks[0].Type)
	assert.Equal(t, BlockShot, blocks[1].Type)
	assert.Equal(t, []string{"f1", "f2"}, blocks[1].Storyboards)
	assert.Equal(t, 30, blocks[1].Duration)

	// Two items: no hoisting
	assert.Nil(t, sched.Groups)
}

func TestNormalize_StringEncodedDays(t *testing.T) {
	payload := `{"schedule": "{\"days\":[{\"id\":\"d1\",\"title\":\"Day 1\"}]}"}`

	sched := Normalize(json.RawMessage(payload))
	require.Len(t, sched.Items, 1)
	assert.Equal(t, "d1", sched.Items[0].ID)
	assert.Equal(t, "Day 1", sched.Items[0].Title)
}

func TestNormalize_DoubleEncodingMatchesSingle(t *testing.T) {
	inner := `{"days":[{"id":"d1","title":"Day 1","groups":[{"id":"g1","blocks":[{"type":"shot","storyboards":["f1"]}]}]}]}`

	once, err := json.Marshal(inner)
	require.NoError(t, err)
	twice, err := json.Marshal(string(once))
	require.NoError(t, err)

	single := Normalize(json.RawMessage(`{"schedule":` + string(once) + `}`))
	double := Normalize(json.RawMessage(`{"schedule":` + string(twice) + `}`))
	assert.Equal(t, single, double)
	require.Len(t, single.Items, 1)

	// Sole item carries groups: hoisted to the schedule level
	require.Len(t, single.Groups, 1)
	assert.Equal(t, []string{"f1"}, single.Groups[0].Blocks[0].Storyboards)
}

func TestNormalize_EmbeddedScheduleObject(t *testing.T) {
	payload := `{"id": "s1", "schedule": {"days": [{"date": "2026-03-01"}]}}`

	sched := Normalize(json.RawMessage(payload))
	require.Len(t, sched.Items, 1)
	// Day id falls back to the date
	assert.Equal(t, "2026-03-01", sched.Items[0].ID)
}

func TestNormalize_NestedScheduleContainer(t *testing.T) {
	payload := `{"schedule": "{\"schedule\":{\"days\":[{\"title\":\"Pickups\"}]}}"}`

	sched := Normalize(json.RawMessage(payload))
	require.Len(t, sched.Items, 1)
	assert.Equal(t, "Pickups", sched.Items[0].ID)
}

func TestNormalize_DayIDFallbackChain(t *testing.T) {
	payload := `{"days": [
		{"id": "d1", "date": "2026-03-01", "title": "Day 1"},
		{"date": "2026-03-02", "title": "Day 2"},
		{"title": "Day 3"},
		{}
	]}`

	sched := Normalize(json.RawMessage(payload))
	require.Len(t, sched.Items, 4)
	assert.Equal(t, "d1", sched.Items[0].ID)
	assert.Equal(t, "2026-03-02", sched.Items[1].ID)
	assert.Equal(t, "Day 3", sched.Items[2].ID)
	assert.Equal(t, "Schedule Day", sched.Items[3].ID)
}

func TestNormalize_NoShapeMatches(t *testing.T) {
	for _, payload := range []string{
		`{"id": "s1"}`,
		`{"id": "s1", "schedule": "not json at all"}`,
		`{"id": "s1", "schedules": "nope"}`,
		`{"id": "s1", "schedule": null}`,
		`[1, 2, 3]`,
		`garbage`,
	} {
		sched := Normalize(json.RawMessage(payload))
		assert.Nil(t, sched.Items, "payload %s", payload)
		assert.True(t, sched.Empty())
	}
}

func TestNormalize_ScalarCoercion(t *testing.T) {
	payload := `{"id": 42, "title": "Studio Day", "duration": "90", "lat": "51.5", "lng": -0.12}`

	sched := Normalize(json.RawMessage(payload))
	assert.Equal(t, "42", sched.ID)
	// "title" backfills a missing "name"
	assert.Equal(t, "Studio Day", sched.Name)
	assert.Equal(t, 90, sched.Duration)
	require.NotNil(t, sched.Lat)
	assert.InDelta(t, 51.5, *sched.Lat, 1e-9)
	require.NotNil(t, sched.Lng)
	assert.InDelta(t, -0.12, *sched.Lng, 1e-9)
}

func TestBlock_UnknownTypePreservedOpaquely(t *testing.T) {
	raw := `{"id":"b9","type":"lunch","minutes":45}`

	var block ScheduleBlock
	require.NoError(t, json.Unmarshal([]byte(raw), &block))
	assert.Equal(t, BlockUnknown, block.Type)
	assert.JSONEq(t, raw, string(block.Raw))

	// Round trip keeps the original payload byte-for-byte
	out, err := json.Marshal(block)
	require.NoError(t, err)
	assert.Equal(t, raw, string(out))
}

func TestBlock_UnknownRawStableAcrossRecodeCycles(t *testing.T) {
	// Whitespace in the incoming payload must not make successive
	// decode/encode cycles disagree, or cached schedules would never
	// compare equal to freshly normalized ones.
	spaced := `{ "id": "b9", "type": "craft", "note": "opaque" }`

	var first ScheduleBlock
	require.NoError(t, json.Unmarshal([]byte(spaced), &first))

	encoded, err := json.Marshal(first)
	require.NoError(t, err)

	var second ScheduleBlock
	require.NoError(t, json.Unmarshal(encoded, &second))
	assert.Equal(t, first, second)
	assert.JSONEq(t, spaced, string(second.Raw))
}

func TestBlock_StoryboardShapes(t *testing.T) {
	var block ScheduleBlock
	require.NoError(t, json.Unmarshal([]byte(`{"type":"shot","storyboards":["f1",2,null]}`), &block))
	assert.Equal(t, []string{"f1", "2"}, block.Storyboards)

	require.NoError(t, json.Unmarshal([]byte(`{"type":"shot","storyboards":"f1"}`), &block))
	assert.Equal(t, []string{"f1"}, block.Storyboards)

	require.NoError(t, json.Unmarshal([]byte(`{"type":"shot"}`), &block))
	assert.Nil(t, block.Storyboards)
}

func TestSchedule_CacheRoundTrip(t *testing.T) {
	payload := `{
		"id": "s1", "name": "Main", "duration": "60",
		"schedules": [{"id": "day1", "groups": [{"id": "g1", "blocks": [
			{"id": "b1", "type": "shot", "storyboards": ["f1"]},
			{"id": "b2", "type": "craft", "note": "opaque"}
		]}]}]
	}`

	sched := Normalize(json.RawMessage(payload))
	encoded, err := json.Marshal(sched)
	require.NoError(t, err)

	var decoded Schedule
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, sched, decoded)
}

func TestSchedule_FrameIDs(t *testing.T) {
	sched := &Schedule{
		Groups: []ScheduleGroup{{Blocks: []ScheduleBlock{
			{Type: BlockTitle, Storyboards: []string{"ignored"}},
			{Type: BlockShot, Storyboards: []string{"f1", "f2"}},
		}}},
		Items: []ScheduleItem{{Groups: []ScheduleGroup{{Blocks: []ScheduleBlock{
			{Type: BlockShot, Storyboards: []string{"f2", "f3"}},
		}}}}},
	}

	assert.Equal(t, []string{"f1", "f2", "f3"}, sched.FrameIDs())
	assert.Nil(t, (*Schedule)(nil).FrameIDs())
}

func TestFromResponse(t *testing.T) {
	t.Run("schedules array picks matching id", func(t *testing.T) {
		body := `{"schedules": [{"id": "s1", "name": "A"}, {"id": "s2", "name": "B"}]}`
		sched := FromResponse("s2", json.RawMessage(body))
		assert.Equal(t, "B", sched.Name)
	})

	t.Run("no matching id falls back to first entry", func(t *testing.T) {
		body := `{"schedules": [{"id": "s1", "name": "A"}]}`
		sched := FromResponse("s9", json.RawMessage(body))
		assert.Equal(t, "A", sched.Name)
	})

	t.Run("embedded schedule object", func(t *testing.T) {
		body := `{"schedule": {"id": "s1", "days": [{"id": "d1"}]}}`
		sched := FromResponse("s1", json.RawMessage(body))
		require.Len(t, sched.Items, 1)
		assert.Equal(t, "d1", sched.Items[0].ID)
	})

	t.Run("string-encoded schedule value", func(t *testing.T) {
		body := `{"schedule": "{\"days\":[{\"id\":\"d1\",\"title\":\"Day 1\"}]}"}`
		sched := FromResponse("s1", json.RawMessage(body))
		require.Len(t, sched.Items, 1)
		assert.Equal(t, "d1", sched.Items[0].ID)
		// Requested id is backfilled when the payload carries none
		assert.Equal(t, "s1", sched.ID)
	})

	t.Run("undecodable body resolves empty", func(t *testing.T) {
		sched := FromResponse("s1", json.RawMessage(`nonsense`))
		assert.Equal(t, "s1", sched.ID)
		assert.True(t, sched.Empty())
	})
}

func TestCache_ClearKeepsOnlyActive(t *testing.T) {
	cache := NewCache()
	for i := 0; i < 5; i++ {
		cache.Put(&Schedule{ID: "s" + strconv.Itoa(i)})
	}
	require.Equal(t, 5, cache.Len())

	cache.Clear("s3")
	assert.Equal(t, 1, cache.Len())
	_, found := cache.Get("s3")
	assert.True(t, found)

	// Keeping an absent id empties the cache
	cache.Clear("missing")
	assert.Equal(t, 0, cache.Len())

	// Schedules without an id are never cached
	cache.Put(&Schedule{})
	assert.Equal(t, 0, cache.Len())
}

type fetcherFunc func(ctx context.Context, scheduleID string) (json.RawMessage, error)

func (f fetcherFunc) FetchSchedule(ctx context.Context, scheduleID string) (json.RawMessage, error) {
	return f(ctx, scheduleID)
}

func TestResolver_CachesAndCoalesces(t *testing.T) {
	var calls atomic.Int32
	gate := make(chan struct{})
	fetcher := fetcherFunc(func(ctx context.Context, scheduleID string) (json.RawMessage, error) {
		calls.Add(1)
		<-gate
		return json.RawMessage(`{"schedule": {"id": "` + scheduleID + `", "days": [{"id": "d1"}]}}`), nil
	})

	resolver := NewResolver(fetcher)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sched, err := resolver.Resolve(context.Background(), "s1")
			assert.NoError(t, err)
			assert.Equal(t, "s1", sched.ID)
		}()
	}
	close(gate)
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load(), "concurrent resolves share one fetch")

	// Cached afterwards: no further fetches
	_, err := resolver.Resolve(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	cached, found := resolver.Cached("s1")
	require.True(t, found)
	assert.Equal(t, "s1", cached.ID)
}

func TestResolver_SetActiveEvicts(t *testing.T) {
	fetcher := fetcherFunc(func(ctx context.Context, scheduleID string) (json.RawMessage, error) {
		return json.RawMessage(`{"schedule": {"id": "` + scheduleID + `"}}`), nil
	})
	resolver := NewResolver(fetcher)

	for _, id := range []string{"s1", "s2", "s3"} {
		_, err := resolver.Resolve(context.Background(), id)
		require.NoError(t, err)
	}

	resolver.SetActive("s2")
	_, found := resolver.Cached("s1")
	assert.False(t, found)
	_, found = resolver.Cached("s2")
	assert.True(t, found)

	resolver.Reset()
	_, found = resolver.Cached("s2")
	assert.False(t, found)
}

func TestResolver_EmptyID(t *testing.T) {
	resolver := NewResolver(fetcherFunc(func(ctx context.Context, scheduleID string) (json.RawMessage, error) {
		t.Fatal("fetch must not run")
		return nil, nil
	}))

	_, err := resolver.Resolve(context.Background(), "")
	assert.Error(t, err)
}
