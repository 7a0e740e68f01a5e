package sorting

import (
	"testing"

	"github.com/slateboard/slateboard-go/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func frameIDs(frames []model.Frame) []string {
	ids := make([]string, len(frames))
	for i := range frames {
		ids[i] = frames[i].ID
	}
	return ids
}

func TestSort_MirroredKeys(t *testing.T) {
	// Frame A: frameOrder=3, no shoot order. Frame B: shoot order 1, no
	// frame order. Story keys A=(3,+inf), B=(+inf,1); shoot keys are the
	// mirror image.
	frames := []model.Frame{
		{ID: "A", Order: intPtr(3)},
		{ID: "B", ShootOrder: intPtr(1)},
	}

	assert.Equal(t, []string{"A", "B"}, frameIDs(Sort(frames, Story)))
	assert.Equal(t, []string{"B", "A"}, frameIDs(Sort(frames, Shoot)))
}

func TestSort_TiebreakOnOtherKey(t *testing.T) {
	frames := []model.Frame{
		{ID: "x", Order: intPtr(1), ShootOrder: intPtr(9)},
		{ID: "y", Order: intPtr(1), ShootOrder: intPtr(2)},
		{ID: "z", Order: intPtr(0)},
	}

	assert.Equal(t, []string{"z", "y", "x"}, frameIDs(Sort(frames, Story)))
	assert.Equal(t, []string{"y", "x", "z"}, frameIDs(Sort(frames, Shoot)))
}

func TestSort_StableAndIdempotent(t *testing.T) {
	// Full-key ties keep input order; resorting yields the same sequence.
	frames := []model.Frame{
		{ID: "a"},
		{ID: "b"},
		{ID: "c", Order: intPtr(1)},
		{ID: "d"},
	}

	once := Sort(frames, Story)
	twice := Sort(once, Story)
	assert.Equal(t, []string{"c", "a", "b", "d"}, frameIDs(once))
	assert.Equal(t, frameIDs(once), frameIDs(twice))

	onceShoot := Sort(frames, Shoot)
	twiceShoot := Sort(onceShoot, Shoot)
	assert.Equal(t, frameIDs(onceShoot), frameIDs(twiceShoot))

	// Input slice untouched
	assert.Equal(t, []string{"a", "b", "c", "d"}, frameIDs(frames))
}

func TestFilter_Dimensions(t *testing.T) {
	frame := model.Frame{
		ID:         "f1",
		CreativeID: "c1",
		Tags:       []model.Tag{{Name: "Night"}},
	}

	// Empty filter passes everything
	assert.True(t, Filter{}.Matches(&frame))

	// OR within a dimension
	assert.True(t, Filter{CreativeIDs: map[string]struct{}{"c1": {}, "c2": {}}}.Matches(&frame))
	assert.False(t, Filter{CreativeIDs: map[string]struct{}{"c2": {}}}.Matches(&frame))

	// Tag identity falls back to lowercased name
	assert.True(t, Filter{TagKeys: map[string]struct{}{"night": {}}}.Matches(&frame))
	assert.False(t, Filter{TagKeys: map[string]struct{}{"day": {}}}.Matches(&frame))

	// AND across dimensions
	both := Filter{
		CreativeIDs: map[string]struct{}{"c1": {}},
		TagKeys:     map[string]struct{}{"day": {}},
	}
	assert.False(t, both.Matches(&frame))
}

func TestStoryPartition(t *testing.T) {
	creatives := []model.Creative{
		{ID: "c1", Title: "One"},
		{ID: "c2", Title: "Two"},
		{ID: "c3", Title: "Empty"},
	}
	frames := []model.Frame{
		{ID: "f2", CreativeID: "c1", Order: intPtr(2)},
		{ID: "f1", CreativeID: "c1", Order: intPtr(1), Hidden: true},
		{ID: "f3", CreativeID: "c2", Order: intPtr(1)},
	}

	groups := StoryPartition(creatives, frames, Filter{})
	require.Len(t, groups, 2)
	assert.Equal(t, "c1", groups[0].Creative.ID)
	// Hidden frames are retained in story mode
	assert.Equal(t, []string{"f1", "f2"}, frameIDs(groups[0].Frames))
	assert.Equal(t, []string{"f3"}, frameIDs(groups[1].Frames))

	filtered := StoryPartition(creatives, frames, Filter{CreativeIDs: map[string]struct{}{"c2": {}}})
	require.Len(t, filtered, 1)
	assert.Equal(t, "c2", filtered[0].Creative.ID)
}

func TestShootSequence_Exclusions(t *testing.T) {
	frames := []model.Frame{
		{ID: "visible", ShootOrder: intPtr(2), ScheduledStart: "09:00"},
		{ID: "hidden", ShootOrder: intPtr(1), Hidden: true, ScheduledStart: "08:00"},
		{ID: "unscheduled", ShootOrder: intPtr(3)},
		{ID: "badtime", ShootOrder: intPtr(4), ScheduledStart: "25:99"},
	}

	// No active schedule: only hidden frames are excluded
	noSchedule := ShootSequence(frames, Filter{}, false)
	assert.Equal(t, []string{"visible", "unscheduled", "badtime"}, frameIDs(noSchedule))

	// Active schedule: frames without a resolvable start time drop out too
	withSchedule := ShootSequence(frames, Filter{}, true)
	assert.Equal(t, []string{"visible"}, frameIDs(withSchedule))
}

func TestShootSequence_FlatMergeAcrossCreatives(t *testing.T) {
	frames := []model.Frame{
		{ID: "b1", CreativeID: "c2", ShootOrder: intPtr(1)},
		{ID: "a2", CreativeID: "c1", ShootOrder: intPtr(2)},
		{ID: "b3", CreativeID: "c2", ShootOrder: intPtr(3)},
	}

	sequence := ShootSequence(frames, Filter{}, false)
	assert.Equal(t, []string{"b1", "a2", "b3"}, frameIDs(sequence))
}

func TestCreativeProgress_UsesServerAggregates(t *testing.T) {
	creative := model.Creative{ID: "c1", TotalFrames: 10, CompletedFrames: 4}
	progress := CreativeProgress(&creative)
	assert.Equal(t, Progress{Done: 4, Total: 10}, progress)
}

func TestSubsetProgress_AsymmetricCounting(t *testing.T) {
	creatives := []model.Creative{
		// Aggregates include frames not loaded locally
		{ID: "c1", TotalFrames: 5, CompletedFrames: 3},
		{ID: "c2", TotalFrames: 4, CompletedFrames: 0},
	}
	frames := []model.Frame{
		{ID: "f1", CreativeID: "c1", Status: model.StatusDone},
		{ID: "f2", CreativeID: "c1"},
		{ID: "f3", CreativeID: "c2", Status: model.StatusDone},
	}

	progress := SubsetProgress(creatives, frames, Filter{})
	// Done from loaded frames, Total from summed aggregates
	assert.Equal(t, Progress{Done: 2, Total: 9}, progress)

	only1 := Filter{CreativeIDs: map[string]struct{}{"c1": {}}}
	progress = SubsetProgress(creatives, frames, only1)
	assert.Equal(t, Progress{Done: 1, Total: 5}, progress)
}
