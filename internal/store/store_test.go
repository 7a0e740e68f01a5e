package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slateboard/slateboard-go/internal/model"
)

func intPtr(v int) *int { return &v }

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, s.Close()) })
	return s
}

func TestStore_FrameRoundTrip(t *testing.T) {
	s := openTestStore(t)

	frames := []model.Frame{
		{
			ID:         "f1",
			CreativeID: "c1",
			Status:     model.StatusDone,
			Order:      intPtr(3),
			Tags:       []model.Tag{{ID: "t1", Name: "Night"}},
			Boards:     []model.FrameBoard{{ID: "b1", Label: "board", Order: 1, FileURL: "https://cdn/b1.jpg"}},
		},
		{ID: "f2", CreativeID: "c1", Hidden: true},
	}
	require.NoError(t, s.SaveFrames("p1", frames))

	loaded, err := s.LoadFrames("p1")
	require.NoError(t, err)
	assert.Equal(t, frames, loaded)
}

func TestStore_CreativeRoundTrip(t *testing.T) {
	s := openTestStore(t)

	creatives := []model.Creative{
		{ID: "c1", Title: "Opening", TotalFrames: 10, CompletedFrames: 4, RemainingFrames: 6},
	}
	require.NoError(t, s.SaveCreatives("p1", creatives))

	loaded, err := s.LoadCreatives("p1")
	require.NoError(t, err)
	assert.Equal(t, creatives, loaded)
}

func TestStore_MissingEntryIsNil(t *testing.T) {
	s := openTestStore(t)

	frames, err := s.LoadFrames("unknown")
	require.NoError(t, err)
	assert.Nil(t, frames)
}

func TestStore_SaveOverwrites(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveCreatives("p1", []model.Creative{{ID: "c1"}}))
	require.NoError(t, s.SaveCreatives("p1", []model.Creative{{ID: "c2"}}))

	loaded, err := s.LoadCreatives("p1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "c2", loaded[0].ID)
}

func TestStore_ProjectsIsolated(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveCreatives("p1", []model.Creative{{ID: "c1"}}))
	require.NoError(t, s.SaveCreatives("p2", []model.Creative{{ID: "c2"}}))
	require.NoError(t, s.Clear("p1"))

	gone, err := s.LoadCreatives("p1")
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := s.LoadCreatives("p2")
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "c2", kept[0].ID)
}

func TestStore_ClearAll(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveCreatives("p1", []model.Creative{{ID: "c1"}}))
	require.NoError(t, s.SaveFrames("p1", []model.Frame{{ID: "f1"}}))
	require.NoError(t, s.SaveFrames("p2", []model.Frame{{ID: "f2"}}))
	require.NoError(t, s.ClearAll())

	for _, projectID := range []string{"p1", "p2"} {
		frames, err := s.LoadFrames(projectID)
		require.NoError(t, err)
		assert.Nil(t, frames)
	}
}

func TestStore_EmptyProjectIDRejected(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.SaveFrames("", nil))
}
