package assets

import (
	"testing"

	"github.com/slateboard/slateboard-go/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailable_BoardsSortedPinnedThenOrder(t *testing.T) {
	frame := &model.Frame{
		ID: "f1",
		Boards: []model.FrameBoard{
			{ID: "b3", Label: "board", Order: 3},
			{ID: "b1", Label: "board", Order: 1},
			{ID: "b2", Label: "concept", Order: 2, Pinned: true},
		},
	}

	items := Available(frame)
	require.Len(t, items, 3)
	assert.Equal(t, "b2", items[0].ID)
	assert.Equal(t, "b1", items[1].ID)
	assert.Equal(t, "b3", items[2].ID)
	assert.Equal(t, KindBoard, items[0].Kind)
	assert.Equal(t, "concept", items[0].Label)

	// Input order untouched
	assert.Equal(t, "b3", frame.Boards[0].ID)
}

func TestAvailable_LegacySingleBoardSynthesized(t *testing.T) {
	frame := &model.Frame{
		ID:            "f1",
		BoardURL:      "https://cdn/main.jpg",
		BoardThumbURL: "https://cdn/main-thumb.jpg",
	}

	items := Available(frame)
	require.Len(t, items, 1)
	assert.Equal(t, "board-main", items[0].ID)
	assert.Equal(t, KindBoard, items[0].Kind)
	assert.Equal(t, "https://cdn/main.jpg", items[0].URL)
}

func TestAvailable_LegacyBoardIgnoredWhenBoardsPresent(t *testing.T) {
	frame := &model.Frame{
		ID:       "f1",
		Boards:   []model.FrameBoard{{ID: "b1", Order: 1, FileURL: "https://cdn/b1.jpg"}},
		BoardURL: "https://cdn/legacy.jpg",
	}

	items := Available(frame)
	require.Len(t, items, 1)
	assert.Equal(t, "b1", items[0].ID)
}

func TestAvailable_PhotoboardDeduplicatedAgainstBoards(t *testing.T) {
	frame := &model.Frame{
		ID: "f1",
		Boards: []model.FrameBoard{
			{ID: "b1", Label: "photoboard", Order: 1, FileURL: "https://cdn/pb.jpg", ThumbURL: "https://cdn/pb-t.jpg"},
		},
		PhotoboardURL:      "https://cdn/pb.jpg",
		PhotoboardThumbURL: "https://cdn/pb-t.jpg",
	}

	items := Available(frame)
	require.Len(t, items, 1)
	assert.Equal(t, "b1", items[0].ID)

	// No duplicate URLs between the synthetic photoboard and board items
	seen := map[string]int{}
	for _, item := range items {
		seen[item.URL]++
	}
	for url, count := range seen {
		assert.Equal(t, 1, count, "duplicate url %s", url)
	}
}

func TestAvailable_PhotoboardThumbMatchAloneDeduplicates(t *testing.T) {
	frame := &model.Frame{
		ID: "f1",
		Boards: []model.FrameBoard{
			{ID: "b1", Order: 1, FileURL: "https://cdn/other.jpg", ThumbURL: "https://cdn/pb-t.jpg"},
		},
		PhotoboardURL:      "https://cdn/pb.jpg",
		PhotoboardThumbURL: "https://cdn/pb-t.jpg",
	}

	items := Available(frame)
	require.Len(t, items, 1)
}

func TestAvailable_PhotoboardKeptAlongsideLegacyBoard(t *testing.T) {
	// Migration dedup only applies to boards-list entries; the synthetic
	// legacy board is a separate asset even when URLs collide.
	frame := &model.Frame{
		ID:            "f1",
		BoardURL:      "https://cdn/a.jpg",
		PhotoboardURL: "https://cdn/a.jpg",
	}

	items := Available(frame)
	require.Len(t, items, 2)
	assert.Equal(t, "board-main", items[0].ID)
	assert.Equal(t, "photoboard", items[1].ID)
}

func TestAvailable_DistinctPhotoboardAppended(t *testing.T) {
	frame := &model.Frame{
		ID:            "f1",
		Boards:        []model.FrameBoard{{ID: "b1", Order: 1, FileURL: "https://cdn/b1.jpg"}},
		PhotoboardURL: "https://cdn/pb.jpg",
	}

	items := Available(frame)
	require.Len(t, items, 2)
	assert.Equal(t, "photoboard", items[1].ID)
	assert.Equal(t, KindBoard, items[1].Kind)
}

func TestAvailable_PreviewAndCaptureClipFallback(t *testing.T) {
	frame := &model.Frame{
		ID:              "f1",
		PreviewURL:      "https://cdn/preview.mp4",
		PreviewThumbURL: "https://cdn/preview.jpg",
	}
	items := Available(frame)
	require.Len(t, items, 1)
	assert.Equal(t, KindPreview, items[0].Kind)
	assert.True(t, items[0].IsVideo)

	frame = &model.Frame{
		ID:                  "f1",
		CaptureClipURL:      "https://cdn/clip.mov",
		CaptureClipThumbURL: "https://cdn/clip.jpg",
	}
	items = Available(frame)
	require.Len(t, items, 1)
	assert.Equal(t, KindPreview, items[0].Kind)
	assert.Equal(t, "https://cdn/clip.mov", items[0].URL)
	assert.True(t, items[0].IsVideo)
}

func TestAvailable_Empty(t *testing.T) {
	assert.Empty(t, Available(&model.Frame{ID: "f1"}))
}

func TestIsVideoInference(t *testing.T) {
	assert.True(t, isVideo("video/mp4", ""))
	assert.True(t, isVideo("", "https://cdn/clip.MOV"))
	assert.True(t, isVideo("", "https://cdn/clip.mp4?sig=abc"))
	assert.False(t, isVideo("image/jpeg", "https://cdn/still.jpg"))
	assert.False(t, isVideo("", "https://cdn/still"))
}

func TestPriority_PromoteAndPrimary(t *testing.T) {
	frame := &model.Frame{
		ID:         "f1",
		Boards:     []model.FrameBoard{{ID: "b1", Order: 1, FileURL: "https://cdn/b1.jpg"}},
		PreviewURL: "https://cdn/preview.mp4",
	}

	p := NewPriority()

	// No hints: first available wins
	item, ok := p.Primary(frame)
	require.True(t, ok)
	assert.Equal(t, KindBoard, item.Kind)

	p.Promote("f1", KindPreview)
	item, ok = p.Primary(frame)
	require.True(t, ok)
	assert.Equal(t, KindPreview, item.Kind)

	// Promotion is front-insertion with dedup
	p.Promote("f1", KindBoard)
	p.Promote("f1", KindPreview)
	assert.Equal(t, []Kind{KindPreview, KindBoard}, p.Hints("f1"))

	// Hinted kind missing from the frame falls through to the next hint
	bare := &model.Frame{ID: "f2", BoardURL: "https://cdn/main.jpg"}
	p.Promote("f2", KindPreview)
	item, ok = p.Primary(bare)
	require.True(t, ok)
	assert.Equal(t, KindBoard, item.Kind)

	_, ok = p.Primary(&model.Frame{ID: "f3"})
	assert.False(t, ok)
}

func TestPrimaryBoard(t *testing.T) {
	frame := &model.Frame{
		Boards: []model.FrameBoard{
			{ID: "b1", Label: "photoboard", Order: 2},
			{ID: "b2", Label: "photoboard", Order: 1},
			{ID: "b3", Label: "photoboard", Order: 3, Pinned: true},
			{ID: "b4", Label: "concept", Order: 0},
		},
	}

	board := PrimaryBoard(frame, "photoboard")
	require.NotNil(t, board)
	assert.Equal(t, "b3", board.ID, "pinned wins over lower order")

	board = PrimaryBoard(frame, "concept")
	require.NotNil(t, board)
	assert.Equal(t, "b4", board.ID)

	assert.Nil(t, PrimaryBoard(frame, "missing"))
}
