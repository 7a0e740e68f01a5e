// Package assets resolves the ordered list of visual assets available for
// a frame. Newer payloads carry a boards list; older ones carry single
// board/photoboard/preview/captureClip fields, and the two overlap when a
// server migrates photoboards into the boards list. Resolution merges both
// generations without double-counting.
package assets

import (
	"sort"
	"strings"

	"github.com/slateboard/slateboard-go/internal/model"
)

// Kind classifies a resolved asset. Photoboards fold into KindBoard; the
// older three-kind model is superseded.
type Kind string

const (
	KindBoard   Kind = "board"
	KindPreview Kind = "preview"
)

// Synthetic item ids for assets derived from legacy single-valued fields.
const (
	legacyBoardID      = "board-main"
	legacyPhotoboardID = "photoboard"
	previewID          = "preview"
)

// Item is a resolved, presentation-ready asset descriptor. It is derived
// on demand and never persisted.
type Item struct {
	ID       string
	Kind     Kind
	Label    string
	URL      string
	ThumbURL string
	IsVideo  bool
}

var videoExtensions = map[string]struct{}{
	"mp4": {}, "mov": {}, "m4v": {}, "webm": {}, "avi": {}, "mkv": {},
}

// isVideo infers whether an asset is a video from its file-type string or
// the URL extension.
func isVideo(fileType, url string) bool {
	if strings.HasPrefix(strings.ToLower(fileType), "video") {
		return true
	}
	trimmed := url
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if dot := strings.LastIndex(trimmed, "."); dot >= 0 {
		_, ok := videoExtensions[strings.ToLower(trimmed[dot+1:])]
		return ok
	}
	return false
}

// Available computes the ordered asset list for a frame. It is a pure
// function of the frame state.
func Available(frame *model.Frame) []Item {
	var items []Item

	boards := sortedBoards(frame.Boards)
	boardItems := make([]Item, 0, len(boards))
	for _, board := range boards {
		boardItems = append(boardItems, Item{
			ID:       board.ID,
			Kind:     KindBoard,
			Label:    board.Label,
			URL:      board.FileURL,
			ThumbURL: board.ThumbURL,
			IsVideo:  isVideo(board.FileType, board.FileURL),
		})
	}
	if len(boardItems) > 0 {
		items = append(items, boardItems...)
	} else if frame.BoardURL != "" || frame.BoardThumbURL != "" {
		items = append(items, Item{
			ID:       legacyBoardID,
			Kind:     KindBoard,
			URL:      frame.BoardURL,
			ThumbURL: frame.BoardThumbURL,
			IsVideo:  isVideo("", frame.BoardURL),
		})
	}

	// Append the legacy photoboard only when no board-list entry already
	// exposes the same asset; newer payloads migrate photoboards into the
	// boards list. Only boards-derived items count as migration targets.
	if frame.PhotoboardURL != "" || frame.PhotoboardThumbURL != "" {
		duplicate := false
		for _, item := range boardItems {
			if (frame.PhotoboardURL != "" && item.URL == frame.PhotoboardURL) ||
				(frame.PhotoboardThumbURL != "" && item.ThumbURL == frame.PhotoboardThumbURL) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			items = append(items, Item{
				ID:       legacyPhotoboardID,
				Kind:     KindBoard,
				Label:    "photoboard",
				URL:      frame.PhotoboardURL,
				ThumbURL: frame.PhotoboardThumbURL,
				IsVideo:  isVideo("", frame.PhotoboardURL),
			})
		}
	}

	if frame.PreviewURL != "" || frame.PreviewThumbURL != "" {
		items = append(items, Item{
			ID:       previewID,
			Kind:     KindPreview,
			URL:      frame.PreviewURL,
			ThumbURL: frame.PreviewThumbURL,
			IsVideo:  isVideo("", frame.PreviewURL),
		})
	} else if frame.CaptureClipURL != "" || frame.CaptureClipThumbURL != "" {
		items = append(items, Item{
			ID:       previewID,
			Kind:     KindPreview,
			URL:      frame.CaptureClipURL,
			ThumbURL: frame.CaptureClipThumbURL,
			IsVideo:  true,
		})
	}

	return items
}

// sortedBoards returns the boards ordered pinned-first, then by ascending
// order index. The input slice is not modified.
func sortedBoards(boards []model.FrameBoard) []model.FrameBoard {
	if len(boards) == 0 {
		return nil
	}
	sorted := make([]model.FrameBoard, len(boards))
	copy(sorted, boards)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Pinned != sorted[j].Pinned {
			return sorted[i].Pinned
		}
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}

// PrimaryBoard selects the primary board for a label: prefer pinned, else
// the lowest order index. Returns nil when no board carries the label.
func PrimaryBoard(frame *model.Frame, label string) *model.FrameBoard {
	var best *model.FrameBoard
	for i := range frame.Boards {
		board := &frame.Boards[i]
		if board.Label != label {
			continue
		}
		if best == nil {
			best = board
			continue
		}
		if board.Pinned != best.Pinned {
			if board.Pinned {
				best = board
			}
			continue
		}
		if board.Order < best.Order {
			best = board
		}
	}
	return best
}
