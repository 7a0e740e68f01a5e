// Package model defines the canonical domain entities the rest of the
// application operates on. Server payloads are inconsistent about field
// representation, so every entity decodes through a wire struct built on
// the tolerant coercion types in internal/decode; once decoded, values are
// always well-typed. Entities are treated as immutable: mutation helpers
// return a new value and callers replace the entry in the owning
// collection.
package model

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/slateboard/slateboard-go/internal/decode"
)

// Frame is a single shot/storyboard panel. It carries two independent
// order keys: Order for the narrative ("story") sequence and ShootOrder
// for the physical production sequence. A frame may be absent from one
// ordering (nil) while present in the other.
type Frame struct {
	ID         string `json:"id"`
	CreativeID string `json:"creativeId"`

	// Denormalized creative fields, cached for display and refreshed only
	// through explicit update calls.
	CreativeTitle  string `json:"creativeTitle,omitempty"`
	CreativeColor  string `json:"creativeColor,omitempty"`
	CreativeAspect string `json:"creativeAspectRatio,omitempty"`

	Description string `json:"description,omitempty"` // HTML-ish
	Caption     string `json:"caption,omitempty"`     // HTML-ish
	Notes       string `json:"notes,omitempty"`       // HTML-ish

	Status FrameStatus `json:"status,omitempty"`

	Order      *int `json:"frameOrder,omitempty"`
	ShootOrder *int `json:"frameShootOrder,omitempty"`

	Hidden         bool   `json:"isHidden,omitempty"`
	ScheduledStart string `json:"scheduledStartTime,omitempty"` // "HH:mm"

	Boards []FrameBoard `json:"boards,omitempty"`

	// Legacy single-valued asset fields, retained for backward
	// compatibility with payloads predating the boards list.
	BoardURL            string `json:"board,omitempty"`
	BoardThumbURL       string `json:"boardThumb,omitempty"`
	PhotoboardURL       string `json:"photoboard,omitempty"`
	PhotoboardThumbURL  string `json:"photoboardThumb,omitempty"`
	PreviewURL          string `json:"preview,omitempty"`
	PreviewThumbURL     string `json:"previewThumb,omitempty"`
	CaptureClipURL      string `json:"captureClip,omitempty"`
	CaptureClipThumbURL string `json:"captureClipThumbnail,omitempty"`

	Tags []Tag `json:"tags,omitempty"`
}

type frameWire struct {
	ID             decode.FlexString    `json:"id"`
	CreativeID     decode.FlexString    `json:"creativeId"`
	CreativeTitle  decode.FlexString    `json:"creativeTitle"`
	CreativeColor  decode.FlexString    `json:"creativeColor"`
	CreativeAspect decode.FlexString    `json:"creativeAspectRatio"`
	Description    decode.FlexString    `json:"description"`
	Caption        decode.FlexString    `json:"caption"`
	Notes          decode.FlexString    `json:"notes"`
	Status         decode.FlexStringPtr `json:"status"`
	Order          decode.FlexIntPtr    `json:"frameOrder"`
	ShootOrder     decode.FlexIntPtr    `json:"frameShootOrder"`
	Hidden         decode.FlexBool      `json:"isHidden"`
	ScheduledStart decode.FlexString    `json:"scheduledStartTime"`
	Boards         []FrameBoard         `json:"boards"`

	BoardURL            decode.FlexString `json:"board"`
	BoardThumbURL       decode.FlexString `json:"boardThumb"`
	PhotoboardURL       decode.FlexString `json:"photoboard"`
	PhotoboardThumbURL  decode.FlexString `json:"photoboardThumb"`
	PreviewURL          decode.FlexString `json:"preview"`
	PreviewThumbURL     decode.FlexString `json:"previewThumb"`
	CaptureClipURL      decode.FlexString `json:"captureClip"`
	CaptureClipThumbURL decode.FlexString `json:"captureClipThumbnail"`

	Tags decode.FlexTags `json:"tags"`
}

// UnmarshalJSON performs the tolerant decode of a frame payload. Scalar
// fields never fail; an error is returned only for unparseable top-level
// structure.
func (f *Frame) UnmarshalJSON(data []byte) error {
	var wire frameWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("frame payload: %w", err)
	}

	status := StatusNone
	if wire.Status.Value != nil {
		status = ParseStatus(*wire.Status.Value)
	}

	*f = Frame{
		ID:             string(wire.ID),
		CreativeID:     string(wire.CreativeID),
		CreativeTitle:  string(wire.CreativeTitle),
		CreativeColor:  string(wire.CreativeColor),
		CreativeAspect: string(wire.CreativeAspect),
		Description:    string(wire.Description),
		Caption:        string(wire.Caption),
		Notes:          string(wire.Notes),
		Status:         status,
		Order:          wire.Order.Value,
		ShootOrder:     wire.ShootOrder.Value,
		Hidden:         bool(wire.Hidden),
		ScheduledStart: string(wire.ScheduledStart),
		Boards:         wire.Boards,

		BoardURL:            string(wire.BoardURL),
		BoardThumbURL:       string(wire.BoardThumbURL),
		PhotoboardURL:       string(wire.PhotoboardURL),
		PhotoboardThumbURL:  string(wire.PhotoboardThumbURL),
		PreviewURL:          string(wire.PreviewURL),
		PreviewThumbURL:     string(wire.PreviewThumbURL),
		CaptureClipURL:      string(wire.CaptureClipURL),
		CaptureClipThumbURL: string(wire.CaptureClipThumbURL),

		Tags: TagsFromRaw(wire.Tags),
	}
	return nil
}

// ScheduledStartMinutes parses the "HH:mm" scheduled start into minutes
// since midnight. The second return value is false when the frame has no
// resolvable scheduled start time.
func (f *Frame) ScheduledStartMinutes() (int, bool) {
	s := f.ScheduledStart
	if len(s) != 5 || s[2] != ':' {
		return 0, false
	}
	hours, err := strconv.Atoi(s[:2])
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(s[3:])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}

// HasTag reports whether any of the frame's tags matches one of the given
// identity keys.
func (f *Frame) HasTag(keys map[string]struct{}) bool {
	for _, tag := range f.Tags {
		if _, ok := keys[tag.Key()]; ok {
			return true
		}
	}
	return false
}

// WithStatus returns a copy of the frame with the given status.
func (f Frame) WithStatus(status FrameStatus) Frame {
	f.Status = status
	return f
}

// WithBoards returns a copy of the frame with the given board list.
func (f Frame) WithBoards(boards []FrameBoard) Frame {
	f.Boards = boards
	return f
}

// WithDescription returns a copy of the frame with the given description.
func (f Frame) WithDescription(description string) Frame {
	f.Description = description
	return f
}

// WithCaption returns a copy of the frame with the given caption.
func (f Frame) WithCaption(caption string) Frame {
	f.Caption = caption
	return f
}

// WithCreativeInfo returns a copy of the frame with refreshed denormalized
// creative display fields.
func (f Frame) WithCreativeInfo(title, color, aspect string) Frame {
	f.CreativeTitle = title
	f.CreativeColor = color
	f.CreativeAspect = aspect
	return f
}
