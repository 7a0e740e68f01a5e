package model

import (
	"encoding/json"
	"fmt"

	"github.com/slateboard/slateboard-go/internal/decode"
)

// Creative is a scene/sequence grouping of frames. The frame count
// aggregates are server-computed and may intentionally diverge from the
// locally loaded frame set (archived or unloaded frames); they are never
// recomputed client-side, and the totalFrames >= completedFrames >= 0
// invariant is tolerated rather than corrected when violated.
type Creative struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Order           int    `json:"order"`
	Archived        bool   `json:"archived,omitempty"`
	Live            bool   `json:"live,omitempty"`
	TotalFrames     int    `json:"totalFrames"`
	CompletedFrames int    `json:"completedFrames"`
	RemainingFrames int    `json:"remainingFrames"`
}

type creativeWire struct {
	ID              decode.FlexString `json:"id"`
	Title           decode.FlexString `json:"title"`
	Order           decode.FlexInt    `json:"order"`
	Archived        decode.FlexBool   `json:"archived"`
	Live            decode.FlexBool   `json:"live"`
	TotalFrames     decode.FlexInt    `json:"totalFrames"`
	CompletedFrames decode.FlexInt    `json:"completedFrames"`
	RemainingFrames decode.FlexIntPtr `json:"remainingFrames"`
}

// UnmarshalJSON decodes a creative tolerantly. A missing remainingFrames
// is back-filled from the other aggregates.
func (c *Creative) UnmarshalJSON(data []byte) error {
	var wire creativeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("creative payload: %w", err)
	}

	remaining := int(wire.TotalFrames) - int(wire.CompletedFrames)
	if wire.RemainingFrames.Value != nil {
		remaining = *wire.RemainingFrames.Value
	}

	*c = Creative{
		ID:              string(wire.ID),
		Title:           string(wire.Title),
		Order:           int(wire.Order),
		Archived:        bool(wire.Archived),
		Live:            bool(wire.Live),
		TotalFrames:     int(wire.TotalFrames),
		CompletedFrames: int(wire.CompletedFrames),
		RemainingFrames: remaining,
	}
	return nil
}
