package model

import (
	"encoding/json"

	"github.com/slateboard/slateboard-go/internal/decode"
)

// FrameBoard is one visual asset attached to a frame. Many boards may
// belong to one frame; the primary board for a label prefers pinned
// entries, then the lowest order index.
type FrameBoard struct {
	ID       string `json:"id"`
	Label    string `json:"name,omitempty"` // free-text board category, e.g. "photoboard"
	Order    int    `json:"order"`
	Pinned   bool   `json:"pinned,omitempty"`
	FileURL  string `json:"file,omitempty"`
	ThumbURL string `json:"thumbnail,omitempty"`
	FileName string `json:"fileName,omitempty"`
	FileType string `json:"fileType,omitempty"`
	FileSize int    `json:"fileSize,omitempty"`
	// Crop and Metadata are carried opaquely; the scout-camera overlay that
	// consumes Metadata lives outside this module.
	Crop     json.RawMessage `json:"crop,omitempty"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

type frameBoardWire struct {
	ID       decode.FlexString `json:"id"`
	Label    decode.FlexString `json:"name"`
	Order    decode.FlexInt    `json:"order"`
	Pinned   decode.FlexBool   `json:"pinned"`
	FileURL  decode.FlexString `json:"file"`
	ThumbURL decode.FlexString `json:"thumbnail"`
	FileName decode.FlexString `json:"fileName"`
	FileType decode.FlexString `json:"fileType"`
	FileSize decode.FlexInt    `json:"fileSize"`
	Crop     json.RawMessage   `json:"crop"`
	Metadata json.RawMessage   `json:"metadata"`
}

// UnmarshalJSON decodes a board tolerantly; malformed scalar fields fall
// back to their defaults instead of failing the record.
func (b *FrameBoard) UnmarshalJSON(data []byte) error {
	var wire frameBoardWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*b = FrameBoard{
		ID:       string(wire.ID),
		Label:    string(wire.Label),
		Order:    int(wire.Order),
		Pinned:   bool(wire.Pinned),
		FileURL:  string(wire.FileURL),
		ThumbURL: string(wire.ThumbURL),
		FileName: string(wire.FileName),
		FileType: string(wire.FileType),
		FileSize: int(wire.FileSize),
		Crop:     wire.Crop,
		Metadata: wire.Metadata,
	}
	return nil
}
