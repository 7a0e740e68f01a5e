// Package schedule normalizes the server's day-structured shooting plans.
// Schedule payloads have gone through several wire encodings over time:
// a direct item array, a JSON-string-encoded object (sometimes doubly
// encoded), and a "days" collection, occasionally nested one level deeper.
// Each historical shape gets one normalization path, composed via ordered
// fallback in Normalize, so call sites never sniff shapes themselves.
package schedule

import (
	"bytes"
	"encoding/json"

	"github.com/slateboard/slateboard-go/internal/decode"
)

// BlockType discriminates schedule block entries.
type BlockType string

const (
	// BlockTitle is a section header within a group.
	BlockTitle BlockType = "title"
	// BlockShot is a timed block referencing zero or more frames.
	BlockShot BlockType = "shot"
	// BlockUnknown marks an unrecognized block type, preserved opaquely.
	BlockUnknown BlockType = "unknown"
)

// Schedule is a fully normalized shooting plan. Items holds the ordered
// schedule days; Groups is populated either from the payload directly or
// hoisted from a sole single-day item.
type Schedule struct {
	ID        string          `json:"id"`
	Name      string          `json:"name,omitempty"`
	Date      string          `json:"date,omitempty"`
	StartTime string          `json:"startTime,omitempty"`
	Duration  int             `json:"duration,omitempty"`
	Location  string          `json:"location,omitempty"`
	Lat       *float64        `json:"lat,omitempty"`
	Lng       *float64        `json:"lng,omitempty"`
	Items     []ScheduleItem  `json:"schedules,omitempty"`
	Groups    []ScheduleGroup `json:"groups,omitempty"`
}

// ScheduleItem is one day of a schedule.
type ScheduleItem struct {
	ID        string          `json:"id"`
	Title     string          `json:"title,omitempty"`
	Date      string          `json:"date,omitempty"`
	StartTime string          `json:"startTime,omitempty"`
	Duration  int             `json:"duration,omitempty"`
	Groups    []ScheduleGroup `json:"groups,omitempty"`
}

// ScheduleGroup is an ordered run of blocks within a day.
type ScheduleGroup struct {
	ID     string          `json:"id"`
	Title  string          `json:"title,omitempty"`
	Blocks []ScheduleBlock `json:"blocks,omitempty"`
}

// ScheduleBlock is a discriminated union of title and shot entries.
// Storyboards holds frame ids as loose references; whether they resolve
// against the loaded frame set is decided at read time, never enforced
// here. Unknown block types keep their original payload in Raw.
type ScheduleBlock struct {
	ID              string
	Type            BlockType
	Title           string
	CalculatedStart string
	LockedStart     string
	Duration        int
	Description     string
	Color           string
	Storyboards     []string
	Raw             json.RawMessage
}

type scheduleItemWire struct {
	ID        decode.FlexString `json:"id"`
	Title     decode.FlexString `json:"title"`
	Date      decode.FlexString `json:"date"`
	StartTime decode.FlexString `json:"startTime"`
	Duration  decode.FlexInt    `json:"duration"`
	Groups    []ScheduleGroup   `json:"groups"`
}

func (s *ScheduleItem) UnmarshalJSON(data []byte) error {
	var wire scheduleItemWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*s = ScheduleItem{
		ID:        string(wire.ID),
		Title:     string(wire.Title),
		Date:      string(wire.Date),
		StartTime: string(wire.StartTime),
		Duration:  int(wire.Duration),
		Groups:    wire.Groups,
	}
	return nil
}

type scheduleGroupWire struct {
	ID     decode.FlexString `json:"id"`
	Title  decode.FlexString `json:"title"`
	Blocks []ScheduleBlock   `json:"blocks"`
}

func (g *ScheduleGroup) UnmarshalJSON(data []byte) error {
	var wire scheduleGroupWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*g = ScheduleGroup{
		ID:     string(wire.ID),
		Title:  string(wire.Title),
		Blocks: wire.Blocks,
	}
	return nil
}

type scheduleBlockWire struct {
	ID              decode.FlexString `json:"id"`
	Type            decode.FlexString `json:"type"`
	Title           decode.FlexString `json:"title"`
	CalculatedStart decode.FlexString `json:"calculatedStart"`
	LockedStart     decode.FlexString `json:"lockedStart"`
	Duration        decode.FlexInt    `json:"duration"`
	Description     decode.FlexString `json:"description"`
	Color           decode.FlexString `json:"color"`
	Storyboards     json.RawMessage   `json:"storyboards"`
}

func (b *ScheduleBlock) UnmarshalJSON(data []byte) error {
	var wire scheduleBlockWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	block := ScheduleBlock{
		ID:              string(wire.ID),
		Title:           string(wire.Title),
		CalculatedStart: string(wire.CalculatedStart),
		LockedStart:     string(wire.LockedStart),
		Duration:        int(wire.Duration),
		Description:     string(wire.Description),
		Color:           string(wire.Color),
		Storyboards:     idList(wire.Storyboards),
	}
	switch BlockType(wire.Type) {
	case BlockTitle:
		block.Type = BlockTitle
	case BlockShot:
		block.Type = BlockShot
	default:
		block.Type = BlockUnknown
		// Compact so decode/encode cycles keep Raw byte-stable; the
		// encoder compacts marshaler output anyway.
		var compacted bytes.Buffer
		if err := json.Compact(&compacted, data); err != nil {
			block.Raw = append(json.RawMessage(nil), data...)
		} else {
			block.Raw = append(json.RawMessage(nil), compacted.Bytes()...)
		}
	}
	*b = block
	return nil
}

type scheduleBlockOut struct {
	ID              string   `json:"id,omitempty"`
	Type            string   `json:"type"`
	Title           string   `json:"title,omitempty"`
	CalculatedStart string   `json:"calculatedStart,omitempty"`
	LockedStart     string   `json:"lockedStart,omitempty"`
	Duration        int      `json:"duration,omitempty"`
	Description     string   `json:"description,omitempty"`
	Color           string   `json:"color,omitempty"`
	Storyboards     []string `json:"storyboards,omitempty"`
}

// MarshalJSON round-trips unknown blocks byte-for-byte and emits known
// blocks in the current wire shape.
func (b ScheduleBlock) MarshalJSON() ([]byte, error) {
	if b.Type == BlockUnknown && len(b.Raw) > 0 {
		return b.Raw, nil
	}
	return json.Marshal(scheduleBlockOut{
		ID:              b.ID,
		Type:            string(b.Type),
		Title:           b.Title,
		CalculatedStart: b.CalculatedStart,
		LockedStart:     b.LockedStart,
		Duration:        b.Duration,
		Description:     b.Description,
		Color:           b.Color,
		Storyboards:     b.Storyboards,
	})
}

// idList coerces a storyboards value to a frame id list. Accepts an array
// of string or numeric ids, or a single bare id.
func idList(raw json.RawMessage) []string {
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err == nil {
		ids := make([]string, 0, len(elements))
		for _, element := range elements {
			if id := decode.StringPtr(element); id != nil && *id != "" {
				ids = append(ids, *id)
			}
		}
		if len(ids) == 0 {
			return nil
		}
		return ids
	}
	if id := decode.StringPtr(raw); id != nil && *id != "" {
		return []string{*id}
	}
	return nil
}

// FrameIDs returns every frame id referenced by the schedule's shot
// blocks, deduplicated, in schedule order. Ids are loose references and
// may not resolve against the loaded frame set.
func (s *Schedule) FrameIDs() []string {
	if s == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var ids []string
	collect := func(groups []ScheduleGroup) {
		for _, group := range groups {
			for _, block := range group.Blocks {
				if block.Type != BlockShot {
					continue
				}
				for _, id := range block.Storyboards {
					if _, ok := seen[id]; ok {
						continue
					}
					seen[id] = struct{}{}
					ids = append(ids, id)
				}
			}
		}
	}
	collect(s.Groups)
	for _, item := range s.Items {
		collect(item.Groups)
	}
	return ids
}

// Empty reports whether the schedule carries no days and no groups.
// A nil-item schedule is a valid empty-schedule state, not an error.
func (s *Schedule) Empty() bool {
	return s == nil || (len(s.Items) == 0 && len(s.Groups) == 0)
}
