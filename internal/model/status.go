package model

import "strings"

// FrameStatus is a frame's production status. Exactly one status is active
// per frame at a time. The zero value means unset; it is serialized as an
// absent field, never as the literal string "none".
type FrameStatus string

const (
	StatusNone FrameStatus = ""     // unset
	StatusDone FrameStatus = "done" // shot completed
	StatusHere FrameStatus = "here" // being filmed right now
	StatusNext FrameStatus = "next" // up next
	StatusOmit FrameStatus = "omit" // skipped
)

// ParseStatus maps a server status string to a FrameStatus. Unknown values
// and the literal "none" both map to StatusNone.
func ParseStatus(s string) FrameStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "done":
		return StatusDone
	case "here":
		return StatusHere
	case "next":
		return StatusNext
	case "omit":
		return StatusOmit
	default:
		return StatusNone
	}
}

// IsSet reports whether the status is anything other than unset.
func (s FrameStatus) IsSet() bool {
	return s != StatusNone
}

// String returns the wire value, "none" for the unset status. Use only for
// display; serialization must emit an absent field instead.
func (s FrameStatus) String() string {
	if s == StatusNone {
		return "none"
	}
	return string(s)
}
