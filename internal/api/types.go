package api

import (
	"time"

	"github.com/slateboard/slateboard-go/internal/decode"
	"github.com/slateboard/slateboard-go/internal/model"
)

// Config holds API client configuration.
type Config struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
	RateLimitMS int
}

// DefaultConfig returns the default API client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "https://api.slateboard.app/v1",
		Timeout:     30 * time.Second,
		RateLimitMS: 100,
	}
}

// envelope carries the application-level result flag present on every
// response. A missing flag counts as success; an explicit false is a
// server-side rejection even on a 2xx transport.
type envelope struct {
	Success decode.FlexBoolPtr `json:"success"`
	Message decode.FlexString  `json:"message"`
}

func (e *envelope) rejected() bool {
	return e.Success.Value != nil && !*e.Success.Value
}

type projectResponse struct {
	envelope
	Project model.Project `json:"project"`
}

type creativesResponse struct {
	envelope
	Creatives []model.Creative `json:"creatives"`
	ProjectID decode.FlexString `json:"projectId"`
}

// FramesResult is the payload of a frames fetch.
type FramesResult struct {
	Frames    []model.Frame
	TagGroups []model.TagGroup
}

type framesResponse struct {
	envelope
	Frames    []model.Frame    `json:"frames"`
	TagGroups []model.TagGroup `json:"tagGroups"`
}

type statusResponse struct {
	envelope
	Frame *model.Frame `json:"frame"`
}

// BoardAction names a board mutation.
type BoardAction string

const (
	BoardRename  BoardAction = "rename"
	BoardDelete  BoardAction = "delete"
	BoardReorder BoardAction = "reorder"
	BoardPin     BoardAction = "pin"
)

// BoardUpdate describes one board mutation request. Name applies to
// rename, Order to reorder; Pinned to pin.
type BoardUpdate struct {
	Action  BoardAction `json:"action"`
	BoardID string      `json:"boardId,omitempty"`
	Name    string      `json:"name,omitempty"`
	Order   []string    `json:"order,omitempty"`
	Pinned  *bool       `json:"pinned,omitempty"`
}

// BoardResult is the payload of a board mutation. Boards is nil when the
// server did not echo the updated list.
type BoardResult struct {
	Boards        []model.FrameBoard
	MainBoardType string
	FrameID       string
}

type boardResponse struct {
	envelope
	Boards        []model.FrameBoard `json:"boards"`
	MainBoardType decode.FlexString  `json:"mainBoardType"`
	FrameID       decode.FlexString  `json:"frameId"`
}
