package model

import (
	"encoding/json"
	"fmt"

	"github.com/slateboard/slateboard-go/internal/decode"
)

// ScheduleRef is the lightweight active-schedule reference carried on a
// project. Full schedule detail must be resolved against the schedule
// cache or refetched by id.
type ScheduleRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Project is the top-level container. Fetched once per session, refreshed
// on demand, cleared on logout.
type Project struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	ActiveSchedule *ScheduleRef `json:"activeSchedule,omitempty"`
}

type projectWire struct {
	ID             decode.FlexString `json:"id"`
	Name           decode.FlexString `json:"name"`
	ActiveSchedule json.RawMessage   `json:"activeSchedule"`
}

// UnmarshalJSON decodes a project tolerantly. The active schedule arrives
// either as an object with id/name or as a bare schedule id.
func (p *Project) UnmarshalJSON(data []byte) error {
	var wire projectWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("project payload: %w", err)
	}

	*p = Project{
		ID:   string(wire.ID),
		Name: string(wire.Name),
	}

	if len(wire.ActiveSchedule) > 0 {
		var ref struct {
			ID   decode.FlexString `json:"id"`
			Name decode.FlexString `json:"name"`
		}
		if err := json.Unmarshal(wire.ActiveSchedule, &ref); err == nil && ref.ID != "" {
			p.ActiveSchedule = &ScheduleRef{ID: string(ref.ID), Name: string(ref.Name)}
		} else if id := decode.String(wire.ActiveSchedule); id != "" {
			p.ActiveSchedule = &ScheduleRef{ID: id}
		}
	}
	return nil
}

// ActiveScheduleID returns the active schedule id, or "" when none is set.
func (p *Project) ActiveScheduleID() string {
	if p == nil || p.ActiveSchedule == nil {
		return ""
	}
	return p.ActiveSchedule.ID
}
