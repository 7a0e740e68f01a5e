package schedule

import (
	"bytes"
	"encoding/json"

	"github.com/antonholmquist/jason"

	"github.com/slateboard/slateboard-go/internal/decode"
)

// Normalize decodes an ambiguous schedule payload into a Schedule. Item
// shapes are tried in order, first success wins:
//
//  1. a direct item array under "schedules"
//  2. a JSON-string value under "schedule", unwrapped at most twice to
//     cover double encoding, then re-tried as a container
//  3. an embedded object under "schedule", tried as a container
//  4. a bare "days" collection on the payload itself
//
// A container is {"schedules": [...]}, {"days": [...]} or a nested
// {"schedule": {"days": [...]}}. When every shape fails the result has
// nil Items, which callers treat the same as an empty schedule.
func Normalize(raw json.RawMessage) Schedule {
	var sched Schedule
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return sched
	}

	sched.ID = decode.String(fields["id"])
	sched.Name = decode.String(fields["name"])
	if sched.Name == "" {
		sched.Name = decode.String(fields["title"])
	}
	sched.Date = decode.String(fields["date"])
	sched.StartTime = decode.String(fields["startTime"])
	sched.Duration = decode.Int(fields["duration"])
	sched.Location = decode.String(fields["location"])
	sched.Lat = decode.FloatPtr(fields["lat"])
	sched.Lng = decode.FloatPtr(fields["lng"])

	if groups, ok := groupList(fields["groups"]); ok {
		sched.Groups = groups
	}
	sched.Items = resolveItems(fields)

	// Single-day server shortcut: hoist the sole item's groups.
	if len(sched.Groups) == 0 && len(sched.Items) == 1 && len(sched.Items[0].Groups) > 0 {
		sched.Groups = sched.Items[0].Groups
	}
	return sched
}

func resolveItems(fields map[string]json.RawMessage) []ScheduleItem {
	if items, ok := itemList(fields["schedules"]); ok {
		return items
	}
	if content, ok := unwrapEncoded(fields["schedule"]); ok {
		if items, ok := itemsFromContainer(content); ok {
			return items
		}
	}
	if present(fields["schedule"]) {
		if items, ok := itemsFromContainer(fields["schedule"]); ok {
			return items
		}
	}
	if items, ok := dayList(fields["days"]); ok {
		return items
	}
	return nil
}

// unwrapEncoded returns the JSON content of a string-encoded payload.
// The value itself is one unwrap; if the content is still a JSON string
// it is unwrapped once more, bounding the total at two.
func unwrapEncoded(raw json.RawMessage) ([]byte, bool) {
	value, err := jason.NewValueFromBytes(raw)
	if err != nil {
		return nil, false
	}
	str, err := value.String()
	if err != nil {
		return nil, false
	}

	content := []byte(str)
	if inner, err := jason.NewValueFromBytes(content); err == nil {
		if str, err := inner.String(); err == nil {
			content = []byte(str)
		}
	}
	return content, true
}

func itemsFromContainer(raw []byte) ([]ScheduleItem, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}
	if items, ok := itemList(fields["schedules"]); ok {
		return items, true
	}
	if items, ok := dayList(fields["days"]); ok {
		return items, true
	}
	if present(fields["schedule"]) {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(fields["schedule"], &nested); err == nil {
			if items, ok := dayList(nested["days"]); ok {
				return items, true
			}
		}
	}
	return nil, false
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func itemList(raw json.RawMessage) ([]ScheduleItem, bool) {
	if !present(raw) {
		return nil, false
	}
	var items []ScheduleItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

// dayList decodes a "days" collection. Days often arrive without ids, so
// the id falls back to the date, then the title, then a fixed placeholder.
func dayList(raw json.RawMessage) ([]ScheduleItem, bool) {
	items, ok := itemList(raw)
	if !ok {
		return nil, false
	}
	for i := range items {
		if items[i].ID != "" {
			continue
		}
		switch {
		case items[i].Date != "":
			items[i].ID = items[i].Date
		case items[i].Title != "":
			items[i].ID = items[i].Title
		default:
			items[i].ID = "Schedule Day"
		}
	}
	return items, true
}

func groupList(raw json.RawMessage) ([]ScheduleGroup, bool) {
	if !present(raw) {
		return nil, false
	}
	var groups []ScheduleGroup
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, false
	}
	return groups, true
}

// FromResponse extracts and normalizes the schedule matching scheduleID
// from a fetch response body. The server populates either the "schedule"
// or the "schedules" key; entries themselves may use any shape Normalize
// accepts. When no entry matches the requested id the first entry wins,
// and an undecodable body resolves to an empty schedule under the
// requested id.
func FromResponse(scheduleID string, body json.RawMessage) *Schedule {
	sched := fromResponse(scheduleID, body)
	if sched.ID == "" {
		sched.ID = scheduleID
	}
	return &sched
}

func fromResponse(scheduleID string, body json.RawMessage) Schedule {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Schedule{}
	}

	if present(fields["schedules"]) {
		var entries []json.RawMessage
		if err := json.Unmarshal(fields["schedules"], &entries); err == nil && len(entries) > 0 {
			first := Normalize(entries[0])
			if first.ID == scheduleID {
				return first
			}
			for _, entry := range entries[1:] {
				if sched := Normalize(entry); sched.ID == scheduleID {
					return sched
				}
			}
			return first
		}
	}

	// An embedded schedule object decodes directly; a string-encoded one
	// is handled by Normalize on the whole body via the "schedule" key.
	if present(fields["schedule"]) {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(fields["schedule"], &inner); err == nil {
			return Normalize(fields["schedule"])
		}
	}
	return Normalize(body)
}
