package stream

import (
	"encoding/json"

	"github.com/slateboard/slateboard-go/internal/decode"
	"github.com/slateboard/slateboard-go/internal/errors"
	"github.com/slateboard/slateboard-go/internal/model"
)

// Notification names carried in the topic's last segment.
const (
	topicFrameStatus     = "frame-status-updated"
	topicScheduleChanged = "schedule-changed"
)

// statusNotification is a pushed frame status change. Collaborator
// clients are as loose with field representations as the API, so every
// field goes through the tolerant decoder. A missing or null status
// means the status was cleared.
type statusNotification struct {
	ProjectID string
	FrameID   string
	Status    model.FrameStatus
}

func parseStatusNotification(payload []byte) (statusNotification, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return statusNotification{}, errors.Newf("unparseable status notification: %w", err).
			Category(errors.CategoryDecode).
			Component("stream").
			Build()
	}

	notification := statusNotification{
		ProjectID: decode.String(fields["projectId"]),
		FrameID:   decode.String(fields["frameId"]),
		Status:    model.ParseStatus(decode.String(fields["status"])),
	}
	if notification.FrameID == "" {
		return statusNotification{}, errors.Newf("status notification carries no frame id").
			Category(errors.CategoryDecode).
			Component("stream").
			Build()
	}
	return notification, nil
}

// parseScheduleNotification extracts the schedule id from a pushed
// schedule-changed notification. Either "scheduleId" or "id" may carry
// it; an empty id means the active schedule was cleared.
func parseScheduleNotification(payload []byte) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return "", errors.Newf("unparseable schedule notification: %w", err).
			Category(errors.CategoryDecode).
			Component("stream").
			Build()
	}

	if id := decode.String(fields["scheduleId"]); id != "" {
		return id, nil
	}
	return decode.String(fields["id"]), nil
}
