package session

import (
	"context"
	"time"

	"github.com/slateboard/slateboard-go/internal/api"
	"github.com/slateboard/slateboard-go/internal/errors"
	"github.com/slateboard/slateboard-go/internal/events"
	"github.com/slateboard/slateboard-go/internal/model"
)

// SetFrameStatus changes a frame's production status. The server update
// runs first; only on success is the local frame replaced and persisted,
// so a failed call leaves no local trace. When the server echoes the
// updated frame that echo wins, since it may carry other server-side
// recomputations; otherwise the requested status is applied to the
// existing local frame. Self-transitions still make the server call and
// complete normally.
func (s *Session) SetFrameStatus(ctx context.Context, frameID string, status model.FrameStatus) error {
	projectID, gen, err := s.identity()
	if err != nil {
		return err
	}
	if _, ok := s.Frame(frameID); !ok {
		return errors.Newf("frame %s is not loaded", frameID).
			Category(errors.CategoryNotFound).
			Component("session").
			Build()
	}

	echo, err := s.backend.UpdateFrameStatus(ctx, projectID, frameID, status)
	if err != nil {
		return s.checkAuth(err)
	}

	return s.applyStatus(projectID, gen, frameID, status, echo, events.OriginLocal)
}

// ApplyRemoteStatus applies a status change announced by the event
// stream. It flows through the same apply path as a local change, tagged
// remote-origin, so consumers can tell collaborator updates apart from
// the user's own actions. Changes for other projects or unknown frames
// are ignored.
func (s *Session) ApplyRemoteStatus(projectID, frameID string, status model.FrameStatus) {
	current, gen, err := s.identity()
	if err != nil || current != projectID {
		return
	}
	if err := s.applyStatus(projectID, gen, frameID, status, nil, events.OriginRemote); err != nil {
		s.log.Debug("remote status change ignored",
			"project", projectID,
			"frame", frameID,
			"error", err)
	}
}

// applyStatus replaces one frame atomically and persists the new list.
func (s *Session) applyStatus(projectID string, gen uint64, frameID string, status model.FrameStatus, echo *model.Frame, origin events.Origin) error {
	s.mu.Lock()
	if !s.matches(projectID, gen) {
		s.mu.Unlock()
		return errors.Newf("session changed during status update").
			Category(errors.CategoryState).
			Component("session").
			Build()
	}
	i, ok := s.frameIndex[frameID]
	if !ok {
		s.mu.Unlock()
		return errors.Newf("frame %s is not loaded", frameID).
			Category(errors.CategoryNotFound).
			Component("session").
			Build()
	}

	if echo != nil && echo.ID == frameID {
		s.frames[i] = *echo
	} else {
		s.frames[i] = s.frames[i].WithStatus(status)
	}
	applied := s.frames[i].Status
	frames := append([]model.Frame(nil), s.frames...)
	s.mu.Unlock()

	s.persistFrames(projectID, frames)
	s.publish(events.FrameStatusEvent{
		ProjectID: projectID,
		FrameID:   frameID,
		Status:    applied,
		Source:    origin,
		Timestamp: time.Now(),
	})
	return nil
}

// UpdateBoard applies a board mutation server-first. When the server
// echoes the updated board list it replaces the frame's boards in place;
// otherwise the frame list is refetched, since reorder and delete results
// cannot be reconstructed locally.
func (s *Session) UpdateBoard(ctx context.Context, frameID string, update api.BoardUpdate) error {
	projectID, gen, err := s.identity()
	if err != nil {
		return err
	}
	if _, ok := s.Frame(frameID); !ok {
		return errors.Newf("frame %s is not loaded", frameID).
			Category(errors.CategoryNotFound).
			Component("session").
			Build()
	}

	result, err := s.backend.UpdateBoard(ctx, projectID, frameID, update)
	if err != nil {
		return s.checkAuth(err)
	}

	if result == nil || result.Boards == nil {
		return s.RefreshFrames(ctx)
	}

	s.mu.Lock()
	if !s.matches(projectID, gen) {
		s.mu.Unlock()
		return errors.Newf("session changed during board update").
			Category(errors.CategoryState).
			Component("session").
			Build()
	}
	i, ok := s.frameIndex[frameID]
	if !ok {
		s.mu.Unlock()
		return errors.Newf("frame %s is not loaded", frameID).
			Category(errors.CategoryNotFound).
			Component("session").
			Build()
	}
	s.frames[i] = s.frames[i].WithBoards(result.Boards)
	frames := append([]model.Frame(nil), s.frames...)
	s.mu.Unlock()

	s.persistFrames(projectID, frames)
	s.publish(events.FramesReloadedEvent{
		ProjectID: projectID,
		Count:     len(frames),
		Source:    events.OriginLocal,
		Timestamp: time.Now(),
	})
	return nil
}
