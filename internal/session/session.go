// Package session owns the in-memory domain state for one signed-in
// project: the creative list, the frame list and the resolved schedule.
// All mutation happens under one writer lock and every completion of an
// awaited network call re-checks the session identity before applying,
// so a late response from before a logout or project switch can never
// repopulate state. Duplicate concurrent fetches for the same resource
// are coalesced into one network call.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/slateboard/slateboard-go/internal/api"
	"github.com/slateboard/slateboard-go/internal/assets"
	"github.com/slateboard/slateboard-go/internal/errors"
	"github.com/slateboard/slateboard-go/internal/events"
	"github.com/slateboard/slateboard-go/internal/logging"
	"github.com/slateboard/slateboard-go/internal/model"
	"github.com/slateboard/slateboard-go/internal/schedule"
	"github.com/slateboard/slateboard-go/internal/sorting"
	"github.com/slateboard/slateboard-go/internal/store"
)

// Backend abstracts the remote API consumed by the session.
type Backend interface {
	FetchProject(ctx context.Context, projectID string) (*model.Project, error)
	FetchCreatives(ctx context.Context, projectID string, pullAll bool) ([]model.Creative, error)
	FetchFrames(ctx context.Context, projectID string) (*api.FramesResult, error)
	UpdateFrameStatus(ctx context.Context, projectID, frameID string, status model.FrameStatus) (*model.Frame, error)
	UpdateBoard(ctx context.Context, projectID, frameID string, update api.BoardUpdate) (*api.BoardResult, error)
	FetchSchedule(ctx context.Context, scheduleID string) (json.RawMessage, error)
}

// Config holds optional session collaborators. Store and Bus may be nil;
// the session then runs without persistence or notifications.
type Config struct {
	Store *store.Store
	Bus   *events.Bus
}

// Session is the single logical owner of the loaded domain model.
type Session struct {
	backend    Backend
	store      *store.Store
	bus        *events.Bus
	schedules  *schedule.Resolver
	priorities *assets.Priority
	flight     singleflight.Group
	log        *slog.Logger

	mu         sync.RWMutex
	generation uint64
	project    *model.Project
	creatives  []model.Creative
	frames     []model.Frame
	frameIndex map[string]int
	tagGroups  []model.TagGroup
}

// New creates a session over the given backend.
func New(backend Backend, cfg Config) *Session {
	return &Session{
		backend:    backend,
		store:      cfg.Store,
		bus:        cfg.Bus,
		schedules:  schedule.NewResolver(backend),
		priorities: assets.NewPriority(),
		frameIndex: make(map[string]int),
		log:        logging.ForService("session"),
	}
}

// Open loads the project and becomes its session. Cached creative and
// frame lists are hydrated first so callers have data while the network
// refresh runs; the refresh itself is explicit via RefreshCreatives and
// RefreshFrames.
func (s *Session) Open(ctx context.Context, projectID string) error {
	if projectID == "" {
		return errors.Newf("project id is empty").
			Category(errors.CategoryValidation).
			Component("session").
			Build()
	}

	project, err := s.backend.FetchProject(ctx, projectID)
	if err != nil {
		return s.checkAuth(err)
	}

	var creatives []model.Creative
	var frames []model.Frame
	if s.store != nil {
		if creatives, err = s.store.LoadCreatives(projectID); err != nil {
			s.log.Warn("cached creatives unreadable", "project", projectID, "error", err)
			creatives = nil
		}
		if frames, err = s.store.LoadFrames(projectID); err != nil {
			s.log.Warn("cached frames unreadable", "project", projectID, "error", err)
			frames = nil
		}
	}

	s.mu.Lock()
	s.generation++
	s.project = project
	s.creatives = creatives
	s.frames = frames
	s.frameIndex = buildFrameIndex(frames)
	s.tagGroups = nil
	s.mu.Unlock()

	s.schedules.SetActive(project.ActiveScheduleID())
	s.log.Info("session opened",
		"project", projectID,
		"cached_creatives", len(creatives),
		"cached_frames", len(frames))
	return nil
}

// Logout synchronously clears all in-memory and persisted state. Any
// network call still in flight finds the generation changed and drops
// its result.
func (s *Session) Logout() {
	s.mu.Lock()
	s.generation++
	s.project = nil
	s.creatives = nil
	s.frames = nil
	s.frameIndex = make(map[string]int)
	s.tagGroups = nil
	s.mu.Unlock()

	s.priorities.Clear()
	s.schedules.Reset()
	if s.store != nil {
		if err := s.store.ClearAll(); err != nil {
			s.log.Warn("failed to clear persisted cache on logout", "error", err)
		}
	}
	s.log.Info("session logged out")
}

// Project returns the loaded project, or nil when signed out.
func (s *Session) Project() *model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.project == nil {
		return nil
	}
	project := *s.project
	return &project
}

// Creatives returns a snapshot of the creative list.
func (s *Session) Creatives() []model.Creative {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Creative(nil), s.creatives...)
}

// Frames returns a snapshot of the frame list.
func (s *Session) Frames() []model.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Frame(nil), s.frames...)
}

// Frame returns the loaded frame with the given id.
func (s *Session) Frame(frameID string) (model.Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.frameIndex[frameID]
	if !ok {
		return model.Frame{}, false
	}
	return s.frames[i], true
}

// TagGroups returns the tag group definitions from the last frame fetch.
func (s *Session) TagGroups() []model.TagGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.TagGroup(nil), s.tagGroups...)
}

// RefreshCreatives fetches the creative list. Concurrent calls for the
// same project share one network call. A stale completion (logout or
// project switch happened while fetching) is dropped without error.
func (s *Session) RefreshCreatives(ctx context.Context, pullAll bool) error {
	projectID, gen, err := s.identity()
	if err != nil {
		return err
	}

	_, err, _ = s.flight.Do("creatives:"+projectID, func() (any, error) {
		creatives, err := s.backend.FetchCreatives(ctx, projectID, pullAll)
		if err != nil {
			return nil, s.checkAuth(err)
		}

		s.mu.Lock()
		if !s.matches(projectID, gen) {
			s.mu.Unlock()
			s.log.Debug("dropping stale creatives fetch", "project", projectID)
			return nil, nil
		}
		s.creatives = creatives
		s.mu.Unlock()

		s.persistCreatives(projectID, creatives)
		return nil, nil
	})
	return err
}

// RefreshFrames fetches the frame list and tag group definitions.
// Coalescing and stale-completion rules match RefreshCreatives.
func (s *Session) RefreshFrames(ctx context.Context) error {
	projectID, gen, err := s.identity()
	if err != nil {
		return err
	}

	_, err, _ = s.flight.Do("frames:"+projectID, func() (any, error) {
		result, err := s.backend.FetchFrames(ctx, projectID)
		if err != nil {
			return nil, s.checkAuth(err)
		}

		s.mu.Lock()
		if !s.matches(projectID, gen) {
			s.mu.Unlock()
			s.log.Debug("dropping stale frames fetch", "project", projectID)
			return nil, nil
		}
		s.frames = result.Frames
		s.frameIndex = buildFrameIndex(result.Frames)
		if result.TagGroups != nil {
			s.tagGroups = result.TagGroups
		}
		s.mu.Unlock()

		s.persistFrames(projectID, result.Frames)
		s.publish(events.FramesReloadedEvent{
			ProjectID: projectID,
			Count:     len(result.Frames),
			Source:    events.OriginLocal,
			Timestamp: time.Now(),
		})
		return nil, nil
	})
	return err
}

// ActiveSchedule resolves the project's active schedule, fetching it on
// first use. Returns nil without error when the project has none.
func (s *Session) ActiveSchedule(ctx context.Context) (*schedule.Schedule, error) {
	s.mu.RLock()
	var scheduleID string
	if s.project != nil {
		scheduleID = s.project.ActiveScheduleID()
	}
	s.mu.RUnlock()

	if scheduleID == "" {
		return nil, nil
	}
	sched, err := s.schedules.Resolve(ctx, scheduleID)
	if err != nil {
		return nil, s.checkAuth(err)
	}
	return sched, nil
}

// ScheduleChanged records a new active schedule identity, evicting every
// other cached schedule. An id matching the current active schedule only
// invalidates that entry so the next resolve refetches it.
func (s *Session) ScheduleChanged(scheduleID string, origin events.Origin) {
	s.mu.Lock()
	var projectID string
	if s.project != nil {
		projectID = s.project.ID
		switch {
		case scheduleID == "":
			s.project.ActiveSchedule = nil
		case s.project.ActiveScheduleID() != scheduleID:
			s.project.ActiveSchedule = &model.ScheduleRef{ID: scheduleID}
		}
	}
	s.mu.Unlock()
	if projectID == "" {
		return
	}

	s.schedules.Invalidate(scheduleID)
	s.schedules.SetActive(scheduleID)
	s.publish(events.ScheduleChangedEvent{
		ProjectID:  projectID,
		ScheduleID: scheduleID,
		Source:     origin,
		Timestamp:  time.Now(),
	})
}

// StoryGroups returns the story-mode view: frames grouped per creative.
// The frame slice is copied under the lock; status and board mutations
// write frame elements in place, so handing out the backing array would
// let a reader observe a half-updated frame.
func (s *Session) StoryGroups(filter sorting.Filter) []sorting.CreativeGroup {
	s.mu.RLock()
	creatives := s.creatives
	frames := append([]model.Frame(nil), s.frames...)
	s.mu.RUnlock()
	return sorting.StoryPartition(creatives, frames, filter)
}

// ShootSequence returns the shoot-mode view: one flat sequence across
// creatives. When the project carries an active schedule, frames without
// a resolvable scheduled start are excluded.
func (s *Session) ShootSequence(filter sorting.Filter) []model.Frame {
	s.mu.RLock()
	frames := append([]model.Frame(nil), s.frames...)
	scheduleActive := s.project != nil && s.project.ActiveScheduleID() != ""
	s.mu.RUnlock()
	return sorting.ShootSequence(frames, filter, scheduleActive)
}

// Progress summarizes completion for the filtered subset.
func (s *Session) Progress(filter sorting.Filter) sorting.Progress {
	s.mu.RLock()
	creatives := s.creatives
	frames := append([]model.Frame(nil), s.frames...)
	s.mu.RUnlock()
	return sorting.SubsetProgress(creatives, frames, filter)
}

// PromoteAsset moves the given kind to the front of the frame's asset
// priority hints.
func (s *Session) PromoteAsset(frameID string, kind assets.Kind) {
	s.priorities.Promote(frameID, kind)
}

// PrimaryAsset returns the frame's primary display asset.
func (s *Session) PrimaryAsset(frameID string) (assets.Item, bool) {
	frame, ok := s.Frame(frameID)
	if !ok {
		return assets.Item{}, false
	}
	return s.priorities.Primary(&frame)
}

// identity captures the session identity before an awaited call.
func (s *Session) identity() (string, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.project == nil {
		return "", 0, errors.Newf("no project is open").
			Category(errors.CategoryState).
			Component("session").
			Build()
	}
	return s.project.ID, s.generation, nil
}

// matches re-checks the identity after an awaited call. Callers hold mu.
func (s *Session) matches(projectID string, gen uint64) bool {
	return s.project != nil && s.project.ID == projectID && s.generation == gen
}

// checkAuth forces a logout before propagating a rejected credential.
func (s *Session) checkAuth(err error) error {
	if err != nil && errors.IsAuthRejected(err) {
		s.log.Warn("credential rejected, forcing logout")
		s.Logout()
	}
	return err
}

func (s *Session) persistCreatives(projectID string, creatives []model.Creative) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveCreatives(projectID, creatives); err != nil {
		s.log.Warn("failed to persist creatives", "project", projectID, "error", err)
	}
}

func (s *Session) persistFrames(projectID string, frames []model.Frame) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveFrames(projectID, frames); err != nil {
		s.log.Warn("failed to persist frames", "project", projectID, "error", err)
	}
}

func (s *Session) publish(event events.Event) {
	if s.bus == nil {
		return
	}
	s.bus.TryPublish(event)
}

func buildFrameIndex(frames []model.Frame) map[string]int {
	index := make(map[string]int, len(frames))
	for i := range frames {
		index[frames[i].ID] = i
	}
	return index
}
