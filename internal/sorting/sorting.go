// Package sorting computes the frame sequences displayed in story and
// shoot views. The two modes mirror each other: each sorts primarily by
// its own order key, treating a missing key as +infinity, and breaks ties
// on the other key. Both sorts are stable and idempotent.
package sorting

import (
	"math"
	"sort"

	"github.com/slateboard/slateboard-go/internal/model"
)

// Mode selects which frame sequence is being computed.
type Mode int

const (
	// Story is the narrative/script sequence, keyed on frameOrder.
	Story Mode = iota
	// Shoot is the physical production sequence, keyed on frameShootOrder.
	Shoot
)

// Filter narrows the frame set. Dimensions compose with AND; membership
// within one dimension is OR. Empty sets are inactive.
type Filter struct {
	CreativeIDs map[string]struct{}
	TagKeys     map[string]struct{} // tag identity keys (id, or lowercased name)
}

// Matches reports whether a frame passes the filter.
func (f Filter) Matches(frame *model.Frame) bool {
	if len(f.CreativeIDs) > 0 {
		if _, ok := f.CreativeIDs[frame.CreativeID]; !ok {
			return false
		}
	}
	if len(f.TagKeys) > 0 && !frame.HasTag(f.TagKeys) {
		return false
	}
	return true
}

// orderOrInf treats a missing order key as +infinity so unordered frames
// sort after every ordered one.
func orderOrInf(v *int) int {
	if v == nil {
		return math.MaxInt
	}
	return *v
}

func storyLess(a, b *model.Frame) bool {
	ak, bk := orderOrInf(a.Order), orderOrInf(b.Order)
	if ak != bk {
		return ak < bk
	}
	return orderOrInf(a.ShootOrder) < orderOrInf(b.ShootOrder)
}

func shootLess(a, b *model.Frame) bool {
	ak, bk := orderOrInf(a.ShootOrder), orderOrInf(b.ShootOrder)
	if ak != bk {
		return ak < bk
	}
	return orderOrInf(a.Order) < orderOrInf(b.Order)
}

// Sort returns a new slice sorted for the given mode. The input is not
// modified; full-key ties keep their input order.
func Sort(frames []model.Frame, mode Mode) []model.Frame {
	sorted := make([]model.Frame, len(frames))
	copy(sorted, frames)

	less := storyLess
	if mode == Shoot {
		less = shootLess
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(&sorted[i], &sorted[j])
	})
	return sorted
}

// CreativeGroup is one creative's frames in story order.
type CreativeGroup struct {
	Creative model.Creative
	Frames   []model.Frame
}

// StoryPartition groups the filtered frames per creative, each group in
// story order. Creatives retain their given order; creatives with no
// passing frames are omitted. Hidden frames are retained in story mode.
func StoryPartition(creatives []model.Creative, frames []model.Frame, filter Filter) []CreativeGroup {
	byCreative := make(map[string][]model.Frame)
	for i := range frames {
		if !filter.Matches(&frames[i]) {
			continue
		}
		byCreative[frames[i].CreativeID] = append(byCreative[frames[i].CreativeID], frames[i])
	}

	var groups []CreativeGroup
	for _, creative := range creatives {
		if len(filter.CreativeIDs) > 0 {
			if _, ok := filter.CreativeIDs[creative.ID]; !ok {
				continue
			}
		}
		creativeFrames, ok := byCreative[creative.ID]
		if !ok {
			continue
		}
		groups = append(groups, CreativeGroup{
			Creative: creative,
			Frames:   Sort(creativeFrames, Story),
		})
	}
	return groups
}

// ShootSequence merges the filtered frames across all creatives into one
// flat shoot-order sequence. Hidden frames are excluded; when the project
// has an active schedule, frames without a resolvable scheduled start time
// are excluded as well.
func ShootSequence(frames []model.Frame, filter Filter, scheduleActive bool) []model.Frame {
	var passing []model.Frame
	for i := range frames {
		frame := &frames[i]
		if frame.Hidden {
			continue
		}
		if scheduleActive {
			if _, ok := frame.ScheduledStartMinutes(); !ok {
				continue
			}
		}
		if !filter.Matches(frame) {
			continue
		}
		passing = append(passing, *frame)
	}
	return Sort(passing, Shoot)
}

// Progress summarizes completion for a view.
type Progress struct {
	Done  int
	Total int
}

// CreativeProgress summarizes a single creative using the server-computed
// aggregates, which are authoritative and may include frames not loaded
// locally.
func CreativeProgress(creative *model.Creative) Progress {
	return Progress{Done: creative.CompletedFrames, Total: creative.TotalFrames}
}

// SubsetProgress summarizes an arbitrary filtered multi-creative subset.
// Done is recomputed from the loaded frames, but Total sums the
// creative-level aggregates rather than counting loaded frames; creative
// aggregates can diverge from the locally loaded set (unloaded or
// archived frames), and this asymmetry is intentional.
func SubsetProgress(creatives []model.Creative, frames []model.Frame, filter Filter) Progress {
	var progress Progress

	for i := range frames {
		if !filter.Matches(&frames[i]) {
			continue
		}
		if frames[i].Status == model.StatusDone {
			progress.Done++
		}
	}

	for _, creative := range creatives {
		if len(filter.CreativeIDs) > 0 {
			if _, ok := filter.CreativeIDs[creative.ID]; !ok {
				continue
			}
		}
		progress.Total += creative.TotalFrames
	}
	return progress
}
