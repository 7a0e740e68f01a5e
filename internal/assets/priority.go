package assets

import (
	"sync"

	"github.com/slateboard/slateboard-go/internal/model"
)

// Priority keeps a per-frame ordered list of asset kinds acting as a
// selection hint for the primary asset. Promoting a kind front-inserts it,
// deduplicated. Safe for concurrent use.
type Priority struct {
	mu    sync.RWMutex
	hints map[string][]Kind // frame id -> ordered kind hints
}

// NewPriority creates an empty priority hint store.
func NewPriority() *Priority {
	return &Priority{hints: make(map[string][]Kind)}
}

// Promote moves the kind to the front of the frame's hint list.
func (p *Priority) Promote(frameID string, kind Kind) {
	p.mu.Lock()
	defer p.mu.Unlock()

	existing := p.hints[frameID]
	hints := make([]Kind, 0, len(existing)+1)
	hints = append(hints, kind)
	for _, k := range existing {
		if k != kind {
			hints = append(hints, k)
		}
	}
	p.hints[frameID] = hints
}

// Hints returns a copy of the frame's current hint list.
func (p *Priority) Hints(frameID string) []Kind {
	p.mu.RLock()
	defer p.mu.RUnlock()

	existing := p.hints[frameID]
	if existing == nil {
		return nil
	}
	hints := make([]Kind, len(existing))
	copy(hints, existing)
	return hints
}

// Clear drops all hints, e.g. on logout.
func (p *Priority) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hints = make(map[string][]Kind)
}

// Primary resolves the frame's primary asset: the first available item
// matching each hinted kind in turn, else the first available item.
// Returns false when the frame has no assets at all.
func (p *Priority) Primary(frame *model.Frame) (Item, bool) {
	available := Available(frame)
	if len(available) == 0 {
		return Item{}, false
	}

	for _, kind := range p.Hints(frame.ID) {
		for _, item := range available {
			if item.Kind == kind {
				return item, true
			}
		}
	}
	return available[0], true
}
