package testutil

import (
	"context"
	"sync"

	"github.com/samber/lo"
	"github.com/shopfront/shopfront/internal/publisher"
	"github.com/shopfront/shopfront/internal/types"
)

// InMemoryEventPublisher records published events for assertions
type InMemoryEventPublisher struct {
	mu     sync.RWMutex
	events []*types.Event
}

var _ publisher.EventPublisher = (*InMemoryEventPublisher)(nil)

func NewInMemoryEventPublisher() *InMemoryEventPublisher {
	return &InMemoryEventPublisher{
		events: make([]*types.Event, 0),
	}
}

func (p *InMemoryEventPublisher) Publish(ctx context.Context, event *types.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)
	return nil
}

// GetEvents returns all published events
func (p *InMemoryEventPublisher) GetEvents() []*types.Event {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*types.Event, len(p.events))
	copy(out, p.events)
	return out
}

// EventsNamed returns the published events with the given name
func (p *InMemoryEventPublisher) EventsNamed(name types.EventName) []*types.Event {
	return lo.Filter(p.GetEvents(), func(e *types.Event, _ int) bool {
		return e.EventName == name
	})
}

// Clear removes all published events
func (p *InMemoryEventPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = make([]*types.Event, 0)
}
