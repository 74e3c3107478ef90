package services

import (
	"context"
	"sync"

	"auction-house/internal/domain"
)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*domain.ItemEvent
}

func (p *recordingPublisher) PublishItemEvent(ctx context.Context, event *domain.ItemEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) byType(eventType domain.ItemEventType) []*domain.ItemEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	var matched []*domain.ItemEvent
	for _, event := range p.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}
