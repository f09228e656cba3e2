// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"time"

	"github.com/docuflow/meet-service/internal/domain"
	"github.com/docuflow/meet-service/internal/domain/models"
)

// NatsEventRepository is the NATS KV store repository for calendar events.
type NatsEventRepository struct {
	*NatsBaseRepository[models.CalendarEvent]
	keyBuilder KeyBuilder
}

// NewNatsEventRepository creates a new NATS KV store repository for calendar events.
func NewNatsEventRepository(events INatsKeyValue) *NatsEventRepository {
	return &NatsEventRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.CalendarEvent](events, "event"),
	}
}

// Create stores a new calendar event.
func (r *NatsEventRepository) Create(ctx context.Context, event *models.CalendarEvent) error {
	now := time.Now().UTC()
	event.CreatedAt = &now
	event.UpdatedAt = &now
	return r.Put(ctx, r.keyBuilder.EntityKey(KeyPrefixEvent, event.UID), event)
}

// Get retrieves a calendar event by UID.
func (r *NatsEventRepository) Get(ctx context.Context, uid string) (*models.CalendarEvent, error) {
	event, _, err := r.GetWithRevision(ctx, uid)
	return event, err
}

// GetWithRevision retrieves a calendar event and the revision it was read at.
func (r *NatsEventRepository) GetWithRevision(ctx context.Context, uid string) (*models.CalendarEvent, uint64, error) {
	event, revision, err := r.NatsBaseRepository.GetWithRevision(ctx, r.keyBuilder.EntityKey(KeyPrefixEvent, uid))
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return nil, 0, domain.ErrEventNotFound
		}
		return nil, 0, err
	}
	return event, revision, nil
}

// Update stores a calendar event at the given revision.
func (r *NatsEventRepository) Update(ctx context.Context, event *models.CalendarEvent, revision uint64) error {
	now := time.Now().UTC()
	event.UpdatedAt = &now
	return r.NatsBaseRepository.Update(ctx, r.keyBuilder.EntityKey(KeyPrefixEvent, event.UID), event, revision)
}
