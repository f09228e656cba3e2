// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/docuflow/meet-service/internal/domain"
	"github.com/docuflow/meet-service/internal/domain/models"
	"github.com/docuflow/meet-service/internal/logging"
)

// NatsMeetingRepository is the NATS KV store repository for meetings. Besides
// the meeting records it maintains a session-id index so the room-name join
// key resolves to a meeting without scanning the bucket.
type NatsMeetingRepository struct {
	*NatsBaseRepository[models.Meeting]
	sessionIndex *NatsBaseRepository[string]
	keyBuilder   KeyBuilder
}

// NewNatsMeetingRepository creates a new NATS KV store repository for meetings.
func NewNatsMeetingRepository(meetings INatsKeyValue) *NatsMeetingRepository {
	return &NatsMeetingRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Meeting](meetings, "meeting"),
		sessionIndex:       NewNatsBaseRepository[string](meetings, "session index"),
	}
}

// Create stores a new meeting and its session-id index entry. The index
// doubles as the uniqueness safeguard for session ids.
func (r *NatsMeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	taken, err := r.SessionIDExists(ctx, meeting.SessionID)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrSessionIDTaken
	}

	now := time.Now().UTC()
	meeting.CreatedAt = &now
	meeting.UpdatedAt = &now

	if err := r.NatsBaseRepository.Put(ctx, r.keyBuilder.EntityKey(KeyPrefixMeeting, meeting.UID), meeting); err != nil {
		return err
	}

	uid := meeting.UID
	if err := r.sessionIndex.Put(ctx, r.keyBuilder.SessionIndexKey(meeting.SessionID), &uid); err != nil {
		// The meeting record exists but is unreachable by session id; let
		// the caller surface the failure rather than leave it half-indexed.
		slog.ErrorContext(ctx, "error writing session index", logging.ErrKey, err,
			"meeting_uid", meeting.UID, "session_id", meeting.SessionID)
		return err
	}

	return nil
}

// Get retrieves a meeting by UID.
func (r *NatsMeetingRepository) Get(ctx context.Context, uid string) (*models.Meeting, error) {
	meeting, _, err := r.GetWithRevision(ctx, uid)
	return meeting, err
}

// GetWithRevision retrieves a meeting and the revision it was read at.
func (r *NatsMeetingRepository) GetWithRevision(ctx context.Context, uid string) (*models.Meeting, uint64, error) {
	meeting, revision, err := r.NatsBaseRepository.GetWithRevision(ctx, r.keyBuilder.EntityKey(KeyPrefixMeeting, uid))
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return nil, 0, domain.ErrMeetingNotFound
		}
		return nil, 0, err
	}
	return meeting, revision, nil
}

// GetBySessionID resolves a session id through the index to its meeting.
func (r *NatsMeetingRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.Meeting, uint64, error) {
	uid, _, err := r.sessionIndex.GetWithRevision(ctx, r.keyBuilder.SessionIndexKey(sessionID))
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return nil, 0, domain.ErrMeetingNotFound
		}
		return nil, 0, err
	}
	return r.GetWithRevision(ctx, *uid)
}

// Update stores a meeting at the given revision. Timestamps are the
// caller's responsibility: some writes, like an RSVP, deliberately keep
// the previous UpdatedAt.
func (r *NatsMeetingRepository) Update(ctx context.Context, meeting *models.Meeting, revision uint64) error {
	return r.NatsBaseRepository.Update(ctx, r.keyBuilder.EntityKey(KeyPrefixMeeting, meeting.UID), meeting, revision)
}

// Exists reports whether a meeting with the UID is stored.
func (r *NatsMeetingRepository) Exists(ctx context.Context, uid string) (bool, error) {
	return r.NatsBaseRepository.Exists(ctx, r.keyBuilder.EntityKey(KeyPrefixMeeting, uid))
}

// SessionIDExists reports whether a session id is already indexed.
func (r *NatsMeetingRepository) SessionIDExists(ctx context.Context, sessionID string) (bool, error) {
	return r.sessionIndex.Exists(ctx, r.keyBuilder.SessionIndexKey(sessionID))
}

// ListAll returns every stored meeting. The sweep iterates this.
func (r *NatsMeetingRepository) ListAll(ctx context.Context) ([]*models.Meeting, error) {
	return r.ListEntries(ctx, KeyPrefixMeeting+"/")
}
