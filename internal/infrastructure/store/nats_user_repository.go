// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/docuflow/meet-service/internal/domain"
	"github.com/docuflow/meet-service/internal/domain/models"
)

// NatsUserRepository is the read-mostly directory of user records consulted
// by the token issuer.
type NatsUserRepository struct {
	*NatsBaseRepository[models.User]
	keyBuilder KeyBuilder
}

// NewNatsUserRepository creates a new NATS KV store repository for users.
func NewNatsUserRepository(users INatsKeyValue) *NatsUserRepository {
	return &NatsUserRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.User](users, "user"),
	}
}

// Get retrieves a directory record by identity.
func (r *NatsUserRepository) Get(ctx context.Context, identity string) (*models.User, error) {
	key, err := r.keyBuilder.UserKey(identity)
	if err != nil {
		return nil, domain.NewInternalError("failed to build user key", err)
	}

	user, _, err := r.GetWithRevision(ctx, key)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// NatsNotificationRepository stores in-app notification records.
type NatsNotificationRepository struct {
	*NatsBaseRepository[models.Notification]
	keyBuilder KeyBuilder
}

// NewNatsNotificationRepository creates a new NATS KV store repository for notifications.
func NewNatsNotificationRepository(notifications INatsKeyValue) *NatsNotificationRepository {
	return &NatsNotificationRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Notification](notifications, "notification"),
	}
}

// Create stores a new notification record.
func (r *NatsNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.UID == "" {
		notification.UID = uuid.New().String()
	}
	now := time.Now().UTC()
	notification.CreatedAt = &now
	return r.Put(ctx, r.keyBuilder.EntityKey(KeyPrefixNotification, notification.UID), notification)
}

// NatsTranscriptRepository stores transcription results keyed by meeting UID.
type NatsTranscriptRepository struct {
	*NatsBaseRepository[models.Transcript]
	keyBuilder KeyBuilder
}

// NewNatsTranscriptRepository creates a new NATS KV store repository for transcripts.
func NewNatsTranscriptRepository(transcripts INatsKeyValue) *NatsTranscriptRepository {
	return &NatsTranscriptRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Transcript](transcripts, "transcript"),
	}
}

// Put stores a transcript, overwriting any previous attempt for the meeting.
func (r *NatsTranscriptRepository) Put(ctx context.Context, transcript *models.Transcript) error {
	now := time.Now().UTC()
	transcript.UpdatedAt = &now
	return r.NatsBaseRepository.Put(ctx, r.keyBuilder.EntityKey(KeyPrefixTranscript, transcript.MeetingUID), transcript)
}

// Get retrieves the transcript for a meeting.
func (r *NatsTranscriptRepository) Get(ctx context.Context, meetingUID string) (*models.Transcript, error) {
	transcript, _, err := r.GetWithRevision(ctx, r.keyBuilder.EntityKey(KeyPrefixTranscript, meetingUID))
	return transcript, err
}
