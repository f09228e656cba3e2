// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/docuflow/meet-service/internal/domain/models"
)

// MeetingRepository is the document-store contract for meeting records.
// Revisions implement the single-writer-per-record model: updates carry the
// revision they were read at and fail with ErrRevisionMismatch when the
// record moved underneath them.
type MeetingRepository interface {
	Create(ctx context.Context, meeting *models.Meeting) error
	Get(ctx context.Context, uid string) (*models.Meeting, error)
	GetWithRevision(ctx context.Context, uid string) (*models.Meeting, uint64, error)
	// GetBySessionID resolves the room-name join key to its meeting.
	GetBySessionID(ctx context.Context, sessionID string) (*models.Meeting, uint64, error)
	Update(ctx context.Context, meeting *models.Meeting, revision uint64) error
	Exists(ctx context.Context, uid string) (bool, error)
	SessionIDExists(ctx context.Context, sessionID string) (bool, error)
	ListAll(ctx context.Context) ([]*models.Meeting, error)
}

// EventRepository is the document-store contract for calendar events.
type EventRepository interface {
	Create(ctx context.Context, event *models.CalendarEvent) error
	Get(ctx context.Context, uid string) (*models.CalendarEvent, error)
	GetWithRevision(ctx context.Context, uid string) (*models.CalendarEvent, uint64, error)
	Update(ctx context.Context, event *models.CalendarEvent, revision uint64) error
}

// ShareRepository manages read grants keyed by (doctype, docname, user).
type ShareRepository interface {
	Grant(ctx context.Context, grant models.ShareGrant) error
	Revoke(ctx context.Context, docType, docName, user string) error
	ListUsers(ctx context.Context, docType, docName string) ([]string, error)
}

// UserReader looks up directory records for token issuance.
type UserReader interface {
	Get(ctx context.Context, identity string) (*models.User, error)
}

// NotificationWriter records in-app notifications for invited users.
type NotificationWriter interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// TranscriptRepository stores transcription results keyed by meeting UID.
type TranscriptRepository interface {
	Put(ctx context.Context, transcript *models.Transcript) error
	Get(ctx context.Context, meetingUID string) (*models.Transcript, error)
}
