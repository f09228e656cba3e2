// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/docuflow/meet-service/internal/domain"
	"github.com/docuflow/meet-service/internal/domain/models"
	"github.com/docuflow/meet-service/internal/logging"
)

// shareDocTypeEvent is the doctype share grants on calendar events carry.
const shareDocTypeEvent = "Event"

// ShareReconcileService aligns an event's share grants with its attendee
// set. The operation is idempotent: re-running it for the same attendee set
// changes nothing.
type ShareReconcileService struct {
	EventRepository domain.EventRepository
	ShareRepository domain.ShareRepository
}

// NewShareReconcileService creates a new ShareReconcileService.
func NewShareReconcileService(
	eventRepository domain.EventRepository,
	shareRepository domain.ShareRepository,
) *ShareReconcileService {
	return &ShareReconcileService{
		EventRepository: eventRepository,
		ShareRepository: shareRepository,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *ShareReconcileService) ServiceReady() bool {
	return s.EventRepository != nil && s.ShareRepository != nil
}

// Reconcile processes one share reconciliation job: grant to attendees that
// lack a grant, revoke from granted users no longer attending. The event
// owner's grant is never revoked.
func (s *ShareReconcileService) Reconcile(ctx context.Context, job models.ShareReconcileJob) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}

	ctx = logging.AppendCtx(ctx, slog.String("event_uid", job.EventUID))

	event, err := s.EventRepository.Get(ctx, job.EventUID)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			slog.WarnContext(ctx, "share reconciliation for missing event, dropping")
			return nil
		}
		return err
	}

	wanted := make(map[string]bool, len(job.Attendees))
	for _, user := range job.Attendees {
		if user != "" {
			wanted[user] = true
		}
	}

	granted, err := s.ShareRepository.ListUsers(ctx, shareDocTypeEvent, event.UID)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(granted))
	for _, user := range granted {
		have[user] = true
	}

	now := time.Now().UTC()
	var grants, revocations int

	for user := range wanted {
		if have[user] {
			continue
		}
		grant := models.ShareGrant{
			DocType:   shareDocTypeEvent,
			DocName:   event.UID,
			User:      user,
			Read:      true,
			GrantedAt: &now,
		}
		if err := s.ShareRepository.Grant(ctx, grant); err != nil {
			slog.ErrorContext(ctx, "error granting event share", logging.ErrKey, err, "user", user)
			continue
		}
		grants++
	}

	for _, user := range granted {
		if wanted[user] || user == event.Owner {
			continue
		}
		if err := s.ShareRepository.Revoke(ctx, shareDocTypeEvent, event.UID, user); err != nil {
			slog.ErrorContext(ctx, "error revoking event share", logging.ErrKey, err, "user", user)
			continue
		}
		revocations++
	}

	slog.DebugContext(ctx, "reconciled event shares", "granted", grants, "revoked", revocations)
	return nil
}
