// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/docuflow/meet-service/internal/domain"
	"github.com/docuflow/meet-service/internal/domain/models"
	"github.com/docuflow/meet-service/internal/logging"
	"github.com/docuflow/meet-service/pkg/concurrent"
)

// inviteWorkers bounds per-job invitation fan-out.
const inviteWorkers = 5

// InvitationService delivers meeting invitations: a share grant on the
// meeting, an in-app notification, and an email per added user. Per-user
// failures are logged and the rest of the batch continues.
type InvitationService struct {
	MeetingRepository  domain.MeetingRepository
	ShareRepository    domain.ShareRepository
	NotificationWriter domain.NotificationWriter
	UserReader         domain.UserReader
	EmailService       domain.EmailService
	EventSync          *EventSyncService
	Config             ServiceConfig
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(
	meetingRepository domain.MeetingRepository,
	shareRepository domain.ShareRepository,
	notificationWriter domain.NotificationWriter,
	userReader domain.UserReader,
	emailService domain.EmailService,
	eventSync *EventSyncService,
	config ServiceConfig,
) *InvitationService {
	return &InvitationService{
		MeetingRepository:  meetingRepository,
		ShareRepository:    shareRepository,
		NotificationWriter: notificationWriter,
		UserReader:         userReader,
		EmailService:       emailService,
		EventSync:          eventSync,
		Config:             config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *InvitationService) ServiceReady() bool {
	return s.MeetingRepository != nil &&
		s.ShareRepository != nil &&
		s.NotificationWriter != nil &&
		s.UserReader != nil &&
		s.EmailService != nil &&
		s.EventSync != nil
}

// DispatchInvitations processes one invitation job.
func (s *InvitationService) DispatchInvitations(ctx context.Context, job models.InviteParticipantsJob) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", job.MeetingUID))

	meeting, err := s.MeetingRepository.Get(ctx, job.MeetingUID)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			slog.WarnContext(ctx, "invitation job for missing meeting, dropping")
			return nil
		}
		return err
	}

	var functions []func() error
	for _, user := range job.AddedUsers {
		if user == meeting.Host {
			continue
		}
		functions = append(functions, func() error {
			return s.inviteUser(ctx, meeting, user)
		})
	}
	if len(functions) == 0 {
		return nil
	}

	pool := concurrent.NewWorkerPool(inviteWorkers)
	errs := pool.RunAll(ctx, functions...)
	for _, err := range errs {
		slog.ErrorContext(ctx, "error inviting user", logging.ErrKey, err)
	}

	slog.InfoContext(ctx, "dispatched invitations",
		"invited", len(functions)-len(errs), "failed", len(errs))
	return nil
}

// inviteUser shares the meeting, writes the notification, and sends the
// email for one user. The email is best-effort once the share and the
// notification are in place.
func (s *InvitationService) inviteUser(ctx context.Context, meeting *models.Meeting, user string) error {
	now := time.Now().UTC()

	grant := models.ShareGrant{
		DocType:   "Meeting",
		DocName:   meeting.UID,
		User:      user,
		Read:      true,
		GrantedAt: &now,
	}
	if err := s.ShareRepository.Grant(ctx, grant); err != nil {
		return fmt.Errorf("failed to share meeting with %s: %w", user, err)
	}

	joinLink := s.EventSync.JoinLink(meeting)
	notification := &models.Notification{
		UID:     uuid.New().String(),
		ForUser: user,
		Subject: meeting.Subject(),
		Body:    fmt.Sprintf("You have been invited to %s. Join here: %s", meeting.Subject(), joinLink),
		DocType: "Meeting",
		DocName: meeting.UID,
	}
	if err := s.NotificationWriter.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to notify %s: %w", user, err)
	}

	invitation := domain.EmailInvitation{
		RecipientEmail: user,
		RecipientName:  s.displayName(ctx, user),
		MeetingSubject: meeting.Subject(),
		ReferenceDoc:   referenceLabel(meeting),
		JoinLink:       joinLink,
		HostName:       s.displayName(ctx, meeting.Host),
	}
	if err := s.EmailService.SendMeetingInvitation(ctx, invitation); err != nil {
		slog.WarnContext(ctx, "invitation email failed", logging.ErrKey, err, "user", user)
	}
	return nil
}

// displayName resolves a directory full name, falling back to the identity.
func (s *InvitationService) displayName(ctx context.Context, identity string) string {
	user, err := s.UserReader.Get(ctx, identity)
	if err != nil || user.FullName == "" {
		return identity
	}
	return user.FullName
}

func referenceLabel(meeting *models.Meeting) string {
	if meeting.ReferenceDocType == "" {
		return ""
	}
	return meeting.ReferenceDocType + " " + meeting.ReferenceDocName
}
