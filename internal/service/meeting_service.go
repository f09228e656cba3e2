// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/docuflow/meet-service/internal/domain"
	"github.com/docuflow/meet-service/internal/domain/models"
	"github.com/docuflow/meet-service/internal/logging"
	"github.com/docuflow/meet-service/pkg/rooms"
	"github.com/docuflow/meet-service/pkg/utils"
)

// sessionIDAttempts bounds the retry loop for session id collisions.
const sessionIDAttempts = 5

// MeetingService implements the room and meeting operations exposed over
// HTTP and consumed by the webhook service.
type MeetingService struct {
	MeetingRepository domain.MeetingRepository
	EventSync         *EventSyncService
	MessageBuilder    domain.MessageBuilder
	TokenIssuer       domain.TokenIssuer
	Config            ServiceConfig
}

// NewMeetingService creates a new MeetingService.
func NewMeetingService(
	meetingRepository domain.MeetingRepository,
	eventSync *EventSyncService,
	messageBuilder domain.MessageBuilder,
	tokenIssuer domain.TokenIssuer,
	config ServiceConfig,
) *MeetingService {
	return &MeetingService{
		MeetingRepository: meetingRepository,
		EventSync:         eventSync,
		MessageBuilder:    messageBuilder,
		TokenIssuer:       tokenIssuer,
		Config:            config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *MeetingService) ServiceReady() bool {
	return s.MeetingRepository != nil &&
		s.EventSync != nil &&
		s.MessageBuilder != nil &&
		s.TokenIssuer != nil
}

// CreateRoomRequest carries the inputs for room creation. Host is the
// authenticated principal; the reference fields are both set or both empty.
type CreateRoomRequest struct {
	Host             string
	ReferenceDocType string
	ReferenceDocName string
	Details          string
	StartTime        *time.Time
	Participants     []string

	RepeatThisMeeting bool
	RepeatOn          models.RepeatFrequency
	RepeatTill        *time.Time
	Weekdays          models.Weekdays
}

// CreateRoomResult is the outcome of room creation.
type CreateRoomResult struct {
	Meeting  *models.Meeting
	RoomName string
	JoinLink string
}

// CreateRoom creates a meeting, its calendar event, and queues invitations
// for the initial participants.
func (s *MeetingService) CreateRoom(ctx context.Context, req CreateRoomRequest) (*CreateRoomResult, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	if !s.Config.IntegrationEnabled {
		return nil, domain.ErrIntegrationDisabled
	}
	if req.Host == "" {
		return nil, domain.NewUnauthorizedError("authentication required to create a room")
	}
	if (req.ReferenceDocType == "") != (req.ReferenceDocName == "") {
		return nil, domain.NewValidationError("reference doctype and docname must be set together")
	}
	if req.RepeatThisMeeting {
		switch req.RepeatOn {
		case models.RepeatDaily, models.RepeatMonthly:
		case models.RepeatWeekly:
			if !req.Weekdays.Any() {
				return nil, domain.NewValidationError("weekly repetition needs at least one weekday")
			}
		default:
			return nil, domain.NewValidationError("invalid repeat frequency")
		}
	}

	sessionID, err := s.newSessionID(ctx, req.ReferenceDocType, req.ReferenceDocName)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	startTime := now
	if req.StartTime != nil {
		startTime = req.StartTime.UTC()
	}

	meeting := &models.Meeting{
		UID:              uuid.New().String(),
		SessionID:        sessionID,
		Host:             req.Host,
		ReferenceDocType: req.ReferenceDocType,
		ReferenceDocName: req.ReferenceDocName,
		Status:           models.MeetingStatusActive,
		StartTime:        startTime,
		Details:          req.Details,

		RepeatThisMeeting: req.RepeatThisMeeting,
		RepeatOn:          req.RepeatOn,
		RepeatTill:        req.RepeatTill,
		Weekdays:          req.Weekdays,
	}

	participants := make([]models.Participant, 0, len(req.Participants))
	for _, user := range req.Participants {
		participants = append(participants, models.Participant{User: user})
	}
	effects, err := domain.ReplaceParticipants(meeting, participants, now)
	if err != nil {
		return nil, err
	}

	// Event sync runs before the meeting is stored so the event link is
	// persisted with the record.
	s.runSyncEffects(ctx, meeting, effects)

	if err := s.MeetingRepository.Create(ctx, meeting); err != nil {
		return nil, err
	}

	s.runDispatchEffects(ctx, meeting, effects)

	slog.InfoContext(ctx, "created meeting room",
		"meeting_uid", meeting.UID, "room_name", meeting.RoomName(), "host", meeting.Host)

	return &CreateRoomResult{
		Meeting:  meeting,
		RoomName: meeting.RoomName(),
		JoinLink: s.EventSync.JoinLink(meeting),
	}, nil
}

// GetMeeting fetches one meeting by UID.
func (s *MeetingService) GetMeeting(ctx context.Context, uid string) (*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	return s.MeetingRepository.Get(ctx, uid)
}

// JoinRoom authorizes the user (or guest) for the room and returns the
// conferencing URL to redirect to.
func (s *MeetingService) JoinRoom(ctx context.Context, roomName, user string) (string, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return "", domain.ErrServiceUnavailable
	}

	meeting, _, err := s.resolveRoom(ctx, roomName)
	if err != nil {
		return "", err
	}

	moderator, err := domain.AuthorizeJoin(meeting, user)
	if err != nil {
		return "", err
	}

	room := meeting.RoomName()
	token, err := s.TokenIssuer.Issue(ctx, room, user, moderator)
	if err != nil {
		return "", err
	}

	redirect := fmt.Sprintf("https://%s/%s", s.Config.ConferencingDomain, url.PathEscape(room))
	if token != "" {
		redirect += "?jwt=" + token
	}
	return redirect, nil
}

// StartRoom applies the manual-start transition. Only the host or an invited
// participant may start the room.
func (s *MeetingService) StartRoom(ctx context.Context, roomName, user string) error {
	return s.transitionRoom(ctx, roomName, func(meeting *models.Meeting, now time.Time) ([]domain.Effect, error) {
		if user == "" {
			return nil, domain.NewUnauthorizedError("authentication required to start a meeting")
		}
		if user != meeting.Host && !meeting.IsParticipant(user) {
			return nil, domain.ErrNotInvited
		}
		return domain.StartMeeting(meeting, now)
	})
}

// EndRoom applies the manual-end transition. Only the host may end a room.
func (s *MeetingService) EndRoom(ctx context.Context, roomName, user string) error {
	return s.transitionRoom(ctx, roomName, func(meeting *models.Meeting, now time.Time) ([]domain.Effect, error) {
		if user == "" {
			return nil, domain.NewUnauthorizedError("authentication required to end a meeting")
		}
		if user != meeting.Host {
			return nil, domain.NewForbiddenError("only the host can end the meeting")
		}
		return domain.EndMeeting(meeting, now)
	})
}

// RSVP records the user's invitation response for the room's meeting.
func (s *MeetingService) RSVP(ctx context.Context, roomName, user string, status models.InvitationStatus) error {
	return s.transitionRoom(ctx, roomName, func(meeting *models.Meeting, now time.Time) ([]domain.Effect, error) {
		if user == "" {
			return nil, domain.NewUnauthorizedError("authentication required to respond to an invitation")
		}
		return domain.ApplyRSVP(meeting, user, status, now)
	})
}

// ReplaceParticipants swaps the meeting's participant list and queues
// invitations for the delta. Only the host may change the list.
func (s *MeetingService) ReplaceParticipants(ctx context.Context, uid, user string, participants []models.Participant) (*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	if user == "" {
		return nil, domain.NewUnauthorizedError("authentication required to update participants")
	}

	meeting, revision, err := s.MeetingRepository.GetWithRevision(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user != meeting.Host {
		return nil, domain.NewForbiddenError("only the host can update participants")
	}

	effects, err := domain.ReplaceParticipants(meeting, participants, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.runSyncEffects(ctx, meeting, effects)
	if err := s.MeetingRepository.Update(ctx, meeting, revision); err != nil {
		return nil, err
	}
	s.runDispatchEffects(ctx, meeting, effects)

	return meeting, nil
}

// resolveRoom decodes a room name and loads its meeting.
func (s *MeetingService) resolveRoom(ctx context.Context, roomName string) (*models.Meeting, uint64, error) {
	sessionID, err := rooms.Decode(roomName)
	if err != nil {
		return nil, 0, domain.ErrMalformedRoomName
	}
	return s.MeetingRepository.GetBySessionID(ctx, sessionID)
}

// transitionRoom is the shared read-transition-persist loop for room-scoped
// lifecycle operations.
func (s *MeetingService) transitionRoom(
	ctx context.Context,
	roomName string,
	transition func(meeting *models.Meeting, now time.Time) ([]domain.Effect, error),
) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}

	meeting, revision, err := s.resolveRoom(ctx, roomName)
	if err != nil {
		return err
	}

	effects, err := transition(meeting, time.Now().UTC())
	if err != nil {
		return err
	}

	s.runSyncEffects(ctx, meeting, effects)
	if err := s.MeetingRepository.Update(ctx, meeting, revision); err != nil {
		return err
	}
	s.runDispatchEffects(ctx, meeting, effects)

	return nil
}

// runSyncEffects carries out the effects that must happen before the meeting
// record is persisted (they may set the event link on the meeting). Failures
// are logged; the event converges on the next sync.
func (s *MeetingService) runSyncEffects(ctx context.Context, meeting *models.Meeting, effects []domain.Effect) {
	for _, effect := range effects {
		if effect.Type != domain.EffectSyncEvent {
			continue
		}
		if err := s.EventSync.Sync(ctx, meeting); err != nil {
			slog.ErrorContext(ctx, "error syncing calendar event", logging.ErrKey, err,
				"meeting_uid", meeting.UID)
		}
	}
}

// runDispatchEffects carries out the fire-and-forget effects after the
// meeting record is persisted.
func (s *MeetingService) runDispatchEffects(ctx context.Context, meeting *models.Meeting, effects []domain.Effect) {
	for _, effect := range effects {
		switch effect.Type {
		case domain.EffectCompleteEvent:
			if err := s.EventSync.Complete(ctx, meeting); err != nil {
				slog.ErrorContext(ctx, "error completing calendar event", logging.ErrKey, err,
					"meeting_uid", meeting.UID)
			}
		case domain.EffectDispatchInvites:
			job := models.InviteParticipantsJob{
				MeetingUID: meeting.UID,
				AddedUsers: effect.AddedUsers,
				RunAs:      s.Config.ServiceIdentity,
			}
			if err := s.MessageBuilder.SendInviteParticipants(ctx, job); err != nil {
				slog.ErrorContext(ctx, "error queueing invitation dispatch", logging.ErrKey, err,
					"meeting_uid", meeting.UID)
			}
		}
	}
}

// newSessionID generates a session id whose room name round-trips through
// the codec and is not already taken.
func (s *MeetingService) newSessionID(ctx context.Context, refDocType, refDocName string) (string, error) {
	for attempt := 0; attempt < sessionIDAttempts; attempt++ {
		sessionID := utils.NewSessionID()
		if err := rooms.ValidateComponents(refDocType, refDocName, sessionID); err != nil {
			return "", domain.NewValidationError("reference document cannot form a room name", err)
		}

		decoded, err := rooms.Decode(rooms.Encode(refDocType, refDocName, sessionID))
		if err != nil || decoded != sessionID {
			return "", domain.NewValidationError("reference document cannot form a room name")
		}

		taken, err := s.MeetingRepository.SessionIDExists(ctx, sessionID)
		if err != nil {
			return "", err
		}
		if !taken {
			return sessionID, nil
		}
	}
	return "", domain.NewInternalError("could not generate a unique session id")
}
