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
	"github.com/docuflow/meet-service/pkg/constants"
)

// EventSyncService keeps the calendar event owned by a meeting aligned with
// the meeting's attendee set and time window. Share-grant reconciliation is
// handed off to the queue, never done inline.
type EventSyncService struct {
	EventRepository domain.EventRepository
	MessageBuilder  domain.MessageBuilder
	Occurrences     *OccurrenceService
	Config          ServiceConfig
}

// NewEventSyncService creates a new EventSyncService.
func NewEventSyncService(
	eventRepository domain.EventRepository,
	messageBuilder domain.MessageBuilder,
	occurrences *OccurrenceService,
	config ServiceConfig,
) *EventSyncService {
	return &EventSyncService{
		EventRepository: eventRepository,
		MessageBuilder:  messageBuilder,
		Occurrences:     occurrences,
		Config:          config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *EventSyncService) ServiceReady() bool {
	return s.EventRepository != nil &&
		s.MessageBuilder != nil &&
		s.Occurrences != nil
}

// JoinLink builds the absolute join URL for a meeting's room.
func (s *EventSyncService) JoinLink(meeting *models.Meeting) string {
	return fmt.Sprintf("%s/api/v1/rooms/%s/join", s.Config.PublicURL, url.PathEscape(meeting.RoomName()))
}

// eventWindow is the calendar window for a meeting. A meeting without an end
// time gets the default duration.
func eventWindow(meeting *models.Meeting) (time.Time, time.Time) {
	start := meeting.StartTime
	if meeting.EndTime != nil {
		return start, *meeting.EndTime
	}
	return start, start.Add(constants.DefaultMeetingDuration)
}

// Sync creates or updates the meeting's calendar event. When the meeting has
// no linked event yet one is created and meeting.EventUID is set; the caller
// is responsible for persisting the meeting afterwards. A linked event that
// has gone missing from the store is recreated once.
func (s *EventSyncService) Sync(ctx context.Context, meeting *models.Meeting) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "event sync service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}

	if meeting.EventUID == "" {
		return s.createEvent(ctx, meeting)
	}

	event, revision, err := s.EventRepository.GetWithRevision(ctx, meeting.EventUID)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			slog.WarnContext(ctx, "linked event missing, recreating",
				"event_uid", meeting.EventUID, "meeting_uid", meeting.UID)
			meeting.EventUID = ""
			return s.createEvent(ctx, meeting)
		}
		return err
	}

	s.fillEvent(ctx, event, meeting)
	if err := s.EventRepository.Update(ctx, event, revision); err != nil {
		return err
	}

	s.reconcileShares(ctx, event)
	return nil
}

// Complete marks the meeting's linked event Completed. A meeting without a
// linked event, or whose event is already gone, is a no-op.
func (s *EventSyncService) Complete(ctx context.Context, meeting *models.Meeting) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "event sync service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}

	if meeting.EventUID == "" {
		return nil
	}

	event, revision, err := s.EventRepository.GetWithRevision(ctx, meeting.EventUID)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return nil
		}
		return err
	}
	if event.Status == models.EventStatusCompleted {
		return nil
	}

	event.Status = models.EventStatusCompleted
	return s.EventRepository.Update(ctx, event, revision)
}

func (s *EventSyncService) createEvent(ctx context.Context, meeting *models.Meeting) error {
	event := &models.CalendarEvent{
		UID:    uuid.New().String(),
		Status: models.EventStatusOpen,
		Owner:  meeting.Host,
	}
	s.fillEvent(ctx, event, meeting)

	if err := s.EventRepository.Create(ctx, event); err != nil {
		return err
	}
	meeting.EventUID = event.UID

	slog.DebugContext(ctx, "created calendar event for meeting",
		"event_uid", event.UID, "meeting_uid", meeting.UID)

	s.reconcileShares(ctx, event)
	return nil
}

func (s *EventSyncService) fillEvent(ctx context.Context, event *models.CalendarEvent, meeting *models.Meeting) {
	start, end := eventWindow(meeting)

	event.Subject = meeting.Subject()
	event.StartsOn = start
	event.EndsOn = end
	event.Description = fmt.Sprintf("Join the meeting: %s", s.JoinLink(meeting))
	event.Attendees = meeting.Attendees()
	event.Repeat = meeting.RepeatThisMeeting
	event.RepeatOn = meeting.RepeatOn
	event.RepeatTill = meeting.RepeatTill

	rule, err := s.Occurrences.RRuleText(meeting)
	if err != nil {
		// A broken recurrence rule degrades the calendar export only.
		slog.WarnContext(ctx, "could not derive recurrence rule", logging.ErrKey, err,
			"meeting_uid", meeting.UID)
		rule = ""
	}
	event.RRule = rule
}

// reconcileShares queues the share reconciliation job for the event. Queue
// failures are logged and swallowed; shares converge on the next sync.
func (s *EventSyncService) reconcileShares(ctx context.Context, event *models.CalendarEvent) {
	job := models.ShareReconcileJob{
		EventUID:  event.UID,
		Attendees: event.Attendees,
		RunAs:     s.Config.ServiceIdentity,
	}
	if err := s.MessageBuilder.SendShareReconcile(ctx, job); err != nil {
		slog.ErrorContext(ctx, "error queueing share reconciliation", logging.ErrKey, err,
			"event_uid", event.UID)
	}
}
