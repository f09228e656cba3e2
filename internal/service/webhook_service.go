// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"time"

	"github.com/docuflow/meet-service/internal/domain"
	"github.com/docuflow/meet-service/internal/domain/models"
	"github.com/docuflow/meet-service/internal/logging"
	"github.com/docuflow/meet-service/pkg/rooms"
)

// Webhook event names sent by the conferencing backend.
const (
	WebhookRoomCreated    = "room_created"
	WebhookRoomDestroyed  = "room_destroyed"
	WebhookRecordingReady = "recording_ready"
)

// WebhookEvent is the payload posted by the conferencing backend. The room
// field carries the full room name as the backend saw it, query suffix and
// all.
type WebhookEvent struct {
	Event        string `json:"event"`
	RoomName     string `json:"room"`
	RecordingURL string `json:"recording_url,omitempty"`
}

// WebhookService handles conferencing backend callbacks. Events for unknown
// rooms and unknown event names are acknowledged and dropped, so the backend
// never retries them.
type WebhookService struct {
	MeetingRepository domain.MeetingRepository
	MessageBuilder    domain.MessageBuilder
	Secret            string
	Config            ServiceConfig
}

// NewWebhookService creates a new WebhookService.
func NewWebhookService(
	meetingRepository domain.MeetingRepository,
	messageBuilder domain.MessageBuilder,
	secret string,
	config ServiceConfig,
) *WebhookService {
	return &WebhookService{
		MeetingRepository: meetingRepository,
		MessageBuilder:    messageBuilder,
		Secret:            secret,
		Config:            config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *WebhookService) ServiceReady() bool {
	return s.MeetingRepository != nil && s.MessageBuilder != nil
}

// Authorize validates the shared webhook token. A deployment without a
// configured secret has its webhook disabled.
func (s *WebhookService) Authorize(token string) error {
	if s.Secret == "" {
		return domain.ErrWebhookUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.Secret)) != 1 {
		return domain.ErrWebhookUnauthorized
	}
	return nil
}

// HandleEvent applies a webhook event to the named room's meeting.
func (s *WebhookService) HandleEvent(ctx context.Context, event WebhookEvent) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}

	ctx = logging.AppendCtx(ctx, slog.String("webhook_event", event.Event))
	ctx = logging.AppendCtx(ctx, slog.String("room_name", event.RoomName))

	switch event.Event {
	case WebhookRoomCreated:
		return s.transition(ctx, event.RoomName, domain.StartMeeting)
	case WebhookRoomDestroyed:
		return s.transition(ctx, event.RoomName, domain.MarkMeetingWaiting)
	case WebhookRecordingReady:
		return s.queueTranscription(ctx, event)
	default:
		slog.DebugContext(ctx, "ignoring unknown webhook event")
		return nil
	}
}

// resolve looks up the meeting behind a room name. Unknown rooms come back
// nil without an error: webhooks for rooms this service does not manage are
// acknowledged and dropped.
func (s *WebhookService) resolve(ctx context.Context, roomName string) (*models.Meeting, uint64, error) {
	sessionID, err := rooms.Decode(roomName)
	if err != nil {
		slog.DebugContext(ctx, "webhook room name does not decode, dropping event")
		return nil, 0, nil
	}

	meeting, revision, err := s.MeetingRepository.GetBySessionID(ctx, sessionID)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			slog.DebugContext(ctx, "webhook for unmanaged room, dropping event")
			return nil, 0, nil
		}
		return nil, 0, err
	}
	return meeting, revision, nil
}

func (s *WebhookService) transition(
	ctx context.Context,
	roomName string,
	apply func(meeting *models.Meeting, now time.Time) ([]domain.Effect, error),
) error {
	meeting, revision, err := s.resolve(ctx, roomName)
	if err != nil || meeting == nil {
		return err
	}

	if _, err := apply(meeting, time.Now().UTC()); err != nil {
		// Transition refusals (e.g. a room_created for an Ended meeting)
		// are acknowledged, not retried.
		slog.WarnContext(ctx, "webhook transition refused", logging.ErrKey, err,
			"meeting_uid", meeting.UID)
		return nil
	}

	return s.MeetingRepository.Update(ctx, meeting, revision)
}

// queueTranscription publishes a transcription job for the room's recording.
func (s *WebhookService) queueTranscription(ctx context.Context, event WebhookEvent) error {
	if !s.Config.TranscriptionEnabled {
		slog.DebugContext(ctx, "transcription disabled, dropping recording event")
		return nil
	}
	if event.RecordingURL == "" {
		slog.WarnContext(ctx, "recording event without a recording URL, dropping")
		return nil
	}

	meeting, _, err := s.resolve(ctx, event.RoomName)
	if err != nil || meeting == nil {
		return err
	}

	job := models.TranscribeRecordingJob{
		MeetingUID:   meeting.UID,
		RecordingURL: event.RecordingURL,
		RunAs:        s.Config.ServiceIdentity,
	}
	return s.MessageBuilder.SendTranscribeRecording(ctx, job)
}
