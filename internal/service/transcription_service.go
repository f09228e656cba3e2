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

// TranscriptionService runs the post-meeting transcription job. The
// transcript status lives beside the meeting but never interacts with its
// lifecycle status.
type TranscriptionService struct {
	MeetingRepository    domain.MeetingRepository
	TranscriptRepository domain.TranscriptRepository
	SpeechToText         domain.SpeechToText
	Config               ServiceConfig
}

// NewTranscriptionService creates a new TranscriptionService.
func NewTranscriptionService(
	meetingRepository domain.MeetingRepository,
	transcriptRepository domain.TranscriptRepository,
	speechToText domain.SpeechToText,
	config ServiceConfig,
) *TranscriptionService {
	return &TranscriptionService{
		MeetingRepository:    meetingRepository,
		TranscriptRepository: transcriptRepository,
		SpeechToText:         speechToText,
		Config:               config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *TranscriptionService) ServiceReady() bool {
	return s.MeetingRepository != nil &&
		s.TranscriptRepository != nil &&
		s.SpeechToText != nil
}

// ProcessRecording handles one transcription job end to end.
func (s *TranscriptionService) ProcessRecording(ctx context.Context, job models.TranscribeRecordingJob) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}
	if !s.Config.TranscriptionEnabled {
		slog.DebugContext(ctx, "transcription disabled, dropping job", "meeting_uid", job.MeetingUID)
		return domain.ErrTranscriptionDisabled
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", job.MeetingUID))

	if _, err := s.MeetingRepository.Get(ctx, job.MeetingUID); err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			slog.WarnContext(ctx, "transcription job for missing meeting, dropping")
			return nil
		}
		return err
	}

	if err := s.setStatus(ctx, job.MeetingUID, models.TranscriptStatusProcessing, "", "", ""); err != nil {
		return err
	}

	result, err := s.SpeechToText.Transcribe(ctx, job.RecordingURL)
	if err != nil {
		slog.ErrorContext(ctx, "transcription failed", logging.ErrKey, err)
		return s.setStatus(ctx, job.MeetingUID, models.TranscriptStatusFailed, "", "", err.Error())
	}

	slog.InfoContext(ctx, "transcription completed", "language", result.Language)
	return s.setStatus(ctx, job.MeetingUID, models.TranscriptStatusCompleted, result.Text, result.Language, "")
}

// GetTranscript fetches the stored transcript for a meeting.
func (s *TranscriptionService) GetTranscript(ctx context.Context, meetingUID string) (*models.Transcript, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	return s.TranscriptRepository.Get(ctx, meetingUID)
}

// setStatus writes the transcript record and mirrors the status onto the
// meeting. The meeting mirror is best-effort: a lost revision race leaves
// the transcript record authoritative.
func (s *TranscriptionService) setStatus(ctx context.Context, meetingUID string, status models.TranscriptStatus, text, language, failure string) error {
	now := time.Now().UTC()
	transcript := &models.Transcript{
		MeetingUID: meetingUID,
		Status:     status,
		Language:   language,
		Text:       text,
		Error:      failure,
		UpdatedAt:  &now,
	}
	if err := s.TranscriptRepository.Put(ctx, transcript); err != nil {
		return err
	}

	meeting, revision, err := s.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		slog.WarnContext(ctx, "could not mirror transcript status onto meeting", logging.ErrKey, err)
		return nil
	}
	meeting.TranscriptStatus = status
	if err := s.MeetingRepository.Update(ctx, meeting, revision); err != nil {
		slog.WarnContext(ctx, "could not mirror transcript status onto meeting", logging.ErrKey, err)
	}
	return nil
}
