// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/docuflow/meet-service/internal/domain"
	"github.com/docuflow/meet-service/internal/domain/models"
	"github.com/docuflow/meet-service/internal/logging"
	"github.com/docuflow/meet-service/pkg/concurrent"
	"github.com/docuflow/meet-service/pkg/constants"
)

// sweepWorkers bounds the concurrency of one sweep run.
const sweepWorkers = 10

// SweepService closes meetings that fell through the lifecycle: abandoned
// Waiting rooms, stuck Active rooms, and repeating meetings whose recurrence
// expired. Each record is handled independently; one failure never stops the
// rest of the run.
type SweepService struct {
	MeetingRepository domain.MeetingRepository
	EventSync         *EventSyncService
	Occurrences       *OccurrenceService
}

// NewSweepService creates a new SweepService.
func NewSweepService(
	meetingRepository domain.MeetingRepository,
	eventSync *EventSyncService,
	occurrences *OccurrenceService,
) *SweepService {
	return &SweepService{
		MeetingRepository: meetingRepository,
		EventSync:         eventSync,
		Occurrences:       occurrences,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *SweepService) ServiceReady() bool {
	return s.MeetingRepository != nil &&
		s.EventSync != nil &&
		s.Occurrences != nil
}

// Sweep runs the three passes over all stored meetings.
func (s *SweepService) Sweep(ctx context.Context, now time.Time) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}

	meetings, err := s.MeetingRepository.ListAll(ctx)
	if err != nil {
		return err
	}

	var functions []func() error
	for _, meeting := range meetings {
		if meeting.Status == models.MeetingStatusEnded {
			continue
		}
		if reason := s.endReason(meeting, now); reason != "" {
			uid := meeting.UID
			functions = append(functions, func() error {
				return s.forceEnd(ctx, uid, reason, now)
			})
		}
	}

	if len(functions) == 0 {
		return nil
	}

	pool := concurrent.NewWorkerPool(sweepWorkers)
	errs := pool.RunAll(ctx, functions...)
	for _, err := range errs {
		slog.ErrorContext(ctx, "sweep: error ending meeting", logging.ErrKey, err)
	}

	slog.InfoContext(ctx, "sweep finished",
		"candidates", len(functions), "failures", len(errs))
	return nil
}

// endReason classifies a live meeting against the three sweep policies. An
// empty reason means the meeting is left alone.
func (s *SweepService) endReason(meeting *models.Meeting, now time.Time) string {
	if s.Occurrences.RecurrenceExpired(meeting, now) {
		return "recurrence expired"
	}
	if meeting.RepeatThisMeeting {
		// Repeating meetings only end through recurrence expiry.
		return ""
	}

	switch meeting.Status {
	case models.MeetingStatusWaiting:
		lastModified := meeting.StartTime
		if meeting.UpdatedAt != nil {
			lastModified = *meeting.UpdatedAt
		}
		if now.Sub(lastModified) > constants.WaitingTimeout {
			return "abandoned in waiting"
		}
	case models.MeetingStatusActive:
		if now.Sub(meeting.StartTime) > constants.StuckActiveTimeout {
			return "stuck active"
		}
	}
	return ""
}

// forceEnd re-reads the meeting at its current revision and applies the
// terminal transition. Losing the revision race means another writer touched
// the record; the next run re-evaluates it.
func (s *SweepService) forceEnd(ctx context.Context, uid, reason string, now time.Time) error {
	meeting, revision, err := s.MeetingRepository.GetWithRevision(ctx, uid)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return nil
		}
		return err
	}

	// Re-check against the fresh read.
	if s.endReason(meeting, now) == "" {
		return nil
	}

	effects := domain.ForceEndMeeting(meeting, now)
	if len(effects) == 0 {
		return nil
	}

	if err := s.MeetingRepository.Update(ctx, meeting, revision); err != nil {
		if errors.Is(err, domain.ErrRevisionMismatch) {
			slog.DebugContext(ctx, "sweep: lost revision race, skipping", "meeting_uid", uid)
			return nil
		}
		return err
	}

	slog.InfoContext(ctx, "sweep: ended meeting", "meeting_uid", uid, "reason", reason)

	for _, effect := range effects {
		if effect.Type != domain.EffectCompleteEvent {
			continue
		}
		if err := s.EventSync.Complete(ctx, meeting); err != nil {
			slog.ErrorContext(ctx, "sweep: error completing calendar event", logging.ErrKey, err,
				"meeting_uid", uid)
		}
	}
	return nil
}
