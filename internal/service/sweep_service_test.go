// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/meet-service/internal/domain"
	"github.com/docuflow/meet-service/internal/domain/mocks"
	"github.com/docuflow/meet-service/internal/domain/models"
	"github.com/docuflow/meet-service/pkg/utils"
)

func newSweepFixture() (*SweepService, *mocks.MockMeetingRepository, *mocks.MockEventRepository) {
	meetingRepo := new(mocks.MockMeetingRepository)
	eventRepo := new(mocks.MockEventRepository)
	builder := new(mocks.MockMessageBuilder)
	eventSync := NewEventSyncService(eventRepo, builder, NewOccurrenceService(), testConfig())
	return NewSweepService(meetingRepo, eventSync, NewOccurrenceService()), meetingRepo, eventRepo
}

func sweepMeeting(uid string, status models.MeetingStatus) *models.Meeting {
	return &models.Meeting{
		UID:       uid,
		SessionID: "sid" + uid,
		Host:      "alice@example.com",
		Status:    status,
	}
}

func TestSweepServiceSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)

	t.Run("abandoned waiting meeting is ended", func(t *testing.T) {
		service, meetingRepo, _ := newSweepFixture()

		stale := sweepMeeting("w1", models.MeetingStatusWaiting)
		stale.StartTime = now.Add(-3 * time.Hour)
		stale.UpdatedAt = utils.TimePtr(now.Add(-2 * time.Hour))

		meetingRepo.On("ListAll", mock.Anything).Return([]*models.Meeting{stale}, nil)
		meetingRepo.On("GetWithRevision", mock.Anything, "w1").Return(stale, uint64(5), nil)
		meetingRepo.On("Update", mock.Anything, stale, uint64(5)).Return(nil)

		err := service.Sweep(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, models.MeetingStatusEnded, stale.Status)
		require.NotNil(t, stale.EndTime)
	})

	t.Run("fresh waiting meeting is left alone", func(t *testing.T) {
		service, meetingRepo, _ := newSweepFixture()

		fresh := sweepMeeting("w2", models.MeetingStatusWaiting)
		fresh.StartTime = now.Add(-10 * time.Minute)
		fresh.UpdatedAt = utils.TimePtr(now.Add(-10 * time.Minute))

		meetingRepo.On("ListAll", mock.Anything).Return([]*models.Meeting{fresh}, nil)

		err := service.Sweep(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, models.MeetingStatusWaiting, fresh.Status)
		meetingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stuck active meeting is ended", func(t *testing.T) {
		service, meetingRepo, _ := newSweepFixture()

		stuck := sweepMeeting("a1", models.MeetingStatusActive)
		stuck.StartTime = now.Add(-25 * time.Hour)

		meetingRepo.On("ListAll", mock.Anything).Return([]*models.Meeting{stuck}, nil)
		meetingRepo.On("GetWithRevision", mock.Anything, "a1").Return(stuck, uint64(2), nil)
		meetingRepo.On("Update", mock.Anything, stuck, uint64(2)).Return(nil)

		err := service.Sweep(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, models.MeetingStatusEnded, stuck.Status)
	})

	t.Run("recent active meeting survives a stale record timestamp", func(t *testing.T) {
		service, meetingRepo, _ := newSweepFixture()

		// The 24-hour rule keys off the start time, never off when the
		// record was last written.
		running := sweepMeeting("a2", models.MeetingStatusActive)
		running.StartTime = now.Add(-2 * time.Hour)
		running.UpdatedAt = utils.TimePtr(now.Add(-30 * time.Hour))

		meetingRepo.On("ListAll", mock.Anything).Return([]*models.Meeting{running}, nil)

		err := service.Sweep(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, models.MeetingStatusActive, running.Status)
		meetingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("repeating meeting ends only through recurrence expiry", func(t *testing.T) {
		service, meetingRepo, _ := newSweepFixture()

		perpetual := sweepMeeting("r1", models.MeetingStatusWaiting)
		perpetual.RepeatThisMeeting = true
		perpetual.RepeatOn = models.RepeatDaily
		perpetual.StartTime = now.Add(-48 * time.Hour)
		perpetual.UpdatedAt = utils.TimePtr(now.Add(-48 * time.Hour))

		expired := sweepMeeting("r2", models.MeetingStatusWaiting)
		expired.RepeatThisMeeting = true
		expired.RepeatOn = models.RepeatDaily
		expired.RepeatTill = utils.TimePtr(now.AddDate(0, 0, -2))

		meetingRepo.On("ListAll", mock.Anything).Return([]*models.Meeting{perpetual, expired}, nil)
		meetingRepo.On("GetWithRevision", mock.Anything, "r2").Return(expired, uint64(7), nil)
		meetingRepo.On("Update", mock.Anything, expired, uint64(7)).Return(nil)

		err := service.Sweep(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, models.MeetingStatusWaiting, perpetual.Status)
		assert.Equal(t, models.MeetingStatusEnded, expired.Status)
		meetingRepo.AssertNotCalled(t, "GetWithRevision", mock.Anything, "r1")
	})

	t.Run("lost revision race is tolerated", func(t *testing.T) {
		service, meetingRepo, _ := newSweepFixture()

		stale := sweepMeeting("w3", models.MeetingStatusWaiting)
		stale.UpdatedAt = utils.TimePtr(now.Add(-2 * time.Hour))

		meetingRepo.On("ListAll", mock.Anything).Return([]*models.Meeting{stale}, nil)
		meetingRepo.On("GetWithRevision", mock.Anything, "w3").Return(stale, uint64(5), nil)
		meetingRepo.On("Update", mock.Anything, stale, uint64(5)).Return(domain.ErrRevisionMismatch)

		err := service.Sweep(ctx, now)
		assert.NoError(t, err)
	})

	t.Run("completes the linked event of an ended meeting", func(t *testing.T) {
		service, meetingRepo, eventRepo := newSweepFixture()

		stale := sweepMeeting("w4", models.MeetingStatusWaiting)
		stale.UpdatedAt = utils.TimePtr(now.Add(-2 * time.Hour))
		stale.EventUID = "evt-4"

		meetingRepo.On("ListAll", mock.Anything).Return([]*models.Meeting{stale}, nil)
		meetingRepo.On("GetWithRevision", mock.Anything, "w4").Return(stale, uint64(5), nil)
		meetingRepo.On("Update", mock.Anything, stale, uint64(5)).Return(nil)

		event := &models.CalendarEvent{UID: "evt-4", Status: models.EventStatusOpen}
		eventRepo.On("GetWithRevision", mock.Anything, "evt-4").Return(event, uint64(1), nil)
		eventRepo.On("Update", mock.Anything, event, uint64(1)).Return(nil)

		err := service.Sweep(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, models.EventStatusCompleted, event.Status)
	})
}
