// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/meet-service/internal/domain/models"
)

var transitionNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func waitingMeeting() *models.Meeting {
	return &models.Meeting{
		UID:       "m-1",
		SessionID: "a1b2c3d4",
		Host:      "host@example.com",
		Status:    models.MeetingStatusWaiting,
		StartTime: transitionNow.Add(-time.Hour),
		Participants: []models.Participant{
			{User: "host@example.com", InvitationStatus: models.InvitationAccepted},
			{User: "alice@example.com", InvitationStatus: models.InvitationPending},
		},
	}
}

func TestStartMeeting(t *testing.T) {
	tests := []struct {
		name           string
		status         models.MeetingStatus
		expectedStatus models.MeetingStatus
		expectedErr    error
	}{
		{"waiting becomes active", models.MeetingStatusWaiting, models.MeetingStatusActive, nil},
		{"already active is a no-op", models.MeetingStatusActive, models.MeetingStatusActive, nil},
		{"ended is absorbing", models.MeetingStatusEnded, models.MeetingStatusEnded, ErrMeetingNotActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := waitingMeeting()
			m.Status = tt.status

			_, err := StartMeeting(m, transitionNow)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectedStatus, m.Status)
		})
	}
}

func TestMarkMeetingWaiting(t *testing.T) {
	m := waitingMeeting()
	m.Status = models.MeetingStatusActive

	_, err := MarkMeetingWaiting(m, transitionNow)
	require.NoError(t, err)
	assert.Equal(t, models.MeetingStatusWaiting, m.Status)

	// Ended stays Ended.
	m.Status = models.MeetingStatusEnded
	_, err = MarkMeetingWaiting(m, transitionNow)
	require.NoError(t, err)
	assert.Equal(t, models.MeetingStatusEnded, m.Status)
}

func TestEndMeeting(t *testing.T) {
	m := waitingMeeting()
	m.Status = models.MeetingStatusActive

	effects, err := EndMeeting(m, transitionNow)
	require.NoError(t, err)
	assert.Equal(t, models.MeetingStatusEnded, m.Status)
	require.NotNil(t, m.EndTime)
	assert.Equal(t, transitionNow, *m.EndTime)
	require.Len(t, effects, 1)
	assert.Equal(t, EffectCompleteEvent, effects[0].Type)
}

func TestEndMeeting_AlreadyEndedIsNoOp(t *testing.T) {
	m := waitingMeeting()
	firstEnd := transitionNow.Add(-30 * time.Minute)
	m.Status = models.MeetingStatusEnded
	m.EndTime = &firstEnd

	effects, err := EndMeeting(m, transitionNow)
	require.NoError(t, err)
	assert.Empty(t, effects)
	// The end time is not advanced a second time.
	assert.Equal(t, firstEnd, *m.EndTime)
}

func TestEndMeeting_RepeatingRejected(t *testing.T) {
	for _, status := range []models.MeetingStatus{
		models.MeetingStatusActive,
		models.MeetingStatusWaiting,
		models.MeetingStatusEnded,
	} {
		m := waitingMeeting()
		m.Status = status
		m.RepeatThisMeeting = true

		_, err := EndMeeting(m, transitionNow)
		assert.ErrorIs(t, err, ErrRepeatingMeetingEnd, "status %s", status)
	}
}

func TestForceEndMeeting(t *testing.T) {
	m := waitingMeeting()
	m.RepeatThisMeeting = true
	m.Status = models.MeetingStatusActive

	effects := ForceEndMeeting(m, transitionNow)
	assert.Equal(t, models.MeetingStatusEnded, m.Status)
	require.Len(t, effects, 1)
	assert.Equal(t, EffectCompleteEvent, effects[0].Type)

	// Repeated application is a no-op.
	assert.Empty(t, ForceEndMeeting(m, transitionNow.Add(time.Minute)))
	assert.Equal(t, transitionNow, *m.EndTime)
}

func TestAuthorizeJoin(t *testing.T) {
	tests := []struct {
		name        string
		status      models.MeetingStatus
		user        string
		moderator   bool
		expectedErr error
	}{
		{"host joins active as moderator", models.MeetingStatusActive, "host@example.com", true, nil},
		{"host joins waiting as moderator", models.MeetingStatusWaiting, "host@example.com", true, nil},
		{"participant joins without moderator", models.MeetingStatusActive, "alice@example.com", false, nil},
		{"guest joins without membership check", models.MeetingStatusActive, "", false, nil},
		{"non-participant is forbidden", models.MeetingStatusActive, "mallory@example.com", false, ErrNotInvited},
		{"ended meeting rejects host", models.MeetingStatusEnded, "host@example.com", false, ErrMeetingNotActive},
		{"ended meeting rejects guest", models.MeetingStatusEnded, "", false, ErrMeetingNotActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := waitingMeeting()
			m.Status = tt.status

			moderator, err := AuthorizeJoin(m, tt.user)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.moderator, moderator)
		})
	}
}

func TestApplyRSVP(t *testing.T) {
	m := waitingMeeting()

	effects, err := ApplyRSVP(m, "alice@example.com", models.InvitationRejected, transitionNow)
	require.NoError(t, err)
	require.Len(t, effects, 1)
	assert.Equal(t, EffectSyncEvent, effects[0].Type)
	assert.Equal(t, models.InvitationRejected, m.Participants[1].InvitationStatus)

	// A rejected participant drops out of the computed attendee set.
	assert.NotContains(t, m.Attendees(), "alice@example.com")
}

func TestApplyRSVP_DoesNotAdvanceUpdatedAt(t *testing.T) {
	m := waitingMeeting()
	stale := transitionNow.Add(-50 * time.Minute)
	m.UpdatedAt = &stale

	// An RSVP must not reset the waiting-timeout clock the sweep reads.
	_, err := ApplyRSVP(m, "alice@example.com", models.InvitationAccepted, transitionNow)
	require.NoError(t, err)
	require.NotNil(t, m.UpdatedAt)
	assert.Equal(t, stale, *m.UpdatedAt)
}

func TestApplyRSVP_SameStatusIsNoOp(t *testing.T) {
	m := waitingMeeting()

	effects, err := ApplyRSVP(m, "host@example.com", models.InvitationAccepted, transitionNow)
	require.NoError(t, err)
	assert.Empty(t, effects)
}

func TestApplyRSVP_NotAParticipant(t *testing.T) {
	m := waitingMeeting()

	_, err := ApplyRSVP(m, "mallory@example.com", models.InvitationAccepted, transitionNow)
	assert.ErrorIs(t, err, ErrNotAParticipant)
}

func TestApplyRSVP_InvalidStatus(t *testing.T) {
	m := waitingMeeting()

	_, err := ApplyRSVP(m, "alice@example.com", models.InvitationPending, transitionNow)
	require.Error(t, err)
	assert.Equal(t, ErrorTypeValidation, GetErrorType(err))
}

func TestReplaceParticipants(t *testing.T) {
	m := waitingMeeting()

	effects, err := ReplaceParticipants(m, []models.Participant{
		{User: "alice@example.com", InvitationStatus: models.InvitationPending},
		{User: "dave@example.com"},
	}, transitionNow)
	require.NoError(t, err)

	// Host stays first and Accepted.
	require.NotEmpty(t, m.Participants)
	assert.Equal(t, "host@example.com", m.Participants[0].User)
	assert.Equal(t, models.InvitationAccepted, m.Participants[0].InvitationStatus)

	// Dave was added with a Pending default.
	assert.True(t, m.IsParticipant("dave@example.com"))
	assert.Equal(t, models.InvitationPending, m.Participants[2].InvitationStatus)

	require.Len(t, effects, 2)
	assert.Equal(t, EffectSyncEvent, effects[0].Type)
	assert.Equal(t, EffectDispatchInvites, effects[1].Type)
	assert.Equal(t, []string{"dave@example.com"}, effects[1].AddedUsers)
}

func TestReplaceParticipants_NoAdditions(t *testing.T) {
	m := waitingMeeting()

	effects, err := ReplaceParticipants(m, []models.Participant{
		{User: "alice@example.com", InvitationStatus: models.InvitationPending},
	}, transitionNow)
	require.NoError(t, err)
	require.Len(t, effects, 1)
	assert.Equal(t, EffectSyncEvent, effects[0].Type)
}

func TestReplaceParticipants_EndedMeeting(t *testing.T) {
	m := waitingMeeting()
	m.Status = models.MeetingStatusEnded

	_, err := ReplaceParticipants(m, nil, transitionNow)
	assert.ErrorIs(t, err, ErrMeetingNotActive)
}
