// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

// Package domain holds the meeting lifecycle rules, the error taxonomy, and
// the interfaces its collaborators implement.
package domain

import (
	"time"

	"github.com/docuflow/meet-service/internal/domain/models"
)

// EffectType identifies a side effect a transition asks its caller to carry
// out. Transitions mutate only the meeting itself; everything touching other
// records or the job queue is returned as an intent so the transition logic
// stays testable without a live backend.
type EffectType string

const (
	// EffectSyncEvent asks for the linked calendar event to be synchronized
	// with the meeting's participants and time window.
	EffectSyncEvent EffectType = "sync_event"

	// EffectCompleteEvent asks for the linked calendar event to be marked
	// Completed.
	EffectCompleteEvent EffectType = "complete_event"

	// EffectDispatchInvites asks for invitation delivery to the added users.
	EffectDispatchInvites EffectType = "dispatch_invites"
)

// Effect is one side-effect intent emitted by a transition.
type Effect struct {
	Type EffectType
	// AddedUsers is set for EffectDispatchInvites.
	AddedUsers []string
}

// StartMeeting applies the manual-start (or webhook room_created) transition.
// Waiting becomes Active; starting an already-Active meeting is a silent
// no-op. Ended is absorbing.
func StartMeeting(m *models.Meeting, now time.Time) ([]Effect, error) {
	switch m.Status {
	case models.MeetingStatusEnded:
		return nil, ErrMeetingNotActive
	case models.MeetingStatusActive:
		return nil, nil
	}

	m.Status = models.MeetingStatusActive
	m.UpdatedAt = &now
	return nil, nil
}

// MarkMeetingWaiting applies the webhook room_destroyed transition: everyone
// left the room, but the meeting is kept alive for a possible resume. The
// sweep's timeout policy decides its fate. Ended stays Ended.
func MarkMeetingWaiting(m *models.Meeting, now time.Time) ([]Effect, error) {
	switch m.Status {
	case models.MeetingStatusEnded, models.MeetingStatusWaiting:
		return nil, nil
	}

	m.Status = models.MeetingStatusWaiting
	m.UpdatedAt = &now
	return nil, nil
}

// EndMeeting applies the manual-end transition. Repeating meetings cannot be
// manually ended regardless of status. Ending an already-Ended meeting is a
// silent no-op and does not advance the end time.
func EndMeeting(m *models.Meeting, now time.Time) ([]Effect, error) {
	if m.RepeatThisMeeting {
		return nil, ErrRepeatingMeetingEnd
	}
	if m.Status == models.MeetingStatusEnded {
		return nil, nil
	}

	m.Status = models.MeetingStatusEnded
	m.EndTime = &now
	m.UpdatedAt = &now
	return []Effect{{Type: EffectCompleteEvent}}, nil
}

// ForceEndMeeting is the sweep's terminal transition. Unlike EndMeeting it
// also closes repeating meetings (recurrence expiry). Idempotent on Ended.
func ForceEndMeeting(m *models.Meeting, now time.Time) []Effect {
	if m.Status == models.MeetingStatusEnded {
		return nil
	}

	m.Status = models.MeetingStatusEnded
	m.EndTime = &now
	m.UpdatedAt = &now
	return []Effect{{Type: EffectCompleteEvent}}
}

// AuthorizeJoin decides whether user may join the room and with which role.
// An empty user is a guest: guests skip the membership check but the meeting
// must still be joinable. The host joins as moderator.
func AuthorizeJoin(m *models.Meeting, user string) (moderator bool, err error) {
	joinable := m.Status == models.MeetingStatusActive || m.Status == models.MeetingStatusWaiting
	if !joinable {
		return false, ErrMeetingNotActive
	}

	if user == "" {
		return false, nil
	}
	if user == m.Host {
		return true, nil
	}
	if m.IsParticipant(user) {
		return false, nil
	}
	return false, ErrNotInvited
}

// ApplyRSVP records a participant's invitation response. Re-applying the
// same response is a silent no-op that emits no effects.
//
// UpdatedAt is left untouched: an RSVP is not meeting activity and must not
// reset the waiting-timeout clock the sweep keys off.
func ApplyRSVP(m *models.Meeting, user string, status models.InvitationStatus, _ time.Time) ([]Effect, error) {
	if !status.IsValid() {
		return nil, NewValidationError("invalid invitation status")
	}

	for i := range m.Participants {
		if m.Participants[i].User != user {
			continue
		}
		if m.Participants[i].InvitationStatus == status {
			return nil, nil
		}
		m.Participants[i].InvitationStatus = status
		return []Effect{{Type: EffectSyncEvent}}, nil
	}

	return nil, ErrNotAParticipant
}

// ReplaceParticipants swaps the participant list, keeping the host as the
// first, Accepted row. It emits a sync intent and, when the list gained
// users, an invitation-dispatch intent with the delta.
func ReplaceParticipants(m *models.Meeting, participants []models.Participant, now time.Time) ([]Effect, error) {
	if m.Status == models.MeetingStatusEnded {
		return nil, ErrMeetingNotActive
	}

	before := make(map[string]bool, len(m.Participants))
	for _, p := range m.Participants {
		before[p.User] = true
	}

	next := []models.Participant{{User: m.Host, InvitationStatus: models.InvitationAccepted}}
	seen := map[string]bool{m.Host: true}
	for _, p := range participants {
		if p.User == "" || seen[p.User] {
			continue
		}
		if p.InvitationStatus == "" {
			p.InvitationStatus = models.InvitationPending
		}
		next = append(next, p)
		seen[p.User] = true
	}

	var added []string
	for _, p := range next {
		if !before[p.User] {
			added = append(added, p.User)
		}
	}

	m.Participants = next
	m.UpdatedAt = &now

	effects := []Effect{{Type: EffectSyncEvent}}
	if len(added) > 0 {
		effects = append(effects, Effect{Type: EffectDispatchInvites, AddedUsers: added})
	}
	return effects, nil
}
