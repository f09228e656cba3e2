// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

// Package models contains the key-value store representations of the meet
// service records.
package models

import (
	"time"

	"github.com/docuflow/meet-service/pkg/rooms"
)

// MeetingStatus is the lifecycle status of a meeting.
type MeetingStatus string

const (
	// MeetingStatusActive means the conferencing room is live.
	MeetingStatusActive MeetingStatus = "Active"
	// MeetingStatusWaiting means everyone left the room but the meeting is
	// kept alive for a possible resume, subject to the sweep timeout.
	MeetingStatusWaiting MeetingStatus = "Waiting"
	// MeetingStatusEnded is terminal. No transition leaves it.
	MeetingStatusEnded MeetingStatus = "Ended"
)

// InvitationStatus is a participant's RSVP state.
type InvitationStatus string

const (
	InvitationAccepted InvitationStatus = "Accepted"
	InvitationRejected InvitationStatus = "Rejected"
	InvitationPending  InvitationStatus = "Pending"
)

// IsValid reports whether the status is one a caller may set via RSVP.
func (s InvitationStatus) IsValid() bool {
	return s == InvitationAccepted || s == InvitationRejected
}

// Participant is one row of a meeting's ordered participant collection.
type Participant struct {
	User             string           `json:"user"`
	InvitationStatus InvitationStatus `json:"invitation_status"`
}

// RepeatFrequency is the recurrence frequency of a repeating meeting.
type RepeatFrequency string

const (
	RepeatDaily   RepeatFrequency = "Daily"
	RepeatWeekly  RepeatFrequency = "Weekly"
	RepeatMonthly RepeatFrequency = "Monthly"
)

// Weekdays are the per-weekday flags of a weekly recurrence. Only meaningful
// when the meeting repeats weekly.
type Weekdays struct {
	Monday    bool `json:"monday"`
	Tuesday   bool `json:"tuesday"`
	Wednesday bool `json:"wednesday"`
	Thursday  bool `json:"thursday"`
	Friday    bool `json:"friday"`
	Saturday  bool `json:"saturday"`
	Sunday    bool `json:"sunday"`
}

// Any reports whether at least one weekday flag is set.
func (w Weekdays) Any() bool {
	return w.Monday || w.Tuesday || w.Wednesday || w.Thursday || w.Friday || w.Saturday || w.Sunday
}

// Meeting is the key-value store representation of a meeting session.
type Meeting struct {
	UID              string        `json:"uid"`
	SessionID        string        `json:"session_id"`
	Host             string        `json:"host"`
	ReferenceDocType string        `json:"reference_doctype,omitempty"`
	ReferenceDocName string        `json:"reference_docname,omitempty"`
	Status           MeetingStatus `json:"status"`
	StartTime        time.Time     `json:"start_time"`
	EndTime          *time.Time    `json:"end_time,omitempty"`
	Details          string        `json:"meeting_details,omitempty"`

	RepeatThisMeeting bool            `json:"repeat_this_meeting"`
	RepeatOn          RepeatFrequency `json:"repeat_on,omitempty"`
	RepeatTill        *time.Time      `json:"repeat_till,omitempty"`
	Weekdays          Weekdays        `json:"weekdays"`

	Participants []Participant `json:"participants,omitempty"`

	// EventUID is the back-reference to the linked calendar event, set on
	// first synchronization.
	EventUID string `json:"event_ref,omitempty"`

	// TranscriptStatus is only touched by the transcription job and has no
	// interaction with Status.
	TranscriptStatus TranscriptStatus `json:"transcript_status,omitempty"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// RoomName recomputes the conferencing room name from the meeting's fields.
// The name is derived, never stored.
func (m *Meeting) RoomName() string {
	return rooms.Encode(m.ReferenceDocType, m.ReferenceDocName, m.SessionID)
}

// IsParticipant reports whether the user appears in the participant list.
func (m *Meeting) IsParticipant(user string) bool {
	for _, p := range m.Participants {
		if p.User == user {
			return true
		}
	}
	return false
}

// Attendees is the calendar-event attendee set: the host plus every
// participant whose invitation status is not Rejected. The host comes first
// and duplicates are removed.
func (m *Meeting) Attendees() []string {
	attendees := make([]string, 0, len(m.Participants)+1)
	seen := make(map[string]bool)

	if m.Host != "" {
		attendees = append(attendees, m.Host)
		seen[m.Host] = true
	}
	for _, p := range m.Participants {
		if p.InvitationStatus == InvitationRejected || seen[p.User] {
			continue
		}
		attendees = append(attendees, p.User)
		seen[p.User] = true
	}
	return attendees
}

// ParticipantUsers returns the users in the participant list, in order.
func (m *Meeting) ParticipantUsers() []string {
	users := make([]string, 0, len(m.Participants))
	for _, p := range m.Participants {
		users = append(users, p.User)
	}
	return users
}

// Subject derives the calendar event subject from the reference document.
func (m *Meeting) Subject() string {
	if m.ReferenceDocName != "" {
		return "Video Meeting: " + m.ReferenceDocName
	}
	return "Video Meeting: Meeting"
}
