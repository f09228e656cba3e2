// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package models

import "time"

// EventStatus is the lifecycle status of a calendar event.
type EventStatus string

const (
	EventStatusOpen      EventStatus = "Open"
	EventStatusCompleted EventStatus = "Completed"
)

// CalendarEvent is the key-value store representation of the calendar record
// kept in sync with a meeting. Owned 1:1 by a meeting via Meeting.EventUID.
type CalendarEvent struct {
	UID         string      `json:"uid"`
	Subject     string      `json:"subject"`
	StartsOn    time.Time   `json:"starts_on"`
	EndsOn      time.Time   `json:"ends_on"`
	Status      EventStatus `json:"status"`
	Description string      `json:"description,omitempty"`

	// Owner is the user the event was created on behalf of. Share
	// reconciliation never revokes the owner's grant.
	Owner string `json:"owner"`

	// Attendees mirrors the meeting's computed attendee set.
	Attendees []string `json:"event_participants,omitempty"`

	// Recurrence mirror fields, copied from the meeting.
	Repeat     bool            `json:"repeat_this_event"`
	RepeatOn   RepeatFrequency `json:"repeat_on,omitempty"`
	RepeatTill *time.Time      `json:"repeat_till,omitempty"`

	// RRule is the RFC 5545 recurrence rule derived from the mirror fields,
	// carried for calendar export.
	RRule string `json:"rrule,omitempty"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// HasAttendee reports whether the user is in the attendee set.
func (e *CalendarEvent) HasAttendee(user string) bool {
	for _, a := range e.Attendees {
		if a == user {
			return true
		}
	}
	return false
}
