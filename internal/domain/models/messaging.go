// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package models

// NATS subjects for the meet service's background jobs. Consumers join the
// MeetQueue queue group so each job is delivered to one instance.
const (
	// InviteParticipantsSubject carries invitation dispatch jobs.
	InviteParticipantsSubject = "docuflow.meet.invite"

	// ShareReconcileSubject carries share reconciliation jobs.
	ShareReconcileSubject = "docuflow.meet.share_reconcile"

	// TranscribeRecordingSubject carries transcription jobs.
	TranscribeRecordingSubject = "docuflow.meet.transcribe"

	// MeetQueue is the queue group joined by all meet-api instances.
	MeetQueue = "meet-api"
)

// InviteParticipantsJob asks a consumer to share the meeting with each added
// user and deliver their notifications and invitation emails.
//
// RunAs is the explicit service identity the job executes under; jobs never
// inherit the triggering user's ambient session.
type InviteParticipantsJob struct {
	MeetingUID string   `json:"meeting_uid"`
	AddedUsers []string `json:"added_users"`
	RunAs      string   `json:"run_as"`
}

// ShareReconcileJob asks a consumer to align an event's share grants with the
// attendee set: grant to missing users, revoke from stale ones except the
// owner. Idempotent for a given attendee set.
type ShareReconcileJob struct {
	EventUID  string   `json:"event_uid"`
	Attendees []string `json:"attendees"`
	RunAs     string   `json:"run_as"`
}

// TranscribeRecordingJob asks a consumer to transcribe a meeting recording.
type TranscribeRecordingJob struct {
	MeetingUID   string `json:"meeting_uid"`
	RecordingURL string `json:"recording_url"`
	RunAs        string `json:"run_as"`
}
