// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package models

import "time"

// TranscriptStatus tracks the post-meeting transcription job. It is fully
// decoupled from MeetingStatus; the two share only the meeting UID.
type TranscriptStatus string

const (
	TranscriptStatusProcessing TranscriptStatus = "Processing"
	TranscriptStatusCompleted  TranscriptStatus = "Completed"
	TranscriptStatusFailed     TranscriptStatus = "Failed"
)

// Transcript is the stored result of a transcription job, keyed by meeting
// UID.
type Transcript struct {
	MeetingUID string           `json:"meeting_uid"`
	Status     TranscriptStatus `json:"status"`
	Language   string           `json:"language,omitempty"`
	Text       string           `json:"text,omitempty"`
	// Error holds the failure reason when Status is Failed.
	Error     string     `json:"error,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
