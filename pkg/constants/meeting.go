// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package constants

import "time"

// Lifecycle policy constants.
const (
	// WaitingTimeout is how long a non-repeating meeting may sit in the
	// Waiting status before the sweep forces it to Ended.
	WaitingTimeout = time.Hour

	// StuckActiveTimeout is how long after its start time a non-repeating
	// Active meeting is presumed abandoned and forced to Ended.
	StuckActiveTimeout = 24 * time.Hour

	// DefaultMeetingDuration is the calendar window used when a meeting has
	// no end time.
	DefaultMeetingDuration = time.Hour

	// TokenTTL is the lifetime of an issued conferencing token.
	TokenTTL = 2 * time.Hour
)
