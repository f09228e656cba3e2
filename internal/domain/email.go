// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package domain

import "context"

// EmailInvitation carries everything an invitation email needs.
type EmailInvitation struct {
	RecipientEmail string
	RecipientName  string
	MeetingSubject string
	ReferenceDoc   string
	JoinLink       string
	HostName       string
}

// EmailService delivers meeting emails. Implementations must be safe to call
// from background jobs; failures are logged, never surfaced to the
// triggering request.
type EmailService interface {
	SendMeetingInvitation(ctx context.Context, invitation EmailInvitation) error
}
