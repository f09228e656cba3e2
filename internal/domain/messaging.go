// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/docuflow/meet-service/internal/domain/models"
)

// Message represents an inbound queue message.
type Message interface {
	Subject() string
	Data() []byte
	Respond(data []byte) error
	HasReply() bool
}

// MessageHandler defines how the service handles incoming messages.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg Message)
	HandlerReady() bool
}

// MessageBuilder publishes the service's fire-and-forget background jobs.
// Publish failures are logged by implementations and must never propagate to
// the caller's success path.
type MessageBuilder interface {
	SendInviteParticipants(ctx context.Context, job models.InviteParticipantsJob) error
	SendShareReconcile(ctx context.Context, job models.ShareReconcileJob) error
	SendTranscribeRecording(ctx context.Context, job models.TranscribeRecordingJob) error
}
