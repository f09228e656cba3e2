// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/docuflow/meet-service/internal/domain/models"
	"github.com/docuflow/meet-service/internal/logging"
)

// INatsConn is the NATS connection interface needed for the [MessageBuilder].
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// MessageBuilder marshals background jobs and sends them to the NATS server.
type MessageBuilder struct {
	NatsConn INatsConn
}

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
	}
}

// publish sends the message to the NATS server.
func (m *MessageBuilder) publish(ctx context.Context, subject string, data []byte) error {
	err := m.NatsConn.Publish(subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// publishJob marshals a job payload and publishes it on the subject.
func (m *MessageBuilder) publishJob(ctx context.Context, subject string, job any) error {
	data, err := json.Marshal(job)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling job into JSON", logging.ErrKey, err, "subject", subject)
		return err
	}
	return m.publish(ctx, subject, data)
}

// SendInviteParticipants publishes an invitation dispatch job.
func (m *MessageBuilder) SendInviteParticipants(ctx context.Context, job models.InviteParticipantsJob) error {
	return m.publishJob(ctx, models.InviteParticipantsSubject, job)
}

// SendShareReconcile publishes a share reconciliation job.
func (m *MessageBuilder) SendShareReconcile(ctx context.Context, job models.ShareReconcileJob) error {
	return m.publishJob(ctx, models.ShareReconcileSubject, job)
}

// SendTranscribeRecording publishes a transcription job.
func (m *MessageBuilder) SendTranscribeRecording(ctx context.Context, job models.TranscribeRecordingJob) error {
	return m.publishJob(ctx, models.TranscribeRecordingSubject, job)
}
