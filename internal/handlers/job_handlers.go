// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

// Package handlers consumes the meet service's NATS job subjects.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/go-viper/mapstructure/v2"

	"github.com/docuflow/meet-service/internal/domain"
	"github.com/docuflow/meet-service/internal/domain/models"
	"github.com/docuflow/meet-service/internal/logging"
	"github.com/docuflow/meet-service/internal/service"
)

// JobHandler dispatches background job messages to their services.
type JobHandler struct {
	invitationService    *service.InvitationService
	shareService         *service.ShareReconcileService
	transcriptionService *service.TranscriptionService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(
	invitationService *service.InvitationService,
	shareService *service.ShareReconcileService,
	transcriptionService *service.TranscriptionService,
) *JobHandler {
	return &JobHandler{
		invitationService:    invitationService,
		shareService:         shareService,
		transcriptionService: transcriptionService,
	}
}

// HandlerReady checks if the handler's services are ready.
func (h *JobHandler) HandlerReady() bool {
	return h.invitationService.ServiceReady() &&
		h.shareService.ServiceReady() &&
		h.transcriptionService.ServiceReady()
}

// HandleMessage implements the domain.MessageHandler interface.
func (h *JobHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	handlers := map[string]func(ctx context.Context, msg domain.Message) error{
		models.InviteParticipantsSubject:  h.handleInviteParticipants,
		models.ShareReconcileSubject:      h.handleShareReconcile,
		models.TranscribeRecordingSubject: h.handleTranscribeRecording,
	}

	handler, ok := handlers[subject]
	if !ok {
		slog.WarnContext(ctx, "unknown subject")
		return
	}

	if err := handler(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "error handling message", logging.ErrKey, err)
	}
}

func (h *JobHandler) handleInviteParticipants(ctx context.Context, msg domain.Message) error {
	var job models.InviteParticipantsJob
	if err := decodeJob(msg.Data(), &job); err != nil {
		return err
	}
	ctx = logging.AppendCtx(ctx, slog.String("run_as", job.RunAs))
	return h.invitationService.DispatchInvitations(ctx, job)
}

func (h *JobHandler) handleShareReconcile(ctx context.Context, msg domain.Message) error {
	var job models.ShareReconcileJob
	if err := decodeJob(msg.Data(), &job); err != nil {
		return err
	}
	ctx = logging.AppendCtx(ctx, slog.String("run_as", job.RunAs))
	return h.shareService.Reconcile(ctx, job)
}

func (h *JobHandler) handleTranscribeRecording(ctx context.Context, msg domain.Message) error {
	var job models.TranscribeRecordingJob
	if err := decodeJob(msg.Data(), &job); err != nil {
		return err
	}
	ctx = logging.AppendCtx(ctx, slog.String("run_as", job.RunAs))
	return h.transcriptionService.ProcessRecording(ctx, job)
}

// decodeJob unmarshals a job payload. Decoding goes through an intermediate
// map so unknown fields from newer producers are dropped instead of failing
// the job.
func decodeJob(data []byte, result any) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	config := mapstructure.DecoderConfig{
		TagName: "json",
		Result:  result,
	}
	decoder, err := mapstructure.NewDecoder(&config)
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}
