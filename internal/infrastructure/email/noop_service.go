// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package email

import (
	"context"
	"log/slog"

	"github.com/docuflow/meet-service/internal/domain"
	"github.com/docuflow/meet-service/internal/logging"
)

// NoOpService is a no-operation email service that logs but doesn't send emails.
// Used when no SMTP host is configured.
type NoOpService struct{}

// NewNoOpService creates a new no-op email service.
func NewNoOpService() *NoOpService {
	return &NoOpService{}
}

// SendMeetingInvitation logs the invitation but doesn't send an email.
func (s *NoOpService) SendMeetingInvitation(ctx context.Context, invitation domain.EmailInvitation) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", invitation.RecipientEmail))
	slog.DebugContext(ctx, "email service disabled, skipping invitation email")
	return nil
}
