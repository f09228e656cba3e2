// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

// Package email delivers meeting invitation emails over SMTP.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docuflow/meet-service/internal/domain"
	"github.com/docuflow/meet-service/internal/logging"
)

// SMTPConfig holds the SMTP server configuration.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string // Optional for authenticated SMTP
	Password string // Optional for authenticated SMTP
}

// SMTPService implements the EmailService interface using SMTP.
type SMTPService struct {
	config    SMTPConfig
	templates *TemplateManager
}

// NewSMTPService creates a new SMTP email service.
func NewSMTPService(config SMTPConfig) (*SMTPService, error) {
	templates, err := NewTemplateManager()
	if err != nil {
		return nil, err
	}
	return &SMTPService{
		config:    config,
		templates: templates,
	}, nil
}

// SendMeetingInvitation renders and delivers an invitation email.
func (s *SMTPService) SendMeetingInvitation(ctx context.Context, invitation domain.EmailInvitation) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", invitation.RecipientEmail))
	ctx = logging.AppendCtx(ctx, slog.String("meeting_subject", invitation.MeetingSubject))

	rendered, err := s.templates.RenderInvitation(invitation)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render invitation templates", logging.ErrKey, err)
		return err
	}

	subject := fmt.Sprintf("Invitation: %s", invitation.MeetingSubject)
	message := buildInvitationMessage(invitation.RecipientEmail, subject, rendered, s.config)
	if err := deliver(invitation.RecipientEmail, message, s.config); err != nil {
		slog.ErrorContext(ctx, "failed to send invitation email", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "invitation email sent")
	return nil
}
