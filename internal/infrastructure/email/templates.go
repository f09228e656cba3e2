// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package email

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/docuflow/meet-service/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// RenderedEmail holds both HTML and text versions of a rendered email.
type RenderedEmail struct {
	HTML string
	Text string
}

// TemplateManager renders the invitation email templates.
type TemplateManager struct {
	invitationHTML *template.Template
	invitationText *template.Template
}

// NewTemplateManager loads the embedded templates.
func NewTemplateManager() (*TemplateManager, error) {
	htmlTmpl, err := loadTemplate("meeting_invitation.html")
	if err != nil {
		return nil, err
	}
	textTmpl, err := loadTemplate("meeting_invitation.txt")
	if err != nil {
		return nil, err
	}
	return &TemplateManager{
		invitationHTML: htmlTmpl,
		invitationText: textTmpl,
	}, nil
}

// RenderInvitation renders the invitation email in both formats.
func (tm *TemplateManager) RenderInvitation(data domain.EmailInvitation) (*RenderedEmail, error) {
	htmlContent, err := renderTemplate(tm.invitationHTML, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}
	textContent, err := renderTemplate(tm.invitationText, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render text template: %w", err)
	}
	return &RenderedEmail{HTML: htmlContent, Text: textContent}, nil
}

func loadTemplate(name string) (*template.Template, error) {
	tmpl, err := template.New(name).ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("failed to load template %s: %w", name, err)
	}
	return tmpl, nil
}

func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
