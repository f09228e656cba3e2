// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

const mimeBoundary = "==_docuflow_meet_boundary_=="

// buildInvitationMessage assembles a multipart/alternative message carrying
// the text and HTML renderings of an invitation.
func buildInvitationMessage(recipient, subject string, rendered *RenderedEmail, config SMTPConfig) string {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", config.From)
	fmt.Fprintf(&b, "To: %s\r\n", recipient)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mimeBoundary)

	writeMIMEPart(&b, "text/plain", rendered.Text)
	writeMIMEPart(&b, "text/html", rendered.HTML)
	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)

	return b.String()
}

func writeMIMEPart(b *strings.Builder, contentType, body string) {
	fmt.Fprintf(b, "--%s\r\n", mimeBoundary)
	fmt.Fprintf(b, "Content-Type: %s; charset=\"UTF-8\"\r\n\r\n", contentType)
	b.WriteString(body)
	b.WriteString("\r\n")
}

// deliver sends a pre-built message via SMTP. Auth is used only when
// credentials are configured.
func deliver(recipient, message string, config SMTPConfig) error {
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	if err := smtp.SendMail(addr, auth, config.From, []string{recipient}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
