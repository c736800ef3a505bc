// SPDX-License-Identifier: Apache-2.0

// Package mailer delivers a finished document to a requester's email
// address via net/smtp, gated behind an interface so callers can
// substitute a no-op or recording implementation in tests.
package mailer

import (
	"fmt"
	"net/smtp"
	"path/filepath"
	"strings"
)

// Mailer sends a notification that a document is ready, with its
// attachments referenced by path.
//
//counterfeiter:generate . Mailer
type Mailer interface {
	Send(to, subject, body string, attachmentPaths []string) error
}

// SMTPConfig holds the connection details for an SMTPMailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// sendMail is swapped out in tests to avoid dialing a real SMTP server.
var sendMail = smtp.SendMail

// SMTPMailer sends plain-text mail through a net/smtp relay, listing
// attachment file names in the body rather than MIME-encoding the files
// themselves (delivery of large converted documents is expected to happen
// out of band, e.g. a signed download link appended by the caller).
type SMTPMailer struct {
	cfg SMTPConfig
	// auth overrides smtp.PlainAuth for tests.
	auth smtp.Auth
}

// NewSMTPMailer returns a Mailer backed by cfg.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:  cfg,
		auth: smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host),
	}
}

// Send composes and delivers a single plain-text message.
func (m *SMTPMailer) Send(to, subject, body string, attachmentPaths []string) error {
	if to == "" {
		return fmt.Errorf("mailer: recipient address must not be empty")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&sb, "To: %s\r\n", to)
	fmt.Fprintf(&sb, "Subject: %s\r\n", subject)
	sb.WriteString("\r\n")
	sb.WriteString(body)
	if len(attachmentPaths) > 0 {
		sb.WriteString("\r\n\r\nAttachments:\r\n")
		for _, p := range attachmentPaths {
			fmt.Fprintf(&sb, "- %s\r\n", filepath.Base(p))
		}
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	return sendMail(addr, m.auth, m.cfg.From, []string{to}, []byte(sb.String()))
}
