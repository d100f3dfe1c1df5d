// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mailer

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Sender is the notification sink. Delivery is best-effort; callers must
// not fail their own operation when Send errors.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTP sends mail through a plain SMTP relay.
type SMTP struct {
	Addr     string // host:port
	From     string
	Username string
	Password string
}

func (s *SMTP) Send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + s.From,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if s.Username != "" {
		host := s.Addr
		if i := strings.IndexByte(host, ':'); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", s.Username, s.Password, host)
	}

	if err := smtp.SendMail(s.Addr, auth, s.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// Log is the sink used when no SMTP relay is configured. It logs the
// delivery instead of sending, which keeps dev setups credential-free.
type Log struct{}

func (Log) Send(to, subject, body string) error {
	slog.Info("mail delivery skipped (no smtp configured)",
		"to", to,
		"subject", subject,
	)
	return nil
}

// CredentialsSubject builds the subject line for a voter invitation.
func CredentialsSubject(pollTitle string) string {
	return "Voting Access for Poll: " + pollTitle
}

// CredentialsBody builds the invitation body carrying the one-time
// password and the login reference derived from the voter's anon_id.
func CredentialsBody(pollTitle, tempPassword, loginToken, frontendURL string, expiresAt *time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You have been invited to vote in '%s'.\n\n", pollTitle)
	fmt.Fprintf(&b, "Temporary Password: %s\n", tempPassword)
	fmt.Fprintf(&b, "Login Link: %s/vote?token=%s\n", frontendURL, loginToken)
	if expiresAt != nil {
		fmt.Fprintf(&b, "The poll closes %s.\n", humanize.Time(*expiresAt))
	}
	b.WriteString("\nUse the link to access and cast your vote.")

	return b.String()
}
