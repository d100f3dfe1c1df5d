// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package mailer is the outbound notification sink.

# Sender

Sender is a fire-and-forget port:

	type Sender interface {
		Send(to, subject, body string) error
	}

Two implementations ship:

  - SMTP: plain SMTP relay, optional PLAIN auth
  - Log: logs instead of sending when no relay is configured

Provisioning treats delivery failures as log-only; a voter is never
rolled back because their invitation bounced.

# Credential Mail

CredentialsSubject and CredentialsBody compose the voter invitation:
poll title, one-time password, a login link built from the anon_id, and
a human-readable closing time when the poll has an expiry.
*/
package mailer
