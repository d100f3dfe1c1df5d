// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP routes using Go 1.22+ method routing.

# Routes

Creator accounts:

	POST /register
	POST /login

Poll management:

	POST /polls
	GET  /polls
	GET  /polls/{id}
	GET  /polls/{id}/options

Roster and voting:

	POST /polls/{id}/voters  (creator Bearer required)
	POST /polls/{id}/vote    (public)
	POST /voter-login        (public)
	GET  /polls/{id}/results (public)

# Wiring

NewRouter builds the SQL store, the vote orchestrator, the provisioning
service, and the mail sink (SMTP when configured, log-only otherwise),
then registers every handler wrapped in request logging.
*/
package router
