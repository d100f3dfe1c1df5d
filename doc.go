// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Pollbox API server.

Pollbox is an online polling service: creators register, create single-
or multiple-choice polls, optionally upload a controlled voter roster,
and collect votes - anonymous or roster-bound - with per-poll
uniqueness guarantees and live result tallies.

# Starting the Server

The server requires environment variables or CLI flags for
configuration:

	DATABASE_URL=postgres://... JWT_SECRET=... go run main.go

Or with flags:

	go run main.go -p 8080 -d "postgres://..." --jwt-secret "..."

# Configuration

Required settings:

  - DATABASE_URL (-d): connection string
  - JWT_SECRET (--jwt-secret): token signing secret

Optional settings:

  - PORT (-p): server port (default: 8080)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - FRONTEND_URL: base URL for voter login links
  - SMTP_ADDR / SMTP_FROM / SMTP_USERNAME / SMTP_PASSWORD: mail relay;
    without SMTP_ADDR, credential mail is logged instead of sent

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (auth, polls, voting, voters, results)
  - router: route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: request/response and domain types
  - store: per-entity storage ports over database/sql
  - voting: the vote-cast state machine
  - provision: roster provisioning and credential issuance
  - auth: hashing, temp passwords, anon ids, JWT sessions
  - mailer: outbound notification sink
  - db: schema creation
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
