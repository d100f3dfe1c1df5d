// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file is loaded when present; explicit environment variables and
CLI flags take precedence over it.

# Config Fields

  - Port: Server listen port (default: 8080)
  - DatabaseURL: Connection string (required)
  - DatabaseType: "sqlite" or "postgres" (default: sqlite)
  - JWTSecret: Token signing secret (required)
  - FrontendURL: Base URL used in voter login links
  - SMTPAddr/SMTPFrom/SMTPUsername/SMTPPassword: optional mail relay

# CLI Flags

	-p             Server port
	-d             Database URL
	-t             Database type
	--frontend-url Frontend base URL
	--jwt-secret   JWT signing secret

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	FRONTEND_URL  → --frontend-url
	JWT_SECRET    → --jwt-secret

SMTP settings are env-only. When SMTP_ADDR is unset, credential mail is
logged instead of sent.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - JWT_SECRET must be provided
  - SMTP_FROM must accompany SMTP_ADDR
*/
package cliparse
