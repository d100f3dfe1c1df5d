// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP cross-cutting helpers.

# Request Logging

WithLogging wraps a handler with structured start/complete log lines
including method, path, client IP, and duration.

# JSON Helpers

  - JSONResponse: encode a value with status code
  - ErrorResponse: the {error, message} envelope
  - ParseJSONBody: decode and close the request body

# Auth Extraction

BearerToken pulls the token out of an Authorization: Bearer header and
returns "" when absent, leaving the authorization decision to the
handler (poll creation accepts an absent principal).

# CORS

CORS reflects the request origin and answers preflight requests.

# Client IP

GetClientIP checks X-Forwarded-For, then X-Real-IP, then RemoteAddr.
*/
package middleware
