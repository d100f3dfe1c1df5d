// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package provision builds controlled voter rosters.

# Single Entry

ProvisionVoter creates the (poll, email) roster entry with a fresh
pseudonymous anon_id and a bcrypt-hashed 10-character temporary
password. The plaintext is returned once for out-of-band delivery and
never stored.

Calling it again before the voter has voted re-issues both credentials;
calling it for a voter who already voted changes nothing and returns no
plaintext, so a recorded vote's identity linkage can never be broken.

# Batch

ProvisionVoters validates that every entry carries an email before any
write, then provisions entries independently. A late entry's failure is
logged and skipped; earlier provisions stand.

# Notification

The single-entry path notifies only newly created voters. The batch
path notifies every entry that received a credential, re-issued ones
included. Delivery failures are log-only and never fail provisioning.
*/
package provision
