package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Validation errors are the only class surfaced to the end user; the
// command layer maps them to actionable messages. Everything else is
// absorbed with logging.

var (
	// Attendance validation
	ErrAlreadyCheckedIn  = errors.New("previous organization not left yet")
	ErrNoOpenSession     = errors.New("no open session for user")
	ErrNoEditableSession = errors.New("no session eligible for editing")
	ErrInvalidOrdering   = errors.New("join time must not exceed leave time")
	ErrFutureTimestamp   = errors.New("timestamp is in the future")
	ErrEmptyOrgName      = errors.New("organization name is required")
	ErrBadOrgName        = errors.New("organization name contains invalid characters")

	// Season state
	ErrNoActiveSeason = errors.New("no active season")
	ErrSeasonNotFound = errors.New("season not found")

	// Catalog
	ErrEmptyLevelCatalog = errors.New("level catalog is empty — run seed first")

	// Profile
	ErrRankNotFound = errors.New("no rank recorded for user this season")
)
