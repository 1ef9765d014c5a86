package domain

import "errors"

// Authentication errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionInvalid  = errors.New("session is not valid")
	ErrOAuthStateBad   = errors.New("oauth state mismatch")
	ErrOAuthExchange   = errors.New("oauth code exchange failed")
)

// Issuance errors.
var (
	ErrInvalidAddress   = errors.New("claimer address is not a valid address")
	ErrNotGuildMember   = errors.New("user is not a member of the discord server")
	ErrIssuanceInFlight = errors.New("issuance already in flight for recipient")
	ErrSigningFailed    = errors.New("mint request signing failed")
)

// Configuration errors.
var (
	ErrSigningKeyMissing = errors.New("wallet private key not configured")
)

// External service errors.
var (
	ErrDiscordUnavailable = errors.New("discord api unavailable")
	ErrChainUnavailable   = errors.New("chain rpc unavailable")
)

// Rate limiting errors.
var (
	ErrRateLimited = errors.New("rate limit exceeded")
)
