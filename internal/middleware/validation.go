package middleware

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// Field length limits matching database schema constraints.
const (
	MaxWalletLen   = 64  // wallets and anon identities, VARCHAR(64)
	MaxUsernameLen = 50  // kols.username VARCHAR(50)
	MaxURLLen      = 512 // image/profile URLs VARCHAR(512)
)

var (
	// base58Re matches Solana wallet addresses.
	base58Re = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
	// anonRe matches generated anonymous identities: anon_<ms>_<base36>.
	anonRe = regexp.MustCompile(`^anon_\d+_[0-9a-z]+$`)
	// twitterRe matches twitter handles with or without the @.
	twitterRe = regexp.MustCompile(`^@?[A-Za-z0-9_]{1,15}$`)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateKOLID checks that a KOL id is a well-formed UUID.
func ValidateKOLID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "kol id is required"
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", "kol id must be a valid UUID"
	}
	return id, ""
}

// ValidateWallet checks a wallet address header value. Empty is allowed —
// it means no wallet is connected and the anonymous path applies.
func ValidateWallet(addr string) (string, string) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", ""
	}
	if len(addr) > MaxWalletLen {
		return "", "wallet address is too long"
	}
	if !base58Re.MatchString(addr) && !anonRe.MatchString(addr) {
		return "", "wallet address is malformed"
	}
	return addr, ""
}

// ValidateUsername checks a KOL username.
func ValidateUsername(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "username is required"
	}
	if len(name) > MaxUsernameLen {
		return "", "username must be at most 50 characters"
	}
	return name, ""
}

// ValidateTwitterHandle checks and normalizes a twitter handle (leading @
// stripped).
func ValidateTwitterHandle(handle string) (string, string) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return "", "twitter handle is required"
	}
	if !twitterRe.MatchString(handle) {
		return "", "twitter handle is malformed"
	}
	return strings.TrimPrefix(handle, "@"), ""
}

// ValidateURL bounds an optional URL field. Scheme checking beyond http(s)
// is left to the storage layer; this guards length and obvious garbage.
func ValidateURL(raw string) (string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}
	if len(raw) > MaxURLLen {
		return "", "url is too long"
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "", "url must be http(s)"
	}
	return raw, ""
}
