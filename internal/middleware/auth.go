package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
)

// NewAdminAuth returns a middleware that requires a valid Bearer token
// whose wallet claim is in the admin allow-list. Used on routes that
// mutate platform data directly (PnL refresh).
//
// Fails closed: with no signing secret or an empty allow-list, every
// request is rejected rather than every token accepted.
func NewAdminAuth(secret string, adminWallets []string) fiber.Handler {
	admins := buildAdminList(adminWallets)

	return func(c fiber.Ctx) error {
		wallet, status, msg := authorizeAdmin(c.Get("Authorization"), secret, admins)
		if status != 0 {
			code := "UNAUTHORIZED"
			if status == fiber.StatusForbidden {
				code = "FORBIDDEN"
			}
			return ErrorResponse(c, status, code, msg)
		}

		c.Locals("wallet", wallet)
		return c.Next()
	}
}

// buildAdminList normalizes the configured allow-list. Blank entries are
// dropped, so an unset ADMIN_WALLETS (which splits to [""]) can never
// match a token that carries no wallet claim.
func buildAdminList(wallets []string) map[string]bool {
	admins := make(map[string]bool, len(wallets))
	for _, w := range wallets {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			admins[w] = true
		}
	}
	return admins
}

// authorizeAdmin validates the bearer token and resolves its wallet claim
// against the allow-list. Returns the wallet and a zero status on success,
// or the HTTP status and message to reject with.
func authorizeAdmin(bearer, secret string, admins map[string]bool) (string, int, string) {
	if secret == "" || len(admins) == 0 {
		return "", fiber.StatusForbidden, "Admin access is not configured"
	}

	if !strings.HasPrefix(bearer, "Bearer ") {
		return "", fiber.StatusUnauthorized, "Missing bearer token"
	}

	token, err := jwt.Parse(bearer[7:], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", fiber.StatusUnauthorized, "Invalid token"
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fiber.StatusUnauthorized, "Invalid token claims"
	}
	wallet, ok := claims["wallet"].(string)
	if !ok || wallet == "" {
		return "", fiber.StatusUnauthorized, "Token has no wallet claim"
	}
	if !admins[strings.ToLower(wallet)] {
		return "", fiber.StatusForbidden, "Admin access required"
	}

	return wallet, 0, ""
}
