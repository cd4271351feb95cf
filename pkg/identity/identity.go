package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// AnonPrefix marks generated pseudo-identities for unauthenticated voters.
const AnonPrefix = "anon_"

// NewAnonWallet generates a fresh anonymous voter identity of the form
// anon_<unix ms>_<random base36>. A new identity is produced for every call:
// anonymous voters are deliberately not given a stable identity, so the
// server's per-identity uniqueness constraint does not throttle them and the
// local cooldown is their only practical rate limit.
func NewAnonWallet() string {
	return fmt.Sprintf("%s%d_%s", AnonPrefix, time.Now().UnixMilli(), randBase36(9))
}

// IsAnon reports whether the address is a generated pseudo-identity.
func IsAnon(addr string) bool {
	return strings.HasPrefix(addr, AnonPrefix)
}

// Same compares two wallet addresses case-insensitively.
func Same(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}

// HashForLog produces a short, irreversible hash prefix of a wallet address
// for log correlation without writing raw addresses to logs.
func HashForLog(addr string) string {
	h := sha256.Sum256([]byte(addr))
	return hex.EncodeToString(h[:])[:12]
}

func randBase36(n int) string {
	var b strings.Builder
	for b.Len() < n {
		b.WriteString(strconv.FormatUint(rand.Uint64(), 36))
	}
	return b.String()[:n]
}
