package canonical

import (
	"crypto/sha256"
	"encoding/hex"
)

// IdentityHash is the sole identity key of a code: lowercase hex SHA-256
// over title followed by the normalized code text.
func IdentityHash(title, code string) string {
	sum := sha256.Sum256([]byte(title + code))
	return hex.EncodeToString(sum[:])
}
