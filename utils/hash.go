package utils

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// HashClientAddress anonymizes a client network address with a keyed BLAKE2b
// hash. Raw addresses must never reach storage; callers hash first and only
// the digest travels further. An empty address yields an empty hash, which
// downstream abuse checks treat as "client unknown".
func HashClientAddress(salt, address string) string {
	if address == "" {
		return ""
	}
	key := []byte(salt)
	if len(key) > 64 {
		key = key[:64]
	}
	h, err := blake2b.New256(key)
	if err != nil {
		// Only reachable with a key longer than 64 bytes, which is truncated above.
		return ""
	}
	h.Write([]byte(address))
	return hex.EncodeToString(h.Sum(nil))
}
