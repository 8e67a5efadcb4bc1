package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashNamespace maps an owner identifier (application or user ID) to a
// stable, path-safe directory name for object storage.
func HashNamespace(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
