package trace

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeTraceHash returns the hex sha256 of an encoded trace, or "" for
// no bytes. Build logs print it so CI can compare traces between runs.
func ComputeTraceHash(encoded []byte) string {
	if len(encoded) == 0 {
		return ""
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}
