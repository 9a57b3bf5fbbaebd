// Package contenthash derives a deterministic fingerprint from normalized
// submission fields. Two submissions with identical normalized content always
// hash identically; what counts as "identical" is governed by normalization,
// not by anything done here.
package contenthash

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/formgate-io/contact-gate/internal/normalizer"
)

// Compute returns a hex-encoded SHA-256 digest over the normalized
// (name, email, body) tuple. Each field is length-prefixed so that moving
// bytes across field boundaries can never produce the same digest.
func Compute(f normalizer.Fields) string {
	h := sha256.New()
	for _, field := range []string{f.Name, f.Email, f.Body} {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(field)))
		h.Write(n[:])
		h.Write([]byte(field))
	}
	return hex.EncodeToString(h.Sum(nil))
}
