// Package activationcode produces the human-shareable codes attached to
// activation entitlements. The code is a display token only: entitlement
// identity is the record id, the code is never used as a lookup key or a
// credential, so a non-cryptographic source is sufficient and collisions
// are merely cosmetic.
package activationcode

import (
	"math/rand/v2"
	"strings"
)

// Uppercase alphanumerics (36 characters)
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const (
	groupCount = 3
	groupLen   = 4
)

// Generate returns a code of the form XXXX-XXXX-XXXX
func Generate() string {
	var b strings.Builder
	b.Grow(groupCount*groupLen + groupCount - 1)

	for g := 0; g < groupCount; g++ {
		if g > 0 {
			b.WriteByte('-')
		}
		for i := 0; i < groupLen; i++ {
			b.WriteByte(alphabet[rand.IntN(len(alphabet))])
		}
	}

	return b.String()
}
