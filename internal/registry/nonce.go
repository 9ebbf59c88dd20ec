package registry

import (
	"strings"

	"github.com/google/uuid"
)

// newNonce mints a 32-char alphanumeric nonce from a cryptographically
// adequate source. uuid.New() draws from crypto/rand underneath; stripping
// hyphens from two concatenated v4 UUIDs and truncating to 32 chars gives
// us the required length without inventing a bespoke RNG wrapper.
func newNonce() string {
	a := strings.ReplaceAll(uuid.New().String(), "-", "")
	b := strings.ReplaceAll(uuid.New().String(), "-", "")
	return (a + b)[:32]
}
