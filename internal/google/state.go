package google

import (
	"strings"

	"github.com/untangled/link-server-go/internal/util"
)

// The OAuth state parameter is used two ways: when a link session is in
// flight its id rides through the provider round-trip with a "session:"
// prefix; otherwise the state is a random nonce serving only as CSRF
// protection.
const statePrefix = "session:"

// EncodeState builds the state parameter for the authorization URL.
func EncodeState(sessionID string) (string, error) {
	if sessionID != "" {
		return statePrefix + sessionID, nil
	}
	return util.GenerateNonce()
}

// DecodeState extracts the link session id from a callback state, or ""
// when the state is a plain nonce. The id is not validated here: whether
// it resolves to a live link session is the only check that matters.
func DecodeState(state string) string {
	if strings.HasPrefix(state, statePrefix) {
		return strings.TrimPrefix(state, statePrefix)
	}
	return ""
}
