// Package tokenauthrules holds the address helpers for the Metaplex Token
// Auth Rules program, which stores the rule sets programmable assets are
// bound to.
package tokenauthrules

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// ProgramKey is the address of the token auth rules program.
//
// Current key: auth9SigNpDKz4sJJ1DfCTuZrZNSAgh9sFD3rboVmgg
var ProgramKey = ed25519.PublicKey(mustBase58Decode("auth9SigNpDKz4sJJ1DfCTuZrZNSAgh9sFD3rboVmgg"))

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
