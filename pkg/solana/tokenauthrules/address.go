package tokenauthrules

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/pnft-transfer/pkg/solana"
)

var RuleSetPrefix = []byte("rule_set")

var ErrInvalidRuleSetName = errors.New("invalid rule set name")

type GetRuleSetAddressArgs struct {
	Owner ed25519.PublicKey
	Name  string
}

// GetRuleSetAddress derives the rule set PDA the owner created under name.
func GetRuleSetAddress(args *GetRuleSetAddressArgs) (ed25519.PublicKey, uint8, error) {
	if len(args.Name) == 0 || len(args.Name) > solana.MaxSeedLength {
		return nil, 0, errors.Wrapf(ErrInvalidRuleSetName, "name must be 1 to %d bytes", solana.MaxSeedLength)
	}

	return solana.FindProgramAddressAndBump(
		ProgramKey,
		RuleSetPrefix,
		args.Owner,
		[]byte(args.Name),
	)
}
