package transfer

import (
	"crypto/ed25519"

	"github.com/code-payments/pnft-transfer/pkg/solana"
	"github.com/code-payments/pnft-transfer/pkg/solana/tokenmetadata"
)

// Positions in the account list of an assembled call. Token records and the
// rule set accounts are only present when the asset requires them; absent
// entries shift every later account down.
const (
	AccountIndexSource = iota
	AccountIndexOwner
	AccountIndexDestination
	AccountIndexDestinationOwner
	AccountIndexMint
	AccountIndexMetadata
	AccountIndexEdition
	AccountIndexAuthority
	AccountIndexOwnerTokenRecord
	AccountIndexDestinationTokenRecord
)

const (
	coreAccountCount        = 13
	tokenRecordAccountCount = 2
	ruleSetAccountCount     = 2
)

// AssembledCall is a fully validated Transfer call, ready for a single
// invocation. It is built by Build and never modified afterwards, and its
// accessors return copies.
type AssembledCall struct {
	accounts     []solana.AccountMeta
	instruction  solana.Instruction
	args         tokenmetadata.TransferInstructionArgs
	programmable bool
	ruleSet      ed25519.PublicKey
}

// Accounts returns the accounts handed to the runtime alongside the
// instruction.
func (c *AssembledCall) Accounts() []solana.AccountMeta {
	return append([]solana.AccountMeta(nil), c.accounts...)
}

// Instruction returns the Transfer instruction in the program's canonical
// account order.
func (c *AssembledCall) Instruction() solana.Instruction {
	ixn := c.instruction
	ixn.Accounts = append([]solana.AccountMeta(nil), c.instruction.Accounts...)
	ixn.Data = append([]byte(nil), c.instruction.Data...)
	return ixn
}

func (c *AssembledCall) Amount() uint64 {
	return c.args.Amount
}

// AuthorizationData returns the native payload, or nil if none is attached.
func (c *AssembledCall) AuthorizationData() *tokenmetadata.AuthorizationData {
	return c.args.AuthorizationData
}

// IsProgrammable reports whether token records were included.
func (c *AssembledCall) IsProgrammable() bool {
	return c.programmable
}

// RuleSet returns the bound rule set, or nil.
func (c *AssembledCall) RuleSet() ed25519.PublicKey {
	return c.ruleSet
}

// Signers returns the accounts that must sign the call.
func (c *AssembledCall) Signers() []ed25519.PublicKey {
	return c.instruction.Signers()
}

// Payer returns the payer account the call was assembled with.
func (c *AssembledCall) Payer() ed25519.PublicKey {
	return c.accounts[c.payerIndex()].PublicKey
}

func (c *AssembledCall) payerIndex() int {
	if c.programmable {
		return AccountIndexDestinationTokenRecord + 1
	}
	return AccountIndexAuthority + 1
}
