package computebudget

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/pnft-transfer/pkg/solana"
)

func TestProgramKey(t *testing.T) {
	assert.Equal(t, "ComputeBudget111111111111111111111111111111", base58.Encode(ProgramKey))
}

func TestComputeUnitLimit(t *testing.T) {
	ixn := NewSetComputeUnitLimitInstruction(300_000)
	assert.Empty(t, ixn.Accounts)

	limit, err := ParseSetComputeUnitLimit(ixn)
	require.NoError(t, err)
	assert.EqualValues(t, 300_000, limit)

	_, err = ParseSetComputeUnitPrice(ixn)
	assert.ErrorIs(t, err, ErrInvalidInstructionData)

	ixn.Program = make(ed25519.PublicKey, ed25519.PublicKeySize)
	_, err = ParseSetComputeUnitLimit(ixn)
	assert.ErrorIs(t, err, solana.ErrIncorrectProgram)
}

func TestComputeUnitPrice(t *testing.T) {
	ixn := NewSetComputeUnitPriceInstruction(5_000)

	price, err := ParseSetComputeUnitPrice(ixn)
	require.NoError(t, err)
	assert.EqualValues(t, 5_000, price)

	_, err = ParseSetComputeUnitLimit(ixn)
	assert.ErrorIs(t, err, ErrInvalidInstructionData)

	ixn.Data = ixn.Data[:4]
	_, err = ParseSetComputeUnitPrice(ixn)
	assert.ErrorIs(t, err, ErrInvalidInstructionData)
}
