package computebudget

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/code-payments/pnft-transfer/pkg/solana"
)

// ComputeBudget111111111111111111111111111111
var ProgramKey = ed25519.PublicKey{3, 6, 70, 111, 229, 33, 23, 50, 255, 236, 173, 186, 114, 195, 155, 231, 188, 140, 229, 187, 197, 247, 18, 107, 44, 67, 155, 58, 64, 0, 0, 0}

// MaxComputeUnitLimit is the most compute a single transaction may request.
const MaxComputeUnitLimit uint32 = 1_400_000

const (
	commandRequestUnits uint8 = iota
	commandRequestHeapFrame
	commandSetComputeUnitLimit
	commandSetComputeUnitPrice
)

var ErrInvalidInstructionData = errors.New("invalid compute budget instruction data")

// NewSetComputeUnitLimitInstruction caps the compute units the transaction
// may consume.
func NewSetComputeUnitLimitInstruction(limit uint32) solana.Instruction {
	data := make([]byte, 1+4)
	data[0] = commandSetComputeUnitLimit
	binary.LittleEndian.PutUint32(data[1:], limit)

	return solana.NewInstruction(ProgramKey, data)
}

// NewSetComputeUnitPriceInstruction sets the priority fee, in micro-lamports
// per compute unit.
func NewSetComputeUnitPriceInstruction(microLamports uint64) solana.Instruction {
	data := make([]byte, 1+8)
	data[0] = commandSetComputeUnitPrice
	binary.LittleEndian.PutUint64(data[1:], microLamports)

	return solana.NewInstruction(ProgramKey, data)
}

func ParseSetComputeUnitLimit(ixn solana.Instruction) (uint32, error) {
	if !ixn.Program.Equal(ProgramKey) {
		return 0, solana.ErrIncorrectProgram
	}
	if len(ixn.Data) != 5 || ixn.Data[0] != commandSetComputeUnitLimit {
		return 0, ErrInvalidInstructionData
	}
	return binary.LittleEndian.Uint32(ixn.Data[1:]), nil
}

func ParseSetComputeUnitPrice(ixn solana.Instruction) (uint64, error) {
	if !ixn.Program.Equal(ProgramKey) {
		return 0, solana.ErrIncorrectProgram
	}
	if len(ixn.Data) != 9 || ixn.Data[0] != commandSetComputeUnitPrice {
		return 0, ErrInvalidInstructionData
	}
	return binary.LittleEndian.Uint64(ixn.Data[1:]), nil
}
