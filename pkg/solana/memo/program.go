package memo

import (
	"bytes"
	"crypto/ed25519"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/code-payments/pnft-transfer/pkg/solana"
)

// ProgramKey is the address of the SPL memo program.
//
// Current key: Memo1UhkJRfHyvLMcVucJwxXeuD728EqVDDwQDxFMNo
var ProgramKey = ed25519.PublicKey{5, 74, 83, 80, 248, 93, 200, 130, 214, 20, 165, 86, 114, 120, 138, 41, 109, 223, 30, 171, 171, 208, 166, 6, 120, 136, 73, 50, 244, 238, 246, 160}

// MaxMemoSize keeps a memo well inside a single transaction packet.
const MaxMemoSize = 566

var ErrInvalidMemo = errors.New("invalid memo")

// NewMemoInstruction attaches text to a transaction. The memo program only
// accepts valid UTF-8.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/memo/program/src/entrypoint.rs
func NewMemoInstruction(text string) (solana.Instruction, error) {
	if len(text) == 0 || len(text) > MaxMemoSize {
		return solana.Instruction{}, errors.Wrapf(ErrInvalidMemo, "memo size %d", len(text))
	}
	if !utf8.ValidString(text) {
		return solana.Instruction{}, errors.Wrap(ErrInvalidMemo, "memo is not utf-8")
	}

	return solana.NewInstruction(ProgramKey, []byte(text)), nil
}

// MemoFromLegacyInstruction returns the memo text at index in a compiled
// transaction.
func MemoFromLegacyInstruction(txn solana.Transaction, index int) (string, error) {
	if index < 0 || index >= len(txn.Message.Instructions) {
		return "", errors.Errorf("instruction doesn't exist at %d", index)
	}

	ixn := txn.Message.Instructions[index]
	if int(ixn.ProgramIndex) >= len(txn.Message.Accounts) || !bytes.Equal(txn.Message.Accounts[ixn.ProgramIndex], ProgramKey) {
		return "", solana.ErrIncorrectProgram
	}

	return string(ixn.Data), nil
}
