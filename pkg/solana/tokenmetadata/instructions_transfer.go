package tokenmetadata

import (
	"bytes"
	"crypto/ed25519"

	"github.com/code-payments/pnft-transfer/pkg/solana"
	"github.com/code-payments/pnft-transfer/pkg/solana/system"
	"github.com/code-payments/pnft-transfer/pkg/solana/token"
	"github.com/code-payments/pnft-transfer/pkg/solana/tokenauthrules"
)

const (
	InstructionTransfer uint8 = 49

	TransferArgsV1 uint8 = 0
)

const (
	TransferInstructionArgsSize = (1 + // TransferArgs variant
		8 + // amount
		1) // authorization_data option
)

type TransferInstructionArgs struct {
	Amount            uint64
	AuthorizationData *AuthorizationData
}

// TransferInstructionAccounts lists the accounts of a Transfer call. Nil
// optional accounts are replaced by the program id, which the program reads
// as "not provided".
type TransferInstructionAccounts struct {
	Token                  ed25519.PublicKey
	TokenOwner             ed25519.PublicKey
	Destination            ed25519.PublicKey
	DestinationOwner       ed25519.PublicKey
	Mint                   ed25519.PublicKey
	Metadata               ed25519.PublicKey
	Edition                ed25519.PublicKey // optional
	OwnerTokenRecord       ed25519.PublicKey // optional
	DestinationTokenRecord ed25519.PublicKey // optional
	Authority              ed25519.PublicKey
	Payer                  ed25519.PublicKey
	AuthorizationRules     ed25519.PublicKey // optional
}

func NewTransferInstruction(
	accounts *TransferInstructionAccounts,
	args *TransferInstructionArgs,
) solana.Instruction {
	// Serialize instruction arguments
	data := make([]byte, 0, 1+TransferInstructionArgsSize)

	data = putUint8(data, InstructionTransfer)
	data = putUint8(data, TransferArgsV1)
	data = putUint64(data, args.Amount)
	data = putBool(data, args.AuthorizationData != nil)
	if args.AuthorizationData != nil {
		data = append(data, args.AuthorizationData.Marshal()...)
	}

	authorizationRulesProgram := optionalAccount(nil)
	if len(accounts.AuthorizationRules) > 0 {
		authorizationRulesProgram = solana.NewReadonlyAccountMeta(tokenauthrules.ProgramKey, false)
	}

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(accounts.Token, false),
		solana.NewReadonlyAccountMeta(accounts.TokenOwner, false),
		solana.NewAccountMeta(accounts.Destination, false),
		solana.NewReadonlyAccountMeta(accounts.DestinationOwner, false),
		solana.NewReadonlyAccountMeta(accounts.Mint, false),
		solana.NewAccountMeta(accounts.Metadata, false),
		optionalAccount(accounts.Edition),
		optionalWritableAccount(accounts.OwnerTokenRecord),
		optionalWritableAccount(accounts.DestinationTokenRecord),
		solana.NewReadonlyAccountMeta(accounts.Authority, true),
		solana.NewAccountMeta(accounts.Payer, true),
		solana.NewReadonlyAccountMeta(system.ProgramKey, false),
		solana.NewReadonlyAccountMeta(system.InstructionsSysVar, false),
		solana.NewReadonlyAccountMeta(token.ProgramKey, false),
		solana.NewReadonlyAccountMeta(token.AssociatedTokenAccountProgramKey, false),
		authorizationRulesProgram,
		optionalAccount(accounts.AuthorizationRules),
	)
}

// TransferInstruction is the decoded form of a Transfer instruction.
type TransferInstruction struct {
	Accounts TransferInstructionAccounts
	Args     TransferInstructionArgs
}

// TransferInstructionFromLegacyInstruction decodes a Transfer instruction
// found at index within a transaction.
func TransferInstructionFromLegacyInstruction(txn solana.Transaction, index int) (*TransferInstruction, error) {
	if index < 0 || index >= len(txn.Message.Instructions) {
		return nil, solana.ErrIncorrectInstruction
	}

	compiled := txn.Message.Instructions[index]
	if int(compiled.ProgramIndex) >= len(txn.Message.Accounts) {
		return nil, solana.ErrIncorrectProgram
	}
	if !txn.Message.Accounts[compiled.ProgramIndex].Equal(ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}

	resolved := make([]ed25519.PublicKey, len(compiled.Accounts))
	for i, accountIndex := range compiled.Accounts {
		if int(accountIndex) >= len(txn.Message.Accounts) {
			return nil, ErrInvalidInstructionData
		}
		resolved[i] = txn.Message.Accounts[accountIndex]
	}

	return DecodeTransferInstruction(resolved, compiled.Data)
}

// DecodeTransferInstruction decodes Transfer instruction data and its 17
// accounts. Placeholder accounts decode as nil.
func DecodeTransferInstruction(accounts []ed25519.PublicKey, data []byte) (*TransferInstruction, error) {
	if len(accounts) != 17 {
		return nil, ErrInvalidInstructionData
	}
	if !hasTransferProgramAccounts(accounts) {
		return nil, ErrInvalidInstructionData
	}

	var offset int
	var discriminator, variant uint8
	if err := getUint8(data, &discriminator, &offset); err != nil || discriminator != InstructionTransfer {
		return nil, ErrInvalidInstructionData
	}
	if err := getUint8(data, &variant, &offset); err != nil || variant != TransferArgsV1 {
		return nil, ErrInvalidInstructionData
	}

	var decoded TransferInstruction
	if err := getUint64(data, &decoded.Args.Amount, &offset); err != nil {
		return nil, ErrInvalidInstructionData
	}

	var hasAuthorizationData bool
	if err := getOption(data, &hasAuthorizationData, &offset); err != nil {
		return nil, ErrInvalidInstructionData
	}
	if hasAuthorizationData {
		decoded.Args.AuthorizationData = &AuthorizationData{}
		if err := getAuthorizationData(data, decoded.Args.AuthorizationData, &offset); err != nil {
			return nil, err
		}
	}
	if offset != len(data) {
		return nil, ErrInvalidInstructionData
	}

	decoded.Accounts = TransferInstructionAccounts{
		Token:                  accounts[0],
		TokenOwner:             accounts[1],
		Destination:            accounts[2],
		DestinationOwner:       accounts[3],
		Mint:                   accounts[4],
		Metadata:               accounts[5],
		Edition:                fromOptionalAccount(accounts[6]),
		OwnerTokenRecord:       fromOptionalAccount(accounts[7]),
		DestinationTokenRecord: fromOptionalAccount(accounts[8]),
		Authority:              accounts[9],
		Payer:                  accounts[10],
		AuthorizationRules:     fromOptionalAccount(accounts[16]),
	}
	return &decoded, nil
}

// hasTransferProgramAccounts checks the fixed program and sysvar positions.
// The auth rules program is required when a rule set is passed, and may be
// the placeholder otherwise.
func hasTransferProgramAccounts(accounts []ed25519.PublicKey) bool {
	for i, expected := range []ed25519.PublicKey{
		system.ProgramKey,
		system.InstructionsSysVar,
		token.ProgramKey,
		token.AssociatedTokenAccountProgramKey,
	} {
		if !bytes.Equal(accounts[11+i], expected) {
			return false
		}
	}

	authorizationRulesProgram := accounts[15]
	if bytes.Equal(authorizationRulesProgram, tokenauthrules.ProgramKey) {
		return true
	}
	return bytes.Equal(authorizationRulesProgram, ProgramKey) && bytes.Equal(accounts[16], ProgramKey)
}

func optionalAccount(key ed25519.PublicKey) solana.AccountMeta {
	if len(key) == 0 {
		return solana.NewReadonlyAccountMeta(ProgramKey, false)
	}
	return solana.NewReadonlyAccountMeta(key, false)
}

func optionalWritableAccount(key ed25519.PublicKey) solana.AccountMeta {
	if len(key) == 0 {
		return solana.NewReadonlyAccountMeta(ProgramKey, false)
	}
	return solana.NewAccountMeta(key, false)
}

func fromOptionalAccount(key ed25519.PublicKey) ed25519.PublicKey {
	if bytes.Equal(key, ProgramKey) {
		return nil
	}
	return key
}
