package tokenmetadata

import (
	"crypto/ed25519"

	"github.com/code-payments/pnft-transfer/pkg/solana"
)

var (
	MetadataPrefix    = []byte("metadata")
	EditionPrefix     = []byte("edition")
	TokenRecordPrefix = []byte("token_record")
)

type GetMetadataAddressArgs struct {
	Mint ed25519.PublicKey
}

func GetMetadataAddress(args *GetMetadataAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		ProgramKey,
		MetadataPrefix,
		ProgramKey,
		args.Mint,
	)
}

type GetMasterEditionAddressArgs struct {
	Mint ed25519.PublicKey
}

func GetMasterEditionAddress(args *GetMasterEditionAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		ProgramKey,
		MetadataPrefix,
		ProgramKey,
		args.Mint,
		EditionPrefix,
	)
}

// GetTokenRecordAddressArgs identifies the per token account record kept
// for programmable assets.
type GetTokenRecordAddressArgs struct {
	Mint  ed25519.PublicKey
	Token ed25519.PublicKey
}

func GetTokenRecordAddress(args *GetTokenRecordAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		ProgramKey,
		MetadataPrefix,
		ProgramKey,
		args.Mint,
		TokenRecordPrefix,
		args.Token,
	)
}
