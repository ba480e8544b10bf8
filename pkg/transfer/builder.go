package transfer

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/pnft-transfer/pkg/solana"
	"github.com/code-payments/pnft-transfer/pkg/solana/system"
	"github.com/code-payments/pnft-transfer/pkg/solana/token"
	"github.com/code-payments/pnft-transfer/pkg/solana/tokenauthrules"
	"github.com/code-payments/pnft-transfer/pkg/solana/tokenmetadata"
)

// TransferAmount is the only amount a transfer moves.
const TransferAmount = 1

type BuildOptions struct {
	// DeriveTokenRecords fills absent token record addresses of
	// programmable assets from the source and destination token accounts.
	DeriveTokenRecords bool
}

// Build assembles the Transfer call for req from the asset's metadata. It
// doesn't read any state and has no side effects.
func Build(req *Request, metadata *AssetMetadata, opts BuildOptions) (*AssembledCall, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if metadata == nil {
		return nil, errors.Wrap(ErrDecode, "metadata is nil")
	}
	if !bytes.Equal(metadata.Mint, req.Mint) {
		return nil, errors.Wrapf(ErrDecode, "metadata is for mint %s", base58.Encode(metadata.Mint))
	}

	source, destination, err := tokenAccounts(req)
	if err != nil {
		return nil, err
	}

	edition := req.Edition
	if len(edition) == 0 {
		edition, _, err = tokenmetadata.GetMasterEditionAddress(&tokenmetadata.GetMasterEditionAddressArgs{Mint: req.Mint})
		if err != nil {
			return nil, errors.Wrap(err, "error deriving edition address")
		}
	}

	ixnAccounts := &tokenmetadata.TransferInstructionAccounts{
		Token:            source,
		TokenOwner:       req.Owner,
		Destination:      destination,
		DestinationOwner: req.DestinationOwner,
		Mint:             req.Mint,
		Metadata:         req.Metadata,
		Edition:          edition,
		Authority:        req.Authority,
		Payer:            req.Payer,
	}

	accounts := make([]solana.AccountMeta, 0, coreAccountCount+tokenRecordAccountCount+ruleSetAccountCount)
	accounts = append(accounts,
		solana.NewAccountMeta(source, false),
		solana.NewReadonlyAccountMeta(req.Owner, false),
		solana.NewAccountMeta(destination, false),
		solana.NewReadonlyAccountMeta(req.DestinationOwner, false),
		solana.NewReadonlyAccountMeta(req.Mint, false),
		solana.NewAccountMeta(req.Metadata, false),
		solana.NewReadonlyAccountMeta(edition, false),
		solana.NewReadonlyAccountMeta(req.Authority, true),
	)

	programmable := metadata.IsProgrammable()
	if programmable {
		ownerRecord, destinationRecord, err := tokenRecords(req, source, destination, opts)
		if err != nil {
			return nil, err
		}

		ixnAccounts.OwnerTokenRecord = ownerRecord
		ixnAccounts.DestinationTokenRecord = destinationRecord

		accounts = append(accounts,
			solana.NewAccountMeta(ownerRecord, false),
			solana.NewAccountMeta(destinationRecord, false),
		)
	}

	accounts = append(accounts,
		solana.NewAccountMeta(req.Payer, true),
		solana.NewReadonlyAccountMeta(system.ProgramKey, false),
		solana.NewReadonlyAccountMeta(system.InstructionsSysVar, false),
		solana.NewReadonlyAccountMeta(token.ProgramKey, false),
		solana.NewReadonlyAccountMeta(token.AssociatedTokenAccountProgramKey, false),
	)

	// A rule set only enters the call when the asset is bound to one. One
	// supplied for an unbound asset is ignored.
	var ruleSet ed25519.PublicKey
	if declared := metadata.RuleSet(); declared != nil {
		if len(req.RuleSet) == 0 {
			return nil, errors.Wrapf(ErrMissingRuleSetAccount, "asset is bound to %s", base58.Encode(declared))
		}
		if !bytes.Equal(declared, req.RuleSet) {
			return nil, errors.Wrapf(ErrBadRuleSet, "expected %s, got %s", base58.Encode(declared), base58.Encode(req.RuleSet))
		}

		ruleSet = copyBytes(declared)
		ixnAccounts.AuthorizationRules = ruleSet

		accounts = append(accounts,
			solana.NewReadonlyAccountMeta(tokenauthrules.ProgramKey, false),
			solana.NewReadonlyAccountMeta(ruleSet, false),
		)
	}

	args := tokenmetadata.TransferInstructionArgs{
		Amount: TransferAmount,
	}
	if req.AuthorizationData != nil {
		authorizationData, err := req.AuthorizationData.ToNative()
		if err != nil {
			return nil, errors.Wrap(ErrInvalidPayload, err.Error())
		}
		args.AuthorizationData = authorizationData
	}

	return &AssembledCall{
		accounts:     accounts,
		instruction:  tokenmetadata.NewTransferInstruction(ixnAccounts, &args),
		args:         args,
		programmable: programmable,
		ruleSet:      ruleSet,
	}, nil
}

func tokenRecords(req *Request, source, destination ed25519.PublicKey, opts BuildOptions) (ed25519.PublicKey, ed25519.PublicKey, error) {
	ownerRecord := req.OwnerTokenRecord
	destinationRecord := req.DestinationTokenRecord

	if !opts.DeriveTokenRecords {
		if len(ownerRecord) == 0 || len(destinationRecord) == 0 {
			return nil, nil, errors.Wrap(ErrInvalidRequest, "token records are required for programmable assets")
		}
		return ownerRecord, destinationRecord, nil
	}

	var err error
	if len(ownerRecord) == 0 {
		ownerRecord, _, err = tokenmetadata.GetTokenRecordAddress(&tokenmetadata.GetTokenRecordAddressArgs{
			Mint:  req.Mint,
			Token: source,
		})
		if err != nil {
			return nil, nil, errors.Wrap(err, "error deriving owner token record")
		}
	}
	if len(destinationRecord) == 0 {
		destinationRecord, _, err = tokenmetadata.GetTokenRecordAddress(&tokenmetadata.GetTokenRecordAddressArgs{
			Mint:  req.Mint,
			Token: destination,
		})
		if err != nil {
			return nil, nil, errors.Wrap(err, "error deriving destination token record")
		}
	}
	return ownerRecord, destinationRecord, nil
}

func tokenAccounts(req *Request) (ed25519.PublicKey, ed25519.PublicKey, error) {
	source := req.Source
	destination := req.Destination

	var err error
	if len(source) == 0 {
		source, err = token.GetAssociatedAccount(req.Owner, req.Mint)
		if err != nil {
			return nil, nil, errors.Wrap(err, "error deriving source token account")
		}
	}
	if len(destination) == 0 {
		destination, err = token.GetAssociatedAccount(req.DestinationOwner, req.Mint)
		if err != nil {
			return nil, nil, errors.Wrap(err, "error deriving destination token account")
		}
	}
	return source, destination, nil
}
