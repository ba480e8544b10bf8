package transfer

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/pnft-transfer/pkg/metrics"
	"github.com/code-payments/pnft-transfer/pkg/solana"
	"github.com/code-payments/pnft-transfer/pkg/solana/tokenmetadata"
)

const (
	metricsStructName = "transfer.resolver"
)

// AssetMetadata is the part of a metadata record that decides how a
// transfer is assembled.
type AssetMetadata struct {
	Mint               ed25519.PublicKey
	TokenStandard      *tokenmetadata.TokenStandard
	ProgrammableConfig *tokenmetadata.ProgrammableConfig

	// Record is the full decoded account.
	Record *tokenmetadata.Metadata
}

// IsProgrammable reports whether the asset requires token records.
func (m *AssetMetadata) IsProgrammable() bool {
	return m.TokenStandard != nil && m.TokenStandard.IsProgrammable()
}

// RuleSet returns the rule set the asset is bound to, or nil.
func (m *AssetMetadata) RuleSet() ed25519.PublicKey {
	if !m.ProgrammableConfig.HasRuleSet() {
		return nil
	}
	return m.ProgrammableConfig.RuleSet
}

// AccountInfoGetter reads raw account state. solana.Client satisfies it.
type AccountInfoGetter interface {
	GetAccountInfo(ed25519.PublicKey, solana.Commitment) (solana.AccountInfo, error)
}

// Resolver loads and decodes asset metadata.
type Resolver struct {
	log    *logrus.Entry
	conf   *conf
	reader AccountInfoGetter
}

func NewResolver(reader AccountInfoGetter, configProvider ConfigProvider) *Resolver {
	return &Resolver{
		log:    logrus.StandardLogger().WithField("type", "transfer/resolver"),
		conf:   configProvider(),
		reader: reader,
	}
}

// Resolve fetches the metadata account and decodes it for mint.
func (r *Resolver) Resolve(ctx context.Context, mint, metadataAddress ed25519.PublicKey) (*AssetMetadata, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Resolve")
	defer tracer.End()

	log := r.log.WithFields(logrus.Fields{
		"method":   "Resolve",
		"mint":     base58.Encode(mint),
		"metadata": base58.Encode(metadataAddress),
	})

	commitment := solana.CommitmentFromString(r.conf.commitment.Get(ctx))

	info, err := r.reader.GetAccountInfo(metadataAddress, commitment)
	if errors.Is(err, solana.ErrNoAccountInfo) {
		log.Debug("metadata account not found")
		return nil, errors.Wrap(ErrDecode, "metadata account not found")
	} else if err != nil {
		log.WithError(err).Warn("failure getting metadata account")
		tracer.OnError(err)
		return nil, errors.Wrap(err, "error getting metadata account")
	}

	metadata, err := DecodeMetadata(mint, metadataAddress, info)
	if err != nil {
		log.WithError(err).Debug("metadata account failed to decode")
		return nil, err
	}
	return metadata, nil
}

// DecodeMetadata decodes info as the metadata record of mint. The address
// must be the canonical metadata PDA and the account must be owned by the
// token metadata program.
func DecodeMetadata(mint, metadataAddress ed25519.PublicKey, info solana.AccountInfo) (*AssetMetadata, error) {
	expected, _, err := tokenmetadata.GetMetadataAddress(&tokenmetadata.GetMetadataAddressArgs{Mint: mint})
	if err != nil {
		return nil, errors.Wrapf(ErrDecode, "cannot derive metadata address: %v", err)
	}
	if !bytes.Equal(expected, metadataAddress) {
		return nil, errors.Wrapf(ErrDecode, "metadata address %s is not derived from mint", base58.Encode(metadataAddress))
	}
	if !bytes.Equal(info.Owner, tokenmetadata.ProgramKey) {
		return nil, errors.Wrapf(ErrDecode, "metadata account owned by %s", base58.Encode(info.Owner))
	}

	var record tokenmetadata.Metadata
	if err := record.Unmarshal(info.Data); err != nil {
		return nil, errors.Wrap(ErrDecode, err.Error())
	}
	if !bytes.Equal(record.Mint, mint) {
		return nil, errors.Wrapf(ErrDecode, "metadata is for mint %s", base58.Encode(record.Mint))
	}

	return &AssetMetadata{
		Mint:               record.Mint,
		TokenStandard:      record.TokenStandard,
		ProgrammableConfig: record.ProgrammableConfig,
		Record:             &record,
	}, nil
}
