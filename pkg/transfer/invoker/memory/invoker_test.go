package memory

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/pnft-transfer/pkg/solana"
	"github.com/code-payments/pnft-transfer/pkg/solana/tokenmetadata"
	"github.com/code-payments/pnft-transfer/pkg/transfer"
)

func newKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub
}

type testAsset struct {
	mint     ed25519.PublicKey
	metadata ed25519.PublicKey
	ruleSet  ed25519.PublicKey
	record   *tokenmetadata.Metadata
}

func newTestAsset(t *testing.T) *testAsset {
	mint := newKey(t)
	metadata, _, err := tokenmetadata.GetMetadataAddress(&tokenmetadata.GetMetadataAddressArgs{Mint: mint})
	require.NoError(t, err)

	standard := tokenmetadata.TokenStandardProgrammableNonFungible
	ruleSet := newKey(t)

	return &testAsset{
		mint:     mint,
		metadata: metadata,
		ruleSet:  ruleSet,
		record: &tokenmetadata.Metadata{
			Key:             tokenmetadata.KeyMetadataV1,
			UpdateAuthority: newKey(t),
			Mint:            mint,
			Data:            tokenmetadata.Data{Name: "Asset", Symbol: "AST"},
			TokenStandard:   &standard,
			ProgrammableConfig: &tokenmetadata.ProgrammableConfig{
				Version: tokenmetadata.ProgrammableConfigV1,
				RuleSet: ruleSet,
			},
		},
	}
}

func (a *testAsset) request(t *testing.T) *transfer.Request {
	return &transfer.Request{
		Authority:        newKey(t),
		Owner:            newKey(t),
		Payer:            newKey(t),
		DestinationOwner: newKey(t),
		Mint:             a.mint,
		Metadata:         a.metadata,
		RuleSet:          a.ruleSet,
	}
}

func (a *testAsset) build(t *testing.T, req *transfer.Request) *transfer.AssembledCall {
	call, err := transfer.Build(req, &transfer.AssetMetadata{
		Mint:               a.mint,
		TokenStandard:      a.record.TokenStandard,
		ProgrammableConfig: a.record.ProgrammableConfig,
		Record:             a.record,
	}, transfer.BuildOptions{DeriveTokenRecords: true})
	require.NoError(t, err)
	return call
}

type accountReader map[string]solana.AccountInfo

func (r accountReader) GetAccountInfo(key ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	info, ok := r[string(key)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}
	return info, nil
}

func requireInstructionError(t *testing.T, err error, key solana.InstructionErrorKey) {
	var ixnErr solana.InstructionError
	require.True(t, errors.As(err, &ixnErr), "expected instruction error, got %v", err)
	assert.Equal(t, key, ixnErr.ErrorKey())
}

func TestInvoker_Invoke(t *testing.T) {
	asset := newTestAsset(t)
	req := asset.request(t)
	call := asset.build(t, req)

	invoker := New(req.Authority, req.Payer)

	sig, err := invoker.Invoke(context.Background(), call)
	require.NoError(t, err)
	assert.NotEqual(t, solana.Signature{}, sig)

	invocations := invoker.Invocations()
	require.Len(t, invocations, 1)
	assert.Equal(t, sig, invocations[0].Signature)
	assert.Nil(t, invocations[0].Signer)
	assert.Equal(t, call, invocations[0].Call)

	// Identical calls still get distinct signatures.
	other, err := invoker.Invoke(context.Background(), call)
	require.NoError(t, err)
	assert.NotEqual(t, sig, other)

	invoker.Reset()
	assert.Empty(t, invoker.Invocations())
}

func TestInvoker_MissingSignature(t *testing.T) {
	asset := newTestAsset(t)
	req := asset.request(t)
	call := asset.build(t, req)

	invoker := New(req.Payer)

	_, err := invoker.Invoke(context.Background(), call)
	requireInstructionError(t, err, solana.InstructionErrorMissingRequiredSignature)
	assert.Empty(t, invoker.Invocations())

	invoker.AddSigner(req.Authority)
	_, err = invoker.Invoke(context.Background(), call)
	require.NoError(t, err)
	assert.Len(t, invoker.Invocations(), 1)
}

func TestInvoker_InvokeSigned(t *testing.T) {
	asset := newTestAsset(t)

	program := newKey(t)
	seed := []byte("vault")
	pda, bump, err := solana.FindProgramAddressAndBump(program, seed)
	require.NoError(t, err)

	req := asset.request(t)
	req.Authority = pda
	call := asset.build(t, req)

	invoker := New(req.Payer)
	signer := &transfer.ProgramSigner{Program: program, Seeds: [][]byte{seed, {bump}}}

	_, err = invoker.InvokeSigned(context.Background(), call, signer)
	require.NoError(t, err)

	invocations := invoker.Invocations()
	require.Len(t, invocations, 1)
	assert.Equal(t, signer, invocations[0].Signer)

	// Without the seeds the authority has no signature.
	_, err = invoker.Invoke(context.Background(), call)
	requireInstructionError(t, err, solana.InstructionErrorMissingRequiredSignature)

	_, err = invoker.InvokeSigned(context.Background(), call, nil)
	assert.Error(t, err)
	assert.Len(t, invoker.Invocations(), 1)
}

func TestInvoker_InducedError(t *testing.T) {
	asset := newTestAsset(t)
	req := asset.request(t)
	call := asset.build(t, req)

	invoker := New(req.Authority, req.Payer)

	induced := errors.New("induced")
	invoker.InduceError(induced)
	_, err := invoker.Invoke(context.Background(), call)
	assert.Equal(t, induced, err)
	assert.Empty(t, invoker.Invocations())

	invoker.StopInducingError()
	_, err = invoker.Invoke(context.Background(), call)
	require.NoError(t, err)
}

func TestInvoker_WithDispatcher(t *testing.T) {
	asset := newTestAsset(t)
	reader := accountReader{
		string(asset.metadata): solana.AccountInfo{
			Data:  asset.record.Marshal(),
			Owner: tokenmetadata.ProgramKey,
		},
	}

	req := asset.request(t)
	invoker := New(req.Authority, req.Payer)
	dispatcher := transfer.NewDispatcher(reader, invoker, transfer.WithEnvConfigs())

	sig, err := dispatcher.Transfer(context.Background(), req)
	require.NoError(t, err)

	invocations := invoker.Invocations()
	require.Len(t, invocations, 1)
	assert.Equal(t, sig, invocations[0].Signature)
	assert.Len(t, invocations[0].Call.Accounts(), 17)

	// Runtime failures surface as invocation failures.
	invoker.Reset()
	req.Authority = newKey(t)
	_, err = dispatcher.Transfer(context.Background(), req)
	assert.ErrorIs(t, err, transfer.ErrInvocationFailed)
	assert.Empty(t, invoker.Invocations())
}
