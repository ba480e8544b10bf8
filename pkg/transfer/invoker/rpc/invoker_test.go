package rpc

import (
	"context"
	"crypto/ed25519"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/pnft-transfer/pkg/solana"
	"github.com/code-payments/pnft-transfer/pkg/solana/computebudget"
	"github.com/code-payments/pnft-transfer/pkg/solana/memo"
	"github.com/code-payments/pnft-transfer/pkg/solana/tokenmetadata"
	"github.com/code-payments/pnft-transfer/pkg/transfer"
)

type fakeClient struct {
	mu           sync.Mutex
	blockhash    solana.Blockhash
	blockhashErr error
	submitErr    error
	submitted    []solana.Transaction
	commitments  []solana.Commitment
}

func (c *fakeClient) GetAccountInfo(ed25519.PublicKey, solana.Commitment) (solana.AccountInfo, error) {
	return solana.AccountInfo{}, solana.ErrNoAccountInfo
}

func (c *fakeClient) GetLatestBlockhash() (solana.Blockhash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blockhash, c.blockhashErr
}

func (c *fakeClient) SubmitTransaction(txn solana.Transaction, commitment solana.Commitment) (solana.Signature, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.submitted = append(c.submitted, txn)
	c.commitments = append(c.commitments, commitment)

	var sig solana.Signature
	if c.submitErr != nil {
		return sig, c.submitErr
	}
	copy(sig[:], txn.Signature())
	return sig, nil
}

func newKeyPair(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub, priv
}

func buildCall(t *testing.T, authority, payer ed25519.PublicKey) *transfer.AssembledCall {
	mint, _ := newKeyPair(t)
	owner, _ := newKeyPair(t)
	destinationOwner, _ := newKeyPair(t)

	metadata, _, err := tokenmetadata.GetMetadataAddress(&tokenmetadata.GetMetadataAddressArgs{Mint: mint})
	require.NoError(t, err)

	standard := tokenmetadata.TokenStandardNonFungible
	call, err := transfer.Build(&transfer.Request{
		Authority:        authority,
		Owner:            owner,
		Payer:            payer,
		DestinationOwner: destinationOwner,
		Mint:             mint,
		Metadata:         metadata,
	}, &transfer.AssetMetadata{Mint: mint, TokenStandard: &standard}, transfer.BuildOptions{})
	require.NoError(t, err)
	return call
}

func TestInvoker_Invoke(t *testing.T) {
	authority, authorityKey := newKeyPair(t)
	payer, payerKey := newKeyPair(t)

	client := &fakeClient{blockhash: solana.Blockhash{1, 2, 3}}
	invoker := New(client, Options{Commitment: solana.CommitmentFinalized}, payerKey, authorityKey)

	call := buildCall(t, authority, payer)

	sig, err := invoker.Invoke(context.Background(), call)
	require.NoError(t, err)

	require.Len(t, client.submitted, 1)
	assert.Equal(t, solana.CommitmentFinalized, client.commitments[0])

	txn := client.submitted[0]
	assert.True(t, txn.IsFullySigned())
	assert.Equal(t, client.blockhash, txn.Message.RecentBlockhash)
	assert.EqualValues(t, payer, txn.Message.Accounts[0])
	assert.Equal(t, sig[:], txn.Signature())
	assert.True(t, ed25519.Verify(payer, txn.Message.Marshal(), txn.Signatures[0][:]))

	require.Len(t, txn.Message.Instructions, 1)
	decoded, err := tokenmetadata.TransferInstructionFromLegacyInstruction(txn, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, decoded.Args.Amount)
	assert.EqualValues(t, authority, decoded.Accounts.Authority)
	assert.EqualValues(t, payer, decoded.Accounts.Payer)
}

func TestInvoker_Options(t *testing.T) {
	authority, authorityKey := newKeyPair(t)
	payer, payerKey := newKeyPair(t)

	client := &fakeClient{}
	invoker := New(client, Options{
		ComputeUnitLimit: 2_000_000,
		ComputeUnitPrice: 10_000,
		Memo:             "pnft-transfer",
	}, payerKey, authorityKey)

	_, err := invoker.Invoke(context.Background(), buildCall(t, authority, payer))
	require.NoError(t, err)

	require.Len(t, client.submitted, 1)
	assert.Equal(t, solana.CommitmentConfirmed, client.commitments[0])

	txn := client.submitted[0]
	require.Len(t, txn.Message.Instructions, 4)

	limit, err := computebudget.ParseSetComputeUnitLimit(decompile(txn, 0))
	require.NoError(t, err)
	assert.Equal(t, computebudget.MaxComputeUnitLimit, limit)

	price, err := computebudget.ParseSetComputeUnitPrice(decompile(txn, 1))
	require.NoError(t, err)
	assert.EqualValues(t, 10_000, price)

	_, err = tokenmetadata.TransferInstructionFromLegacyInstruction(txn, 2)
	require.NoError(t, err)

	text, err := memo.MemoFromLegacyInstruction(txn, 3)
	require.NoError(t, err)
	assert.Equal(t, "pnft-transfer", text)
}

func TestInvoker_InvalidMemo(t *testing.T) {
	authority, authorityKey := newKeyPair(t)
	payer, payerKey := newKeyPair(t)

	client := &fakeClient{}
	invoker := New(client, Options{Memo: string([]byte{0xff})}, payerKey, authorityKey)

	_, err := invoker.Invoke(context.Background(), buildCall(t, authority, payer))
	assert.ErrorIs(t, err, memo.ErrInvalidMemo)
	assert.Empty(t, client.submitted)
}

func decompile(txn solana.Transaction, index int) solana.Instruction {
	compiled := txn.Message.Instructions[index]
	return solana.Instruction{
		Program: txn.Message.Accounts[compiled.ProgramIndex],
		Data:    compiled.Data,
	}
}

func TestInvoker_MissingSigningKey(t *testing.T) {
	authority, _ := newKeyPair(t)
	payer, payerKey := newKeyPair(t)

	client := &fakeClient{}
	invoker := New(client, Options{}, payerKey)

	_, err := invoker.Invoke(context.Background(), buildCall(t, authority, payer))
	assert.ErrorIs(t, err, ErrMissingSigningKey)
	assert.Empty(t, client.submitted)
}

func TestInvoker_Failures(t *testing.T) {
	authority, authorityKey := newKeyPair(t)
	payer, payerKey := newKeyPair(t)
	call := buildCall(t, authority, payer)

	client := &fakeClient{blockhashErr: errors.New("blockhash unavailable")}
	invoker := New(client, Options{}, payerKey, authorityKey)

	_, err := invoker.Invoke(context.Background(), call)
	assert.ErrorIs(t, err, client.blockhashErr)
	assert.Empty(t, client.submitted)

	client.blockhashErr = nil
	client.submitErr = solana.NewInstructionError(0, solana.InstructionErrorInvalidAccountData)

	_, err = invoker.Invoke(context.Background(), call)
	require.Error(t, err)

	var ixnErr solana.InstructionError
	require.True(t, errors.As(err, &ixnErr))
	assert.Equal(t, solana.InstructionErrorInvalidAccountData, ixnErr.ErrorKey())

	// Submitted once, never retried.
	assert.Len(t, client.submitted, 1)
}

func TestInvoker_InvokeSigned(t *testing.T) {
	authority, authorityKey := newKeyPair(t)
	payer, payerKey := newKeyPair(t)

	client := &fakeClient{}
	invoker := New(client, Options{}, payerKey, authorityKey)

	_, err := invoker.InvokeSigned(context.Background(), buildCall(t, authority, payer), &transfer.ProgramSigner{})
	assert.ErrorIs(t, err, ErrDelegatedInvocationUnsupported)
	assert.Empty(t, client.submitted)
}
