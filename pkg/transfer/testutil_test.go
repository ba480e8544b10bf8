package transfer

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/pnft-transfer/pkg/solana"
	"github.com/code-payments/pnft-transfer/pkg/solana/tokenmetadata"
)

type testEnv struct {
	mint     ed25519.PublicKey
	metadata ed25519.PublicKey
	ruleSet  ed25519.PublicKey
	accounts *fakeAccounts
}

func newKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub
}

func newTestEnv(t *testing.T) *testEnv {
	mint := newKey(t)
	metadata, _, err := tokenmetadata.GetMetadataAddress(&tokenmetadata.GetMetadataAddressArgs{Mint: mint})
	require.NoError(t, err)

	return &testEnv{
		mint:     mint,
		metadata: metadata,
		ruleSet:  newKey(t),
		accounts: newFakeAccounts(),
	}
}

// setMetadata stores a metadata account for the env's mint.
func (e *testEnv) setMetadata(t *testing.T, standard *tokenmetadata.TokenStandard, config *tokenmetadata.ProgrammableConfig) *tokenmetadata.Metadata {
	record := &tokenmetadata.Metadata{
		Key:                tokenmetadata.KeyMetadataV1,
		UpdateAuthority:    newKey(t),
		Mint:               e.mint,
		Data:               tokenmetadata.Data{Name: "Asset", Symbol: "AST", Uri: "https://example.com/asset.json"},
		IsMutable:          true,
		TokenStandard:      standard,
		ProgrammableConfig: config,
	}

	e.accounts.set(e.metadata, solana.AccountInfo{
		Data:  record.Marshal(),
		Owner: tokenmetadata.ProgramKey,
	})
	return record
}

func (e *testEnv) assetMetadata(standard *tokenmetadata.TokenStandard, config *tokenmetadata.ProgrammableConfig) *AssetMetadata {
	return &AssetMetadata{
		Mint:               e.mint,
		TokenStandard:      standard,
		ProgrammableConfig: config,
	}
}

func (e *testEnv) newRequest(t *testing.T) *Request {
	return &Request{
		Authority:        newKey(t),
		Owner:            newKey(t),
		Payer:            newKey(t),
		Source:           newKey(t),
		Destination:      newKey(t),
		DestinationOwner: newKey(t),
		Mint:             e.mint,
		Metadata:         e.metadata,
		Edition:          newKey(t),
	}
}

func standardPtr(s tokenmetadata.TokenStandard) *tokenmetadata.TokenStandard {
	return &s
}

func ruleSetConfig(ruleSet ed25519.PublicKey) *tokenmetadata.ProgrammableConfig {
	return &tokenmetadata.ProgrammableConfig{Version: tokenmetadata.ProgrammableConfigV1, RuleSet: ruleSet}
}

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[string]solana.AccountInfo
	err      error
	reads    []solana.Commitment
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: make(map[string]solana.AccountInfo)}
}

func (f *fakeAccounts) set(key ed25519.PublicKey, info solana.AccountInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[string(key)] = info
}

func (f *fakeAccounts) GetAccountInfo(key ed25519.PublicKey, commitment solana.Commitment) (solana.AccountInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reads = append(f.reads, commitment)
	if f.err != nil {
		return solana.AccountInfo{}, f.err
	}

	info, ok := f.accounts[string(key)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}
	return info, nil
}

type invocation struct {
	call   *AssembledCall
	signer *ProgramSigner
}

type fakeInvoker struct {
	mu          sync.Mutex
	invocations []invocation
	err         error
}

func (f *fakeInvoker) Invoke(_ context.Context, call *AssembledCall) (solana.Signature, error) {
	return f.record(call, nil)
}

func (f *fakeInvoker) InvokeSigned(_ context.Context, call *AssembledCall, signer *ProgramSigner) (solana.Signature, error) {
	return f.record(call, signer)
}

func (f *fakeInvoker) record(call *AssembledCall, signer *ProgramSigner) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.invocations = append(f.invocations, invocation{call: call, signer: signer})

	var sig solana.Signature
	if f.err != nil {
		return sig, f.err
	}
	sig[0] = byte(len(f.invocations))
	return sig, nil
}

func (f *fakeInvoker) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.invocations)
}

func containsKey(metas []solana.AccountMeta, key ed25519.PublicKey) bool {
	for _, meta := range metas {
		if bytes.Equal(meta.PublicKey, key) {
			return true
		}
	}
	return false
}

var errDownstream = errors.New("downstream rejected transfer")
