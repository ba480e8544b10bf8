package memory

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/sha512"
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"

	"github.com/code-payments/pnft-transfer/pkg/solana"
	"github.com/code-payments/pnft-transfer/pkg/solana/tokenmetadata"
	"github.com/code-payments/pnft-transfer/pkg/transfer"
)

// Invocation is a call accepted by the invoker.
type Invocation struct {
	Call      *transfer.AssembledCall
	Signer    *transfer.ProgramSigner
	Signature solana.Signature
}

// Invoker emulates the runtime's checks on a cross-program invocation and
// records every accepted call. Keys registered as transaction signers
// satisfy signer accounts, as does the address derived from the seeds of a
// signed invocation.
type Invoker struct {
	mu          sync.Mutex
	signers     map[string]struct{}
	invocations []Invocation
	sequence    uint64
	err         error
}

func New(signers ...ed25519.PublicKey) *Invoker {
	i := &Invoker{
		signers: make(map[string]struct{}),
	}
	for _, signer := range signers {
		i.signers[string(signer)] = struct{}{}
	}
	return i
}

// AddSigner registers key as a signer of the enclosing transaction.
func (i *Invoker) AddSigner(key ed25519.PublicKey) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.signers[string(key)] = struct{}{}
}

// InduceError makes every subsequent invocation fail with err.
func (i *Invoker) InduceError(err error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.err = err
}

func (i *Invoker) StopInducingError() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.err = nil
}

// Invocations returns the accepted calls in order.
func (i *Invoker) Invocations() []Invocation {
	i.mu.Lock()
	defer i.mu.Unlock()

	return append([]Invocation(nil), i.invocations...)
}

func (i *Invoker) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.invocations = nil
	i.sequence = 0
}

// Invoke implements transfer.Invoker.Invoke.
func (i *Invoker) Invoke(ctx context.Context, call *transfer.AssembledCall) (solana.Signature, error) {
	return i.invoke(call, nil)
}

// InvokeSigned implements transfer.Invoker.InvokeSigned.
func (i *Invoker) InvokeSigned(ctx context.Context, call *transfer.AssembledCall, signer *transfer.ProgramSigner) (solana.Signature, error) {
	if signer == nil {
		return solana.Signature{}, errors.New("signer is required for a signed invocation")
	}
	return i.invoke(call, signer)
}

func (i *Invoker) invoke(call *transfer.AssembledCall, signer *transfer.ProgramSigner) (solana.Signature, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	var sig solana.Signature

	if i.err != nil {
		return sig, i.err
	}

	var derived ed25519.PublicKey
	if signer != nil {
		var err error
		derived, err = solana.CreateProgramAddress(signer.Program, signer.Seeds...)
		if err != nil {
			return sig, solana.NewInstructionError(0, solana.InstructionErrorInvalidSeeds)
		}
	}

	ixn := call.Instruction()
	available := call.Accounts()

	for _, meta := range ixn.Accounts {
		// Omitted optional accounts are passed as the program itself.
		if bytes.Equal(meta.PublicKey, tokenmetadata.ProgramKey) {
			continue
		}

		provided, ok := find(available, meta.PublicKey)
		if !ok {
			return sig, solana.NewInstructionError(0, solana.InstructionErrorMissingAccount)
		}
		if (meta.IsWritable && !provided.IsWritable) || (meta.IsSigner && !provided.IsSigner) {
			return sig, solana.NewInstructionError(0, solana.InstructionErrorPrivilegeEscalation)
		}

		if !meta.IsSigner {
			continue
		}
		if _, ok := i.signers[string(meta.PublicKey)]; ok {
			continue
		}
		if derived != nil && bytes.Equal(derived, meta.PublicKey) {
			continue
		}
		return sig, solana.NewInstructionError(0, solana.InstructionErrorMissingRequiredSignature)
	}

	i.sequence++
	sig = signatureOf(i.sequence, ixn)

	i.invocations = append(i.invocations, Invocation{
		Call:      call,
		Signer:    signer,
		Signature: sig,
	})
	return sig, nil
}

func find(accounts []solana.AccountMeta, key ed25519.PublicKey) (solana.AccountMeta, bool) {
	for _, account := range accounts {
		if bytes.Equal(account.PublicKey, key) {
			return account, true
		}
	}
	return solana.AccountMeta{}, false
}

func signatureOf(sequence uint64, ixn solana.Instruction) solana.Signature {
	h := sha512.New()

	var seq [8]byte
	binary.LittleEndian.PutUint64(seq[:], sequence)
	h.Write(seq[:])
	h.Write(ixn.Program)
	for _, account := range ixn.Accounts {
		h.Write(account.PublicKey)
	}
	h.Write(ixn.Data)

	var sig solana.Signature
	copy(sig[:], h.Sum(nil))
	return sig
}
