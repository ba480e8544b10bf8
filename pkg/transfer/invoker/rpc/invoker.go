package rpc

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/pnft-transfer/pkg/metrics"
	"github.com/code-payments/pnft-transfer/pkg/solana"
	"github.com/code-payments/pnft-transfer/pkg/solana/computebudget"
	"github.com/code-payments/pnft-transfer/pkg/solana/memo"
	"github.com/code-payments/pnft-transfer/pkg/transfer"
)

const (
	metricsStructName = "transfer.invoker.rpc"
)

var (
	// ErrDelegatedInvocationUnsupported is returned for signed invocations.
	// Program derived signatures only exist inside an executing program.
	ErrDelegatedInvocationUnsupported = errors.New("delegated invocation is not supported over rpc")

	// ErrMissingSigningKey indicates a signer of the call has no key.
	ErrMissingSigningKey = errors.New("missing signing key")
)

// Options adjusts the transaction wrapped around each call. Zero values
// leave the corresponding instruction out.
type Options struct {
	Commitment solana.Commitment

	// ComputeUnitLimit is capped at computebudget.MaxComputeUnitLimit.
	ComputeUnitLimit uint32

	// ComputeUnitPrice is the priority fee in micro-lamports per unit.
	ComputeUnitPrice uint64

	Memo string
}

// Invoker submits assembled calls as top-level transactions, signed with
// locally held keys.
type Invoker struct {
	log    *logrus.Entry
	client solana.Client
	opts   Options
	keys   []ed25519.PrivateKey
}

func New(client solana.Client, opts Options, keys ...ed25519.PrivateKey) *Invoker {
	if len(opts.Commitment.Commitment) == 0 {
		opts.Commitment = solana.CommitmentConfirmed
	}
	if opts.ComputeUnitLimit > computebudget.MaxComputeUnitLimit {
		opts.ComputeUnitLimit = computebudget.MaxComputeUnitLimit
	}

	return &Invoker{
		log:    logrus.StandardLogger().WithField("type", "transfer/invoker/rpc"),
		client: client,
		opts:   opts,
		keys:   keys,
	}
}

// Invoke implements transfer.Invoker.Invoke. The call's payer pays the fee,
// and the transaction is submitted exactly once.
func (i *Invoker) Invoke(ctx context.Context, call *transfer.AssembledCall) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Invoke")
	defer tracer.End()

	var sig solana.Signature

	log := i.log.WithFields(logrus.Fields{
		"method": "Invoke",
		"payer":  base58.Encode(call.Payer()),
	})

	signers, err := i.signingKeys(call.Signers())
	if err != nil {
		return sig, err
	}

	instructions, err := i.instructions(call)
	if err != nil {
		return sig, err
	}

	txn := solana.NewTransaction(call.Payer(), instructions...)

	blockhash, err := i.client.GetLatestBlockhash()
	if err != nil {
		log.WithError(err).Warn("failure getting latest blockhash")
		tracer.OnError(err)
		return sig, errors.Wrap(err, "error getting latest blockhash")
	}
	txn.SetBlockhash(blockhash)

	if err := txn.Sign(signers...); err != nil {
		return sig, errors.Wrap(err, "error signing transaction")
	}

	sig, err = i.client.SubmitTransaction(txn, i.opts.Commitment)
	if err != nil {
		log.WithError(err).Warn("failure submitting transaction")
		tracer.OnError(err)
		return sig, errors.Wrap(err, "error submitting transaction")
	}

	log.WithField("signature", sig.ToBase58()).Debug("transaction submitted")
	return sig, nil
}

// InvokeSigned implements transfer.Invoker.InvokeSigned.
func (i *Invoker) InvokeSigned(_ context.Context, _ *transfer.AssembledCall, _ *transfer.ProgramSigner) (solana.Signature, error) {
	return solana.Signature{}, ErrDelegatedInvocationUnsupported
}

func (i *Invoker) instructions(call *transfer.AssembledCall) ([]solana.Instruction, error) {
	var instructions []solana.Instruction

	if i.opts.ComputeUnitLimit > 0 {
		instructions = append(instructions, computebudget.NewSetComputeUnitLimitInstruction(i.opts.ComputeUnitLimit))
	}
	if i.opts.ComputeUnitPrice > 0 {
		instructions = append(instructions, computebudget.NewSetComputeUnitPriceInstruction(i.opts.ComputeUnitPrice))
	}

	instructions = append(instructions, call.Instruction())

	if len(i.opts.Memo) > 0 {
		memoIxn, err := memo.NewMemoInstruction(i.opts.Memo)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, memoIxn)
	}
	return instructions, nil
}

func (i *Invoker) signingKeys(signers []ed25519.PublicKey) ([]ed25519.PrivateKey, error) {
	keys := make([]ed25519.PrivateKey, 0, len(signers))
	for _, signer := range signers {
		key, ok := i.keyFor(signer)
		if !ok {
			return nil, errors.Wrapf(ErrMissingSigningKey, "no key for %s", base58.Encode(signer))
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (i *Invoker) keyFor(pub ed25519.PublicKey) (ed25519.PrivateKey, bool) {
	for _, key := range i.keys {
		if bytes.Equal(key.Public().(ed25519.PublicKey), pub) {
			return key, true
		}
	}
	return nil, false
}
