package transfer

import (
	"context"

	"github.com/code-payments/pnft-transfer/pkg/solana"
)

// Invoker issues an assembled call against the runtime. Implementations
// must make exactly one attempt per call and never retry.
type Invoker interface {
	// Invoke issues the call with the signatures of the call's signers.
	Invoke(ctx context.Context, call *AssembledCall) (solana.Signature, error)

	// InvokeSigned issues the call on behalf of the program derived
	// authority described by signer.
	InvokeSigned(ctx context.Context, call *AssembledCall, signer *ProgramSigner) (solana.Signature, error)
}
