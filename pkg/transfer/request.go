package transfer

import (
	"crypto/ed25519"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = validator.New()

// Request describes a single unit transfer of a token metadata asset.
//
// Optional addresses may be left nil and are derived from their canonical
// seeds. The rule set is only read for assets bound to one.
type Request struct {
	// Authority signs the transfer. It's the owner itself or a delegate.
	Authority ed25519.PublicKey `validate:"required,len=32"`
	Owner     ed25519.PublicKey `validate:"required,len=32"`

	// Payer funds any accounts the transfer creates. It must be a plain
	// key pair account without data.
	Payer ed25519.PublicKey `validate:"required,len=32"`

	// Source and Destination default to the associated token accounts of
	// Owner and DestinationOwner.
	Source           ed25519.PublicKey `validate:"omitempty,len=32"`
	Destination      ed25519.PublicKey `validate:"omitempty,len=32"`
	DestinationOwner ed25519.PublicKey `validate:"required,len=32"`

	Mint     ed25519.PublicKey `validate:"required,len=32"`
	Metadata ed25519.PublicKey `validate:"required,len=32"`
	Edition  ed25519.PublicKey `validate:"omitempty,len=32"`

	OwnerTokenRecord       ed25519.PublicKey `validate:"omitempty,len=32"`
	DestinationTokenRecord ed25519.PublicKey `validate:"omitempty,len=32"`
	RuleSet                ed25519.PublicKey `validate:"omitempty,len=32"`

	AuthorizationData *AuthorizationDataLocal `validate:"-"`

	// Signer, when set, makes the transfer a delegated invocation signed by
	// the program derived address of Signer.Seeds.
	Signer *ProgramSigner
}

// ProgramSigner is a program derived authority. Seeds include the bump.
type ProgramSigner struct {
	Program ed25519.PublicKey `validate:"required,len=32"`
	Seeds   [][]byte          `validate:"required,min=1,max=16,dive,max=32"`
}

// InvocationMode selects how the assembled call is issued.
type InvocationMode uint8

const (
	InvocationModeUnknown InvocationMode = iota
	InvocationModeDirect
	InvocationModeDelegated
)

func (m InvocationMode) String() string {
	switch m {
	case InvocationModeDirect:
		return "direct"
	case InvocationModeDelegated:
		return "delegated"
	}
	return "unknown"
}

// InvocationMode returns the mode implied by the request.
func (r *Request) InvocationMode() InvocationMode {
	if r.Signer != nil {
		return InvocationModeDelegated
	}
	return InvocationModeDirect
}

// Validate checks address lengths and signer seed limits.
func (r *Request) Validate() error {
	if r == nil {
		return errors.Wrap(ErrInvalidRequest, "request is nil")
	}
	if err := validate.Struct(r); err != nil {
		return errors.Wrap(ErrInvalidRequest, err.Error())
	}
	return nil
}
