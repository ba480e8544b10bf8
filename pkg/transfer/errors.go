package transfer

import (
	"github.com/pkg/errors"
)

var (
	// ErrDecode indicates the metadata account doesn't hold a valid
	// metadata record for the mint.
	ErrDecode = errors.New("metadata could not be decoded")

	// ErrBadRuleSet indicates the supplied rule set account differs from
	// the rule set the asset is bound to.
	ErrBadRuleSet = errors.New("rule set does not match asset rule set")

	// ErrMissingRuleSetAccount indicates the asset is bound to a rule set
	// but the request didn't supply one.
	ErrMissingRuleSetAccount = errors.New("rule set account required by asset is missing")

	ErrInvalidRequest     = errors.New("invalid transfer request")
	ErrInvalidPayload     = errors.New("invalid authorization payload")
	ErrInvalidSignerSeeds = errors.New("signer seeds do not derive a valid program signer")

	// ErrPayerCarriesData indicates the payer owns account data and can't
	// fund account creation.
	ErrPayerCarriesData = errors.New("payer must not carry data")

	// ErrInvocationFailed wraps every failure reported by the invoker.
	ErrInvocationFailed = errors.New("transfer invocation failed")
)
