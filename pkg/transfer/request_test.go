package transfer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_Validate(t *testing.T) {
	env := newTestEnv(t)

	req := env.newRequest(t)
	require.NoError(t, req.Validate())
	assert.Equal(t, InvocationModeDirect, req.InvocationMode())

	// Optional addresses may be omitted.
	req.Source = nil
	req.Destination = nil
	req.Edition = nil
	require.NoError(t, req.Validate())

	for name, mutate := range map[string]func(r *Request){
		"missing authority":      func(r *Request) { r.Authority = nil },
		"missing payer":          func(r *Request) { r.Payer = nil },
		"short mint":             func(r *Request) { r.Mint = r.Mint[:16] },
		"long metadata":          func(r *Request) { r.Metadata = append(bytes.Clone(r.Metadata), 0) },
		"short rule set":         func(r *Request) { r.RuleSet = []byte{1} },
		"short token record":     func(r *Request) { r.OwnerTokenRecord = []byte{1, 2} },
		"signer without seeds":   func(r *Request) { r.Signer = &ProgramSigner{Program: newKey(t)} },
		"signer seed too long":   func(r *Request) { r.Signer = &ProgramSigner{Program: newKey(t), Seeds: [][]byte{make([]byte, 33)}} },
		"signer without program": func(r *Request) { r.Signer = &ProgramSigner{Seeds: [][]byte{[]byte("seed")}} },
		"too many signer seeds": func(r *Request) {
			r.Signer = &ProgramSigner{Program: newKey(t), Seeds: make([][]byte, 17)}
		},
	} {
		r := env.newRequest(t)
		mutate(r)
		assert.ErrorIs(t, r.Validate(), ErrInvalidRequest, name)
	}

	var nilRequest *Request
	assert.ErrorIs(t, nilRequest.Validate(), ErrInvalidRequest)
}

func TestRequest_InvocationMode(t *testing.T) {
	env := newTestEnv(t)

	req := env.newRequest(t)
	assert.Equal(t, InvocationModeDirect, req.InvocationMode())

	req.Signer = &ProgramSigner{Program: newKey(t), Seeds: [][]byte{[]byte("escrow"), {255}}}
	require.NoError(t, req.Validate())
	assert.Equal(t, InvocationModeDelegated, req.InvocationMode())

	assert.Equal(t, "direct", InvocationModeDirect.String())
	assert.Equal(t, "delegated", InvocationModeDelegated.String())
	assert.Equal(t, "unknown", InvocationModeUnknown.String())
}
