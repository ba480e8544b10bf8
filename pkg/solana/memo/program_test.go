package memo

import (
	"crypto/ed25519"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/pnft-transfer/pkg/solana"
)

func TestProgramKey(t *testing.T) {
	assert.Equal(t, "Memo1UhkJRfHyvLMcVucJwxXeuD728EqVDDwQDxFMNo", base58.Encode(ProgramKey))
}

func TestMemo_RoundTrip(t *testing.T) {
	payer, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	ixn, err := NewMemoInstruction("transfer:1234")
	require.NoError(t, err)
	assert.Empty(t, ixn.Accounts)

	txn := solana.NewTransaction(payer, ixn)

	text, err := MemoFromLegacyInstruction(txn, 0)
	require.NoError(t, err)
	assert.Equal(t, "transfer:1234", text)

	_, err = MemoFromLegacyInstruction(txn, 1)
	assert.Error(t, err)
}

func TestMemo_Invalid(t *testing.T) {
	for _, text := range []string{
		"",
		strings.Repeat("a", MaxMemoSize+1),
		string([]byte{0xff, 0xfe}),
	} {
		_, err := NewMemoInstruction(text)
		assert.ErrorIs(t, err, ErrInvalidMemo)
	}
}
