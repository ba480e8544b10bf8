package tokenmetadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/pnft-transfer/pkg/solana"
)

func TestGetMetadataAddresses(t *testing.T) {
	mint := newKey(t)
	tokenAccount := newKey(t)

	metadata, metadataBump, err := GetMetadataAddress(&GetMetadataAddressArgs{Mint: mint})
	require.NoError(t, err)
	expected, err := solana.CreateProgramAddress(ProgramKey, MetadataPrefix, ProgramKey, mint, []byte{metadataBump})
	require.NoError(t, err)
	assert.EqualValues(t, expected, metadata)

	edition, editionBump, err := GetMasterEditionAddress(&GetMasterEditionAddressArgs{Mint: mint})
	require.NoError(t, err)
	expected, err = solana.CreateProgramAddress(ProgramKey, MetadataPrefix, ProgramKey, mint, EditionPrefix, []byte{editionBump})
	require.NoError(t, err)
	assert.EqualValues(t, expected, edition)

	record, recordBump, err := GetTokenRecordAddress(&GetTokenRecordAddressArgs{Mint: mint, Token: tokenAccount})
	require.NoError(t, err)
	expected, err = solana.CreateProgramAddress(ProgramKey, MetadataPrefix, ProgramKey, mint, TokenRecordPrefix, tokenAccount, []byte{recordBump})
	require.NoError(t, err)
	assert.EqualValues(t, expected, record)

	assert.NotEqualValues(t, metadata, edition)
	assert.NotEqualValues(t, edition, record)

	otherRecord, _, err := GetTokenRecordAddress(&GetTokenRecordAddressArgs{Mint: mint, Token: newKey(t)})
	require.NoError(t, err)
	assert.NotEqualValues(t, record, otherRecord)
}
