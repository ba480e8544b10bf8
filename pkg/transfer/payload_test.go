package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/pnft-transfer/pkg/solana/tokenmetadata"
)

func newLocalPayload(t *testing.T) *AuthorizationDataLocal {
	var node [tokenmetadata.MerkleNodeSize]byte
	node[5] = 9

	return &AuthorizationDataLocal{
		Payload: []TaggedPayload{
			{Name: "Destination", Payload: PubkeyPayload{Pubkey: newKey(t)}},
			{Name: "DestinationSeeds", Payload: SeedsPayload{Seeds: [][]byte{[]byte("vault"), {1}}}},
			{Name: "Amount", Payload: NumberPayload{Number: 1}},
			{Name: "Proof", Payload: MerkleProofPayload{Proof: [][tokenmetadata.MerkleNodeSize]byte{node}}},
		},
	}
}

func TestAuthorizationDataLocal_ToNative(t *testing.T) {
	local := newLocalPayload(t)

	native, err := local.ToNative()
	require.NoError(t, err)
	require.Len(t, native.Payload, 4)

	destination := native.Payload["Destination"]
	assert.Equal(t, tokenmetadata.PayloadTypePubkey, destination.Kind)
	assert.EqualValues(t, local.Payload[0].Payload.(PubkeyPayload).Pubkey, destination.Pubkey)

	seeds := native.Payload["DestinationSeeds"]
	assert.Equal(t, tokenmetadata.PayloadTypeSeeds, seeds.Kind)
	assert.Equal(t, [][]byte{[]byte("vault"), {1}}, seeds.Seeds)

	assert.Equal(t, tokenmetadata.NewNumberPayload(1), native.Payload["Amount"])

	proof := native.Payload["Proof"]
	assert.Equal(t, tokenmetadata.PayloadTypeMerkleProof, proof.Kind)
	assert.Len(t, proof.MerkleProof, 1)
}

func TestAuthorizationDataLocal_RoundTrip(t *testing.T) {
	local := newLocalPayload(t)

	native, err := local.ToNative()
	require.NoError(t, err)

	back, err := FromNative(native)
	require.NoError(t, err)

	// FromNative orders by name, so compare per name.
	require.Len(t, back.Payload, len(local.Payload))
	for _, entry := range local.Payload {
		var found bool
		for _, other := range back.Payload {
			if other.Name != entry.Name {
				continue
			}
			found = true
			assert.Equal(t, entry.Payload, other.Payload, entry.Name)
		}
		assert.True(t, found, entry.Name)
	}

	assert.Equal(t, local.Names(), []string{back.Payload[0].Name, back.Payload[1].Name, back.Payload[2].Name, back.Payload[3].Name})

	again, err := back.ToNative()
	require.NoError(t, err)
	assert.True(t, native.Equal(again))
}

func TestAuthorizationDataLocal_DuplicateNames(t *testing.T) {
	local := &AuthorizationDataLocal{
		Payload: []TaggedPayload{
			{Name: "Amount", Payload: NumberPayload{Number: 1}},
			{Name: "Amount", Payload: NumberPayload{Number: 2}},
		},
	}

	native, err := local.ToNative()
	require.NoError(t, err)
	require.Len(t, native.Payload, 1)
	assert.EqualValues(t, 2, native.Payload["Amount"].Number)
	assert.Equal(t, []string{"Amount"}, local.Names())
}

func TestAuthorizationDataLocal_PointerVariants(t *testing.T) {
	local := &AuthorizationDataLocal{
		Payload: []TaggedPayload{
			{Name: "Number", Payload: &NumberPayload{Number: 7}},
			{Name: "Seeds", Payload: &SeedsPayload{Seeds: [][]byte{{1}}}},
		},
	}

	native, err := local.ToNative()
	require.NoError(t, err)
	assert.EqualValues(t, 7, native.Payload["Number"].Number)
	assert.Equal(t, tokenmetadata.PayloadTypeSeeds, native.Payload["Seeds"].Kind)
}

func TestAuthorizationDataLocal_Invalid(t *testing.T) {
	for _, local := range []*AuthorizationDataLocal{
		{Payload: []TaggedPayload{{Name: "Nil"}}},
		{Payload: []TaggedPayload{{Name: "Short", Payload: PubkeyPayload{Pubkey: []byte{1, 2}}}}},
		{Payload: []TaggedPayload{{Name: "NilPubkey", Payload: (*PubkeyPayload)(nil)}}},
		{Payload: []TaggedPayload{{Name: "NilSeeds", Payload: (*SeedsPayload)(nil)}}},
		{Payload: []TaggedPayload{{Name: "NilProof", Payload: (*MerkleProofPayload)(nil)}}},
		{Payload: []TaggedPayload{{Name: "NilNumber", Payload: (*NumberPayload)(nil)}}},
	} {
		_, err := local.ToNative()
		assert.ErrorIs(t, err, ErrInvalidPayload)

		_, err = local.Marshal()
		assert.ErrorIs(t, err, ErrInvalidPayload)

		assert.False(t, local.Equal(local))
	}

	_, err := FromNative(&tokenmetadata.AuthorizationData{
		Payload: tokenmetadata.Payload{"Bad": {Kind: tokenmetadata.PayloadTypeKind(9)}},
	})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	back, err := FromNative(nil)
	assert.NoError(t, err)
	assert.Nil(t, back)
}

func TestAuthorizationDataLocal_Codec(t *testing.T) {
	local := newLocalPayload(t)

	encoded, err := local.Marshal()
	require.NoError(t, err)

	var decoded AuthorizationDataLocal
	require.NoError(t, decoded.Unmarshal(encoded))
	assert.True(t, local.Equal(&decoded))
	assert.Equal(t, local.Payload[0].Name, decoded.Payload[0].Name)

	// List order survives the wire codec, unlike the native mapping.
	assert.Equal(t, "Destination", decoded.Payload[0].Name)
	assert.Equal(t, "Amount", decoded.Payload[2].Name)

	for _, data := range [][]byte{
		nil,
		{1, 0, 0},
		{0xff, 0xff, 0xff, 0xff},
		encoded[:len(encoded)-1],
		append(append([]byte{}, encoded...), 0),
	} {
		assert.ErrorIs(t, decoded.Unmarshal(data), ErrInvalidPayload)
	}
}

func TestAuthorizationDataLocal_Equal(t *testing.T) {
	a := &AuthorizationDataLocal{Payload: []TaggedPayload{{Name: "Amount", Payload: NumberPayload{Number: 1}}}}
	b := &AuthorizationDataLocal{Payload: []TaggedPayload{{Name: "Amount", Payload: NumberPayload{Number: 2}}}}
	c := &AuthorizationDataLocal{Payload: []TaggedPayload{{Name: "Other", Payload: NumberPayload{Number: 1}}}}

	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
	assert.True(t, (*AuthorizationDataLocal)(nil).Equal(nil))
}
