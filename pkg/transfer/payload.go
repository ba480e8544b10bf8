package transfer

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"sort"

	"github.com/pkg/errors"

	"github.com/code-payments/pnft-transfer/pkg/solana/tokenmetadata"
)

// AuthorizationDataLocal is the list form of authorization data accepted
// from callers. Unlike the native keyed mapping, it has a stable schema that
// IDL tooling can describe.
type AuthorizationDataLocal struct {
	Payload []TaggedPayload
}

type TaggedPayload struct {
	Name    string
	Payload PayloadTypeLocal
}

// PayloadTypeLocal is one of PubkeyPayload, SeedsPayload, MerkleProofPayload
// or NumberPayload.
type PayloadTypeLocal interface {
	Kind() tokenmetadata.PayloadTypeKind
	isPayloadTypeLocal()
}

type PubkeyPayload struct {
	Pubkey ed25519.PublicKey
}

type SeedsPayload struct {
	Seeds [][]byte
}

type MerkleProofPayload struct {
	Proof [][tokenmetadata.MerkleNodeSize]byte
}

type NumberPayload struct {
	Number uint64
}

func (PubkeyPayload) Kind() tokenmetadata.PayloadTypeKind {
	return tokenmetadata.PayloadTypePubkey
}

func (SeedsPayload) Kind() tokenmetadata.PayloadTypeKind {
	return tokenmetadata.PayloadTypeSeeds
}

func (MerkleProofPayload) Kind() tokenmetadata.PayloadTypeKind {
	return tokenmetadata.PayloadTypeMerkleProof
}

func (NumberPayload) Kind() tokenmetadata.PayloadTypeKind {
	return tokenmetadata.PayloadTypeNumber
}

func (PubkeyPayload) isPayloadTypeLocal()      {}
func (SeedsPayload) isPayloadTypeLocal()       {}
func (MerkleProofPayload) isPayloadTypeLocal() {}
func (NumberPayload) isPayloadTypeLocal()      {}

// ToNative converts the list form into the keyed mapping the token metadata
// program expects. Later entries replace earlier ones with the same name.
func (d *AuthorizationDataLocal) ToNative() (*tokenmetadata.AuthorizationData, error) {
	native := tokenmetadata.NewAuthorizationData()
	for i, entry := range d.Payload {
		value, err := payloadToNative(entry.Payload)
		if err != nil {
			return nil, errors.Wrapf(err, "entry %d (%q)", i, entry.Name)
		}
		native.Payload[entry.Name] = value
	}
	return native, nil
}

// FromNative converts native authorization data into list form, ordered by
// name.
func FromNative(native *tokenmetadata.AuthorizationData) (*AuthorizationDataLocal, error) {
	if native == nil {
		return nil, nil
	}

	local := &AuthorizationDataLocal{
		Payload: make([]TaggedPayload, 0, len(native.Payload)),
	}
	for _, name := range native.Payload.Keys() {
		value, err := payloadFromNative(native.Payload[name])
		if err != nil {
			return nil, errors.Wrapf(err, "field %q", name)
		}
		local.Payload = append(local.Payload, TaggedPayload{Name: name, Payload: value})
	}
	return local, nil
}

func payloadToNative(value PayloadTypeLocal) (tokenmetadata.PayloadType, error) {
	var native tokenmetadata.PayloadType

	switch v := value.(type) {
	case PubkeyPayload:
		native = tokenmetadata.NewPubkeyPayload(copyBytes(v.Pubkey))
	case *PubkeyPayload:
		if v == nil {
			return native, errors.Wrapf(ErrInvalidPayload, "nil %T payload", value)
		}
		return payloadToNative(*v)
	case SeedsPayload:
		seeds := make([][]byte, len(v.Seeds))
		for i, seed := range v.Seeds {
			seeds[i] = copyBytes(seed)
		}
		native = tokenmetadata.NewSeedsPayload(seeds...)
	case *SeedsPayload:
		if v == nil {
			return native, errors.Wrapf(ErrInvalidPayload, "nil %T payload", value)
		}
		return payloadToNative(*v)
	case MerkleProofPayload:
		native = tokenmetadata.NewMerkleProofPayload(append([][tokenmetadata.MerkleNodeSize]byte(nil), v.Proof...)...)
	case *MerkleProofPayload:
		if v == nil {
			return native, errors.Wrapf(ErrInvalidPayload, "nil %T payload", value)
		}
		return payloadToNative(*v)
	case NumberPayload:
		native = tokenmetadata.NewNumberPayload(v.Number)
	case *NumberPayload:
		if v == nil {
			return native, errors.Wrapf(ErrInvalidPayload, "nil %T payload", value)
		}
		return payloadToNative(*v)
	default:
		return native, errors.Wrapf(ErrInvalidPayload, "unsupported payload type %T", value)
	}

	if err := native.Validate(); err != nil {
		return native, errors.Wrap(ErrInvalidPayload, err.Error())
	}
	return native, nil
}

func payloadFromNative(value tokenmetadata.PayloadType) (PayloadTypeLocal, error) {
	if err := value.Validate(); err != nil {
		return nil, errors.Wrap(ErrInvalidPayload, err.Error())
	}

	switch value.Kind {
	case tokenmetadata.PayloadTypePubkey:
		return PubkeyPayload{Pubkey: copyBytes(value.Pubkey)}, nil
	case tokenmetadata.PayloadTypeSeeds:
		seeds := make([][]byte, len(value.Seeds))
		for i, seed := range value.Seeds {
			seeds[i] = copyBytes(seed)
		}
		return SeedsPayload{Seeds: seeds}, nil
	case tokenmetadata.PayloadTypeMerkleProof:
		return MerkleProofPayload{Proof: append([][tokenmetadata.MerkleNodeSize]byte(nil), value.MerkleProof...)}, nil
	default:
		return NumberPayload{Number: value.Number}, nil
	}
}

// Equal reports whether both payload lists hold the same entries in the
// same order.
func (d *AuthorizationDataLocal) Equal(other *AuthorizationDataLocal) bool {
	if d == nil || other == nil {
		return d == other
	}
	if len(d.Payload) != len(other.Payload) {
		return false
	}
	for i := range d.Payload {
		if d.Payload[i].Name != other.Payload[i].Name {
			return false
		}
		a, errA := payloadToNative(d.Payload[i].Payload)
		b, errB := payloadToNative(other.Payload[i].Payload)
		if errA != nil || errB != nil || !a.Equal(b) {
			return false
		}
	}
	return true
}

// Marshal encodes the list form with Borsh, keeping entry order.
func (d *AuthorizationDataLocal) Marshal() ([]byte, error) {
	var buf bytes.Buffer

	buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(d.Payload))))
	for i, entry := range d.Payload {
		value, err := payloadToNative(entry.Payload)
		if err != nil {
			return nil, errors.Wrapf(err, "entry %d (%q)", i, entry.Name)
		}

		buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(entry.Name))))
		buf.WriteString(entry.Name)
		buf.Write(value.Marshal())
	}

	return buf.Bytes(), nil
}

func (d *AuthorizationDataLocal) Unmarshal(data []byte) error {
	if len(data) < 4 {
		return errors.Wrap(ErrInvalidPayload, "missing entry count")
	}
	count := binary.LittleEndian.Uint32(data)
	offset := 4

	// Every entry needs at least a name length and a variant tag.
	if uint64(count)*5 > uint64(len(data)-offset) {
		return errors.Wrapf(ErrInvalidPayload, "entry count %d exceeds data", count)
	}

	d.Payload = make([]TaggedPayload, 0, count)
	for i := uint32(0); i < count; i++ {
		if len(data)-offset < 4 {
			return errors.Wrapf(ErrInvalidPayload, "entry %d truncated", i)
		}
		nameLength := int(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4
		if nameLength < 0 || nameLength > len(data)-offset {
			return errors.Wrapf(ErrInvalidPayload, "entry %d name truncated", i)
		}
		name := string(data[offset : offset+nameLength])
		offset += nameLength

		native, n, err := tokenmetadata.UnmarshalPayloadType(data[offset:])
		if err != nil {
			return errors.Wrap(ErrInvalidPayload, err.Error())
		}
		offset += n

		value, err := payloadFromNative(native)
		if err != nil {
			return err
		}
		d.Payload = append(d.Payload, TaggedPayload{Name: name, Payload: value})
	}

	if offset != len(data) {
		return errors.Wrapf(ErrInvalidPayload, "%d trailing bytes", len(data)-offset)
	}
	return nil
}

// Names returns the distinct entry names, sorted.
func (d *AuthorizationDataLocal) Names() []string {
	seen := make(map[string]struct{}, len(d.Payload))
	names := make([]string, 0, len(d.Payload))
	for _, entry := range d.Payload {
		if _, ok := seen[entry.Name]; ok {
			continue
		}
		seen[entry.Name] = struct{}{}
		names = append(names, entry.Name)
	}
	sort.Strings(names)
	return names
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}
