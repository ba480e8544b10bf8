package tokenmetadata

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"sort"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const MerkleNodeSize = 32

type PayloadTypeKind uint8

const (
	PayloadTypePubkey PayloadTypeKind = iota
	PayloadTypeSeeds
	PayloadTypeMerkleProof
	PayloadTypeNumber
)

func (k PayloadTypeKind) String() string {
	switch k {
	case PayloadTypePubkey:
		return "pubkey"
	case PayloadTypeSeeds:
		return "seeds"
	case PayloadTypeMerkleProof:
		return "merkle_proof"
	case PayloadTypeNumber:
		return "number"
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

// PayloadType is a single value a rule set can evaluate. Only the field
// matching Kind is meaningful.
type PayloadType struct {
	Kind PayloadTypeKind

	Pubkey      ed25519.PublicKey
	Seeds       [][]byte
	MerkleProof [][MerkleNodeSize]byte
	Number      uint64
}

func NewPubkeyPayload(key ed25519.PublicKey) PayloadType {
	return PayloadType{Kind: PayloadTypePubkey, Pubkey: key}
}

func NewSeedsPayload(seeds ...[]byte) PayloadType {
	return PayloadType{Kind: PayloadTypeSeeds, Seeds: seeds}
}

func NewMerkleProofPayload(proof ...[MerkleNodeSize]byte) PayloadType {
	return PayloadType{Kind: PayloadTypeMerkleProof, MerkleProof: proof}
}

func NewNumberPayload(n uint64) PayloadType {
	return PayloadType{Kind: PayloadTypeNumber, Number: n}
}

func (p PayloadType) Validate() error {
	switch p.Kind {
	case PayloadTypePubkey:
		if len(p.Pubkey) != ed25519.PublicKeySize {
			return errors.Wrapf(ErrInvalidPayload, "pubkey payload has %d bytes", len(p.Pubkey))
		}
	case PayloadTypeSeeds, PayloadTypeMerkleProof, PayloadTypeNumber:
	default:
		return errors.Wrapf(ErrInvalidPayload, "unknown payload kind %d", p.Kind)
	}
	return nil
}

// Equal compares the active value only.
func (p PayloadType) Equal(other PayloadType) bool {
	if p.Kind != other.Kind {
		return false
	}

	switch p.Kind {
	case PayloadTypePubkey:
		return bytes.Equal(p.Pubkey, other.Pubkey)
	case PayloadTypeSeeds:
		if len(p.Seeds) != len(other.Seeds) {
			return false
		}
		for i := range p.Seeds {
			if !bytes.Equal(p.Seeds[i], other.Seeds[i]) {
				return false
			}
		}
		return true
	case PayloadTypeMerkleProof:
		if len(p.MerkleProof) != len(other.MerkleProof) {
			return false
		}
		for i := range p.MerkleProof {
			if p.MerkleProof[i] != other.MerkleProof[i] {
				return false
			}
		}
		return true
	case PayloadTypeNumber:
		return p.Number == other.Number
	}
	return false
}

func (p PayloadType) String() string {
	switch p.Kind {
	case PayloadTypePubkey:
		return fmt.Sprintf("pubkey(%s)", base58.Encode(p.Pubkey))
	case PayloadTypeSeeds:
		return fmt.Sprintf("seeds(%d)", len(p.Seeds))
	case PayloadTypeMerkleProof:
		return fmt.Sprintf("merkle_proof(%d)", len(p.MerkleProof))
	case PayloadTypeNumber:
		return fmt.Sprintf("number(%d)", p.Number)
	}
	return p.Kind.String()
}

func putPayloadType(dst []byte, p PayloadType) []byte {
	dst = putUint8(dst, uint8(p.Kind))
	switch p.Kind {
	case PayloadTypePubkey:
		dst = putKey(dst, p.Pubkey)
	case PayloadTypeSeeds:
		dst = putUint32(dst, uint32(len(p.Seeds)))
		for _, seed := range p.Seeds {
			dst = putBytes(dst, seed)
		}
	case PayloadTypeMerkleProof:
		dst = putUint32(dst, uint32(len(p.MerkleProof)))
		for _, node := range p.MerkleProof {
			dst = append(dst, node[:]...)
		}
	case PayloadTypeNumber:
		dst = putUint64(dst, p.Number)
	}
	return dst
}

func getPayloadType(src []byte, dst *PayloadType, offset *int) error {
	var kind uint8
	if err := getUint8(src, &kind, offset); err != nil {
		return err
	}
	*dst = PayloadType{Kind: PayloadTypeKind(kind)}

	switch dst.Kind {
	case PayloadTypePubkey:
		return getKey(src, &dst.Pubkey, offset)
	case PayloadTypeSeeds:
		var count uint32
		if err := getUint32(src, &count, offset); err != nil {
			return err
		}
		if err := checkRemaining(src, *offset, int(count)*4); err != nil {
			return err
		}
		dst.Seeds = make([][]byte, count)
		for i := range dst.Seeds {
			if err := getBytes(src, &dst.Seeds[i], offset); err != nil {
				return err
			}
		}
		return nil
	case PayloadTypeMerkleProof:
		var count uint32
		if err := getUint32(src, &count, offset); err != nil {
			return err
		}
		if err := checkRemaining(src, *offset, int(count)*MerkleNodeSize); err != nil {
			return err
		}
		dst.MerkleProof = make([][MerkleNodeSize]byte, count)
		for i := range dst.MerkleProof {
			copy(dst.MerkleProof[i][:], src[*offset:])
			*offset += MerkleNodeSize
		}
		return nil
	case PayloadTypeNumber:
		return getUint64(src, &dst.Number, offset)
	default:
		return errors.Wrapf(errMalformed, "unknown payload kind %d", kind)
	}
}

// Payload maps field names to values. Names are unique by construction.
type Payload map[string]PayloadType

// Keys returns the field names in the order they are serialized.
func (p Payload) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AuthorizationData is the argument the metadata program forwards to the
// rule set when validating a transfer.
type AuthorizationData struct {
	Payload Payload
}

func NewAuthorizationData() *AuthorizationData {
	return &AuthorizationData{Payload: make(Payload)}
}

func (d *AuthorizationData) Validate() error {
	for name, value := range d.Payload {
		if err := value.Validate(); err != nil {
			return errors.Wrapf(err, "field %q", name)
		}
	}
	return nil
}

func (d *AuthorizationData) Equal(other *AuthorizationData) bool {
	if d == nil || other == nil {
		return d == other
	}
	if len(d.Payload) != len(other.Payload) {
		return false
	}
	for name, value := range d.Payload {
		otherValue, ok := other.Payload[name]
		if !ok || !value.Equal(otherValue) {
			return false
		}
	}
	return true
}

// Marshal encodes the data the way Borsh encodes a map: a u32 entry count
// followed by entries sorted by key.
func (d *AuthorizationData) Marshal() []byte {
	var dst []byte
	dst = putUint32(dst, uint32(len(d.Payload)))
	for _, name := range d.Payload.Keys() {
		dst = putString(dst, name)
		dst = putPayloadType(dst, d.Payload[name])
	}
	return dst
}

func (d *AuthorizationData) Unmarshal(data []byte) error {
	var offset int
	if err := getAuthorizationData(data, d, &offset); err != nil {
		return err
	}
	if offset != len(data) {
		return errors.Wrapf(ErrInvalidPayload, "%d trailing bytes", len(data)-offset)
	}
	return nil
}

func getAuthorizationData(src []byte, dst *AuthorizationData, offset *int) error {
	var count uint32
	if err := getUint32(src, &count, offset); err != nil {
		return errors.Wrapf(ErrInvalidPayload, "%v", err)
	}
	// Smallest possible entry is an empty name plus a kind byte and a
	// 4 byte vector length.
	if err := checkRemaining(src, *offset, int(count)*9); err != nil {
		return errors.Wrapf(ErrInvalidPayload, "%v", err)
	}

	dst.Payload = make(Payload, count)
	for i := uint32(0); i < count; i++ {
		var name string
		if err := getBorshString(src, &name, offset); err != nil {
			return errors.Wrapf(ErrInvalidPayload, "%v", err)
		}

		var value PayloadType
		if err := getPayloadType(src, &value, offset); err != nil {
			return errors.Wrapf(ErrInvalidPayload, "%v", err)
		}

		if _, ok := dst.Payload[name]; ok {
			return errors.Wrapf(ErrInvalidPayload, "duplicate field %q", name)
		}
		dst.Payload[name] = value
	}
	return nil
}

// getBorshString reads a string without the NUL trimming applied to
// metadata fields.
func getBorshString(src []byte, dst *string, offset *int) error {
	var raw []byte
	if err := getBytes(src, &raw, offset); err != nil {
		return err
	}
	*dst = string(raw)
	return nil
}

// Marshal encodes a single value with its variant tag.
func (p PayloadType) Marshal() []byte {
	return putPayloadType(nil, p)
}

// UnmarshalPayloadType decodes one tagged value from the start of data and
// returns the number of bytes it occupied.
func UnmarshalPayloadType(data []byte) (PayloadType, int, error) {
	var offset int
	var value PayloadType
	if err := getPayloadType(data, &value, &offset); err != nil {
		return PayloadType{}, 0, errors.Wrapf(ErrInvalidPayload, "%v", err)
	}
	return value, offset, nil
}
