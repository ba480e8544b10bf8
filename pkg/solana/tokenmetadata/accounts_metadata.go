package tokenmetadata

import (
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// KeyMetadataV1 is the account key the program writes as the first byte of
// every metadata account.
const KeyMetadataV1 uint8 = 4

const (
	// MinMetadataAccountSize covers the key, update authority, mint, three
	// empty strings, seller fee, creators tag, primary sale and mutability.
	MinMetadataAccountSize = (1 + // key
		32 + // update_authority
		32 + // mint
		4 + // name
		4 + // symbol
		4 + // uri
		2 + // seller_fee_basis_points
		1 + // creators
		1 + // primary_sale_happened
		1) // is_mutable
)

type Metadata struct {
	Key                 uint8
	UpdateAuthority     ed25519.PublicKey
	Mint                ed25519.PublicKey
	Data                Data
	PrimarySaleHappened bool
	IsMutable           bool

	// Fields below were appended to the layout over time. Accounts written
	// before they existed simply end early, and those decode as nil.
	EditionNonce       *uint8
	TokenStandard      *TokenStandard
	Collection         *Collection
	Uses               *Uses
	CollectionDetails  *CollectionDetails
	ProgrammableConfig *ProgrammableConfig
}

func (obj *Metadata) Unmarshal(data []byte) error {
	if len(data) < MinMetadataAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	if err := obj.unmarshal(data, &offset); err != nil {
		return errors.Wrapf(ErrInvalidAccountData, "%v", err)
	}
	return nil
}

func (obj *Metadata) unmarshal(data []byte, offset *int) error {
	if err := getUint8(data, &obj.Key, offset); err != nil {
		return err
	}
	if obj.Key != KeyMetadataV1 {
		return errors.Errorf("unexpected account key %d", obj.Key)
	}
	if err := getKey(data, &obj.UpdateAuthority, offset); err != nil {
		return err
	}
	if err := getKey(data, &obj.Mint, offset); err != nil {
		return err
	}
	if err := getData(data, &obj.Data, offset); err != nil {
		return err
	}
	if err := getBool(data, &obj.PrimarySaleHappened, offset); err != nil {
		return err
	}
	if err := getBool(data, &obj.IsMutable, offset); err != nil {
		return err
	}

	obj.EditionNonce = nil
	obj.TokenStandard = nil
	obj.Collection = nil
	obj.Uses = nil
	obj.CollectionDetails = nil
	obj.ProgrammableConfig = nil

	isSome, err := getTrailingOption(data, offset)
	if err != nil {
		return err
	}
	if isSome {
		var nonce uint8
		if err := getUint8(data, &nonce, offset); err != nil {
			return err
		}
		obj.EditionNonce = &nonce
	}

	isSome, err = getTrailingOption(data, offset)
	if err != nil {
		return err
	}
	if isSome {
		var raw uint8
		if err := getUint8(data, &raw, offset); err != nil {
			return err
		}
		standard := TokenStandard(raw)
		if !standard.IsValid() {
			return errors.Errorf("unknown token standard %d", raw)
		}
		obj.TokenStandard = &standard
	}

	isSome, err = getTrailingOption(data, offset)
	if err != nil {
		return err
	}
	if isSome {
		var collection Collection
		if err := getCollection(data, &collection, offset); err != nil {
			return err
		}
		obj.Collection = &collection
	}

	isSome, err = getTrailingOption(data, offset)
	if err != nil {
		return err
	}
	if isSome {
		var uses Uses
		if err := getUses(data, &uses, offset); err != nil {
			return err
		}
		obj.Uses = &uses
	}

	isSome, err = getTrailingOption(data, offset)
	if err != nil {
		return err
	}
	if isSome {
		var details CollectionDetails
		if err := getCollectionDetails(data, &details, offset); err != nil {
			return err
		}
		obj.CollectionDetails = &details
	}

	isSome, err = getTrailingOption(data, offset)
	if err != nil {
		return err
	}
	if isSome {
		var config ProgrammableConfig
		if err := getProgrammableConfig(data, &config, offset); err != nil {
			return err
		}
		obj.ProgrammableConfig = &config
	}

	return nil
}

// getTrailingOption reads an option tag for a field that older accounts
// don't carry. Running out of data reads as None.
func getTrailingOption(src []byte, offset *int) (bool, error) {
	if *offset >= len(src) {
		return false, nil
	}
	var isSome bool
	if err := getOption(src, &isSome, offset); err != nil {
		return false, err
	}
	return isSome, nil
}

// IsProgrammable reports whether the asset uses one of the programmable token
// standards.
func (obj *Metadata) IsProgrammable() bool {
	return obj.TokenStandard != nil && obj.TokenStandard.IsProgrammable()
}

// RuleSet returns the rule set bound to the asset, or nil if there is none.
func (obj *Metadata) RuleSet() ed25519.PublicKey {
	if !obj.ProgrammableConfig.HasRuleSet() {
		return nil
	}
	return obj.ProgrammableConfig.RuleSet
}

// Marshal encodes the account using the current layout. Every trailing
// field is written, and None values are written as a zero tag.
func (obj *Metadata) Marshal() []byte {
	dst := make([]byte, 0, MinMetadataAccountSize+len(obj.Data.Name)+len(obj.Data.Symbol)+len(obj.Data.Uri)+64)

	dst = putUint8(dst, KeyMetadataV1)
	dst = putKey(dst, obj.UpdateAuthority)
	dst = putKey(dst, obj.Mint)
	dst = putString(dst, obj.Data.Name)
	dst = putString(dst, obj.Data.Symbol)
	dst = putString(dst, obj.Data.Uri)
	dst = putUint16(dst, obj.Data.SellerFeeBasisPoints)
	dst = putBool(dst, obj.Data.Creators != nil)
	if obj.Data.Creators != nil {
		dst = putUint32(dst, uint32(len(obj.Data.Creators)))
		for _, creator := range obj.Data.Creators {
			dst = putKey(dst, creator.Address)
			dst = putBool(dst, creator.Verified)
			dst = putUint8(dst, creator.Share)
		}
	}
	dst = putBool(dst, obj.PrimarySaleHappened)
	dst = putBool(dst, obj.IsMutable)

	dst = putBool(dst, obj.EditionNonce != nil)
	if obj.EditionNonce != nil {
		dst = putUint8(dst, *obj.EditionNonce)
	}

	dst = putBool(dst, obj.TokenStandard != nil)
	if obj.TokenStandard != nil {
		dst = putUint8(dst, uint8(*obj.TokenStandard))
	}

	dst = putBool(dst, obj.Collection != nil)
	if obj.Collection != nil {
		dst = putBool(dst, obj.Collection.Verified)
		dst = putKey(dst, obj.Collection.Key)
	}

	dst = putBool(dst, obj.Uses != nil)
	if obj.Uses != nil {
		dst = putUint8(dst, uint8(obj.Uses.UseMethod))
		dst = putUint64(dst, obj.Uses.Remaining)
		dst = putUint64(dst, obj.Uses.Total)
	}

	dst = putBool(dst, obj.CollectionDetails != nil)
	if obj.CollectionDetails != nil {
		dst = putUint8(dst, uint8(obj.CollectionDetails.Version))
		if obj.CollectionDetails.Version == CollectionDetailsV1 {
			dst = putUint64(dst, obj.CollectionDetails.Size)
		} else {
			dst = append(dst, make([]byte, 8)...)
		}
	}

	dst = putBool(dst, obj.ProgrammableConfig != nil)
	if obj.ProgrammableConfig != nil {
		dst = putProgrammableConfig(dst, obj.ProgrammableConfig)
	}

	return dst
}

func (obj *Metadata) String() string {
	tokenStandard := "none"
	if obj.TokenStandard != nil {
		tokenStandard = obj.TokenStandard.String()
	}

	ruleSet := "none"
	if rs := obj.RuleSet(); rs != nil {
		ruleSet = base58.Encode(rs)
	}

	creators := make([]string, len(obj.Data.Creators))
	for i, creator := range obj.Data.Creators {
		creators[i] = fmt.Sprintf("%s:%d:%v", base58.Encode(creator.Address), creator.Share, creator.Verified)
	}

	return fmt.Sprintf(
		"Metadata{update_authority=%s,mint=%s,name=%s,symbol=%s,uri=%s,seller_fee_basis_points=%d,creators=[%s],primary_sale_happened=%v,is_mutable=%v,token_standard=%s,rule_set=%s}",
		base58.Encode(obj.UpdateAuthority),
		base58.Encode(obj.Mint),
		obj.Data.Name,
		obj.Data.Symbol,
		obj.Data.Uri,
		obj.Data.SellerFeeBasisPoints,
		strings.Join(creators, ","),
		obj.PrimarySaleHappened,
		obj.IsMutable,
		tokenStandard,
		ruleSet,
	)
}
