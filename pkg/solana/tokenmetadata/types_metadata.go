package tokenmetadata

import (
	"crypto/ed25519"

	"github.com/pkg/errors"
)

type Creator struct {
	Address  ed25519.PublicKey
	Verified bool
	Share    uint8
}

type Collection struct {
	Verified bool
	Key      ed25519.PublicKey
}

type UseMethod uint8

const (
	UseMethodBurn UseMethod = iota
	UseMethodMultiple
	UseMethodSingle
)

type Uses struct {
	UseMethod UseMethod
	Remaining uint64
	Total     uint64
}

type CollectionDetailsVersion uint8

const (
	CollectionDetailsV1 CollectionDetailsVersion = iota
	CollectionDetailsV2
)

// CollectionDetails is only set on collection parents. V1 carries a size;
// V2 replaced it with padding.
type CollectionDetails struct {
	Version CollectionDetailsVersion
	Size    uint64
}

// Data is the user facing portion of a metadata account.
type Data struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator // nil when the option is None
}

func getData(src []byte, dst *Data, offset *int) error {
	if err := getString(src, &dst.Name, offset); err != nil {
		return err
	}
	if err := getString(src, &dst.Symbol, offset); err != nil {
		return err
	}
	if err := getString(src, &dst.Uri, offset); err != nil {
		return err
	}
	if err := getUint16(src, &dst.SellerFeeBasisPoints, offset); err != nil {
		return err
	}

	var hasCreators bool
	if err := getOption(src, &hasCreators, offset); err != nil {
		return err
	}
	if !hasCreators {
		return nil
	}

	var count uint32
	if err := getUint32(src, &count, offset); err != nil {
		return err
	}
	// Each creator is 34 bytes, reject counts the data can't hold before
	// allocating.
	if err := checkRemaining(src, *offset, int(count)*(ed25519.PublicKeySize+2)); err != nil {
		return err
	}
	dst.Creators = make([]Creator, count)
	for i := range dst.Creators {
		if err := getKey(src, &dst.Creators[i].Address, offset); err != nil {
			return err
		}
		if err := getBool(src, &dst.Creators[i].Verified, offset); err != nil {
			return err
		}
		if err := getUint8(src, &dst.Creators[i].Share, offset); err != nil {
			return err
		}
	}
	return nil
}

func getCollection(src []byte, dst *Collection, offset *int) error {
	if err := getBool(src, &dst.Verified, offset); err != nil {
		return err
	}
	return getKey(src, &dst.Key, offset)
}

func getUses(src []byte, dst *Uses, offset *int) error {
	var method uint8
	if err := getUint8(src, &method, offset); err != nil {
		return err
	}
	if UseMethod(method) > UseMethodSingle {
		return errors.Wrapf(errMalformed, "unknown use method %d", method)
	}
	dst.UseMethod = UseMethod(method)
	if err := getUint64(src, &dst.Remaining, offset); err != nil {
		return err
	}
	return getUint64(src, &dst.Total, offset)
}

func getCollectionDetails(src []byte, dst *CollectionDetails, offset *int) error {
	var version uint8
	if err := getUint8(src, &version, offset); err != nil {
		return err
	}
	switch CollectionDetailsVersion(version) {
	case CollectionDetailsV1:
		dst.Version = CollectionDetailsV1
		return getUint64(src, &dst.Size, offset)
	case CollectionDetailsV2:
		dst.Version = CollectionDetailsV2
		if err := checkRemaining(src, *offset, 8); err != nil {
			return err
		}
		*offset += 8
		return nil
	default:
		return errors.Wrapf(errMalformed, "unknown collection details version %d", version)
	}
}
