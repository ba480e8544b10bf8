package tokenmetadata

import (
	"crypto/ed25519"
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
)

// Borsh primitives. Account data is variable length, so every getter is
// bounds checked and reports errMalformed on short reads.

var errMalformed = errors.New("malformed borsh data")

func checkRemaining(src []byte, offset, size int) error {
	if offset < 0 || size < 0 || offset+size > len(src) {
		return errors.Wrapf(errMalformed, "need %d bytes at offset %d, have %d", size, offset, len(src)-offset)
	}
	return nil
}

func getUint8(src []byte, dst *uint8, offset *int) error {
	if err := checkRemaining(src, *offset, 1); err != nil {
		return err
	}
	*dst = src[*offset]
	*offset += 1
	return nil
}

func getBool(src []byte, dst *bool, offset *int) error {
	var v uint8
	if err := getUint8(src, &v, offset); err != nil {
		return err
	}
	switch v {
	case 0:
		*dst = false
	case 1:
		*dst = true
	default:
		return errors.Wrapf(errMalformed, "invalid bool value %d", v)
	}
	return nil
}

// getOption reads a Borsh option tag.
func getOption(src []byte, isSome *bool, offset *int) error {
	var tag uint8
	if err := getUint8(src, &tag, offset); err != nil {
		return err
	}
	switch tag {
	case 0:
		*isSome = false
	case 1:
		*isSome = true
	default:
		return errors.Wrapf(errMalformed, "invalid option tag %d", tag)
	}
	return nil
}

func getUint16(src []byte, dst *uint16, offset *int) error {
	if err := checkRemaining(src, *offset, 2); err != nil {
		return err
	}
	*dst = binary.LittleEndian.Uint16(src[*offset:])
	*offset += 2
	return nil
}

func getUint32(src []byte, dst *uint32, offset *int) error {
	if err := checkRemaining(src, *offset, 4); err != nil {
		return err
	}
	*dst = binary.LittleEndian.Uint32(src[*offset:])
	*offset += 4
	return nil
}

func getUint64(src []byte, dst *uint64, offset *int) error {
	if err := checkRemaining(src, *offset, 8); err != nil {
		return err
	}
	*dst = binary.LittleEndian.Uint64(src[*offset:])
	*offset += 8
	return nil
}

func getKey(src []byte, dst *ed25519.PublicKey, offset *int) error {
	if err := checkRemaining(src, *offset, ed25519.PublicKeySize); err != nil {
		return err
	}
	*dst = make([]byte, ed25519.PublicKeySize)
	copy(*dst, src[*offset:])
	*offset += ed25519.PublicKeySize
	return nil
}

func getBytes(src []byte, dst *[]byte, offset *int) error {
	var length uint32
	if err := getUint32(src, &length, offset); err != nil {
		return err
	}
	if err := checkRemaining(src, *offset, int(length)); err != nil {
		return err
	}
	*dst = make([]byte, length)
	copy(*dst, src[*offset:])
	*offset += int(length)
	return nil
}

// getString reads a Borsh string. The metadata program pads names, symbols
// and uris with NUL bytes up to their maximum length.
func getString(src []byte, dst *string, offset *int) error {
	var raw []byte
	if err := getBytes(src, &raw, offset); err != nil {
		return err
	}
	*dst = strings.TrimRight(string(raw), "\x00")
	return nil
}

func putUint8(dst []byte, v uint8) []byte {
	return append(dst, v)
}

func putBool(dst []byte, v bool) []byte {
	if v {
		return append(dst, 1)
	}
	return append(dst, 0)
}

func putUint32(dst []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, v)
}

func putUint64(dst []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(dst, v)
}

func putKey(dst []byte, v ed25519.PublicKey) []byte {
	return append(dst, v...)
}

func putBytes(dst []byte, v []byte) []byte {
	dst = putUint32(dst, uint32(len(v)))
	return append(dst, v...)
}

func putString(dst []byte, v string) []byte {
	return putBytes(dst, []byte(v))
}

func putUint16(dst []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(dst, v)
}
