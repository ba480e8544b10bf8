// Package shortvec implements the compact-u16 length prefix used by Solana
// transaction encoding.
package shortvec

import (
	"fmt"
	"io"
	"math"
)

const maxEncodedBytes = 3

// EncodeLen encodes the specified len into the writer.
//
// If len > math.MaxUint16, an error is returned.
func EncodeLen(w io.Writer, len int) (n int, err error) {
	if len < 0 || len > math.MaxUint16 {
		return 0, fmt.Errorf("len exceeds %d", math.MaxUint16)
	}

	encoded := make([]byte, 0, maxEncodedBytes)
	for {
		b := byte(len & 0x7f)
		len >>= 7
		if len == 0 {
			encoded = append(encoded, b)
			break
		}
		encoded = append(encoded, b|0x80)
	}

	return w.Write(encoded)
}

// DecodeLen decodes a shortvec encoded len from the reader.
func DecodeLen(r io.Reader) (val int, err error) {
	b := make([]byte, 1)

	for offset := 0; ; offset++ {
		if offset >= maxEncodedBytes {
			return 0, fmt.Errorf("invalid size: %d (max %d)", offset+1, maxEncodedBytes)
		}

		if _, err := io.ReadFull(r, b); err != nil {
			return 0, err
		}

		val |= int(b[0]&0x7f) << (offset * 7)
		if b[0]&0x80 == 0 {
			return val, nil
		}
	}
}
