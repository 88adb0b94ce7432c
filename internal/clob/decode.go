// Package clob implements the CLOB Quoter (C3): pool registry, Level-2
// depth retrieval via dev-inspect, BCS-packed vector decoding, and
// market-buy/sell simulation for quoting.
package clob

import (
	"encoding/binary"
	"fmt"
)

// decodeULEB128 reads an unsigned LEB128-encoded integer starting at
// offset. Returns the decoded value and the number of bytes consumed.
func decodeULEB128(b []byte, offset int) (uint64, int, error) {
	var result uint64
	var shift uint
	pos := offset
	for {
		if pos >= len(b) {
			return 0, 0, fmt.Errorf("uleb128: truncated input at offset %d", offset)
		}
		byteVal := b[pos]
		pos++
		result |= uint64(byteVal&0x7f) << shift
		if byteVal&0x80 == 0 {
			break
		}
		shift += 7
		if shift >= 64 {
			return 0, 0, fmt.Errorf("uleb128: value too large at offset %d", offset)
		}
	}
	return result, pos - offset, nil
}

// encodeULEB128 appends the ULEB128 encoding of v to dst and returns the
// extended slice. Used only by tests (the round-trip test, spec Q5, and
// the quoter tests' fake dev-inspect results).
func encodeULEB128(dst []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			dst = append(dst, b|0x80)
		} else {
			dst = append(dst, b)
			break
		}
	}
	return dst
}

// decodeU64Vec decodes a ULEB128-length-prefixed, little-endian-packed
// vector of u64s, per spec §4.3. Returns the values and the number of
// bytes consumed from b, so callers can decode several vectors packed
// back to back in one BCS return value.
func decodeU64Vec(b []byte) ([]uint64, int, error) {
	length, n, err := decodeULEB128(b, 0)
	if err != nil {
		return nil, 0, err
	}
	consumed := n
	out := make([]uint64, 0, length)
	for i := uint64(0); i < length; i++ {
		if consumed+8 > len(b) {
			return nil, 0, fmt.Errorf("decode_u64_vec: truncated element %d", i)
		}
		out = append(out, binary.LittleEndian.Uint64(b[consumed:consumed+8]))
		consumed += 8
	}
	return out, consumed, nil
}

// encodeU64Vec is the matching encoder, used by the round-trip test.
func encodeU64Vec(values []uint64) []byte {
	out := encodeULEB128(nil, uint64(len(values)))
	for _, v := range values {
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, v)
		out = append(out, buf...)
	}
	return out
}
