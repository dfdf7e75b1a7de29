package ebml

import (
	"encoding/binary"
	"math"
)

// Uint decodes a big-endian unsigned integer of 0 to 8 bytes. An empty
// payload is zero. The accumulator is 64 bits wide; wider payloads are
// rejected rather than truncated.
func Uint(data []byte) (uint64, error) {
	if len(data) > 8 {
		return 0, ErrIntegerWidth
	}
	var v uint64
	for _, b := range data {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

// Uint32 decodes an unsigned integer that must fit in 32 bits.
func Uint32(data []byte) (uint32, error) {
	v, err := Uint(data)
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, ErrValueRange
	}
	return uint32(v), nil
}

// Float decodes an IEEE 754 value. The width selects float32 or float64.
func Float(data []byte) (float64, error) {
	switch len(data) {
	case 0:
		return 0, nil
	case 4:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(data))), nil
	case 8:
		return math.Float64frombits(binary.BigEndian.Uint64(data)), nil
	}
	return 0, ErrFloatWidth
}

// String decodes a string payload, stopping at the first NUL byte.
func String(data []byte) string {
	for i, b := range data {
		if b == 0 {
			return string(data[:i])
		}
	}
	return string(data)
}
