package ebml

import "fmt"

// UnknownSize is returned by ReadSize when every payload bit of the size
// field is set. Only a top-level Segment may legally carry it; consumers
// treat such an element as extending to the end of its parent.
const UnknownSize = ^uint64(0)

// MaxSize is the largest size representable in an 8-byte size field.
const MaxSize = 1<<56 - 2

// maxIDLen is the widest element ID this package accepts (EBMLMaxIDLength).
const maxIDLen = 4

// VarIntLen returns the total field width announced by the first byte of a
// variable-length integer, or 0 if the byte has no marker bit.
func VarIntLen(first byte) int {
	for i := 0; i < 8; i++ {
		if first&(0x80>>uint(i)) != 0 {
			return i + 1
		}
	}
	return 0
}

// ReadID reads an element ID at pos. The length marker is kept in the
// returned value so IDs compare as their full encoded pattern.
func ReadID(buf []byte, pos int) (uint32, int, bool) {
	if pos < 0 || pos >= len(buf) {
		return 0, 0, false
	}
	length := VarIntLen(buf[pos])
	if length == 0 || length > maxIDLen || pos+length > len(buf) {
		return 0, 0, false
	}
	var id uint32
	for i := 0; i < length; i++ {
		id = id<<8 | uint32(buf[pos+i])
	}
	return id, length, true
}

// ReadSize reads an element size at pos with the length marker stripped.
// An all-ones payload yields UnknownSize.
func ReadSize(buf []byte, pos int) (uint64, int, bool) {
	if pos < 0 || pos >= len(buf) {
		return 0, 0, false
	}
	first := buf[pos]
	length := VarIntLen(first)
	if length == 0 || pos+length > len(buf) {
		return 0, 0, false
	}
	value := uint64(first & (0xFF >> uint(length)))
	for i := 1; i < length; i++ {
		value = value<<8 | uint64(buf[pos+i])
	}
	if value == uint64(1)<<uint(7*length)-1 {
		return UnknownSize, length, true
	}
	return value, length, true
}

// SizeLen returns the smallest field width that can carry v without
// colliding with the unknown-size pattern, or 0 if v exceeds MaxSize.
func SizeLen(v uint64) int {
	for w := 1; w <= 8; w++ {
		if v < uint64(1)<<uint(7*w)-1 {
			return w
		}
	}
	return 0
}

// IDLen returns the encoded width of id.
func IDLen(id uint32) int {
	switch {
	case id > 0xFFFFFF:
		return 4
	case id > 0xFFFF:
		return 3
	case id > 0xFF:
		return 2
	}
	return 1
}

// AppendID appends the encoded form of id to b.
func AppendID(b []byte, id uint32) []byte {
	for i := IDLen(id) - 1; i >= 0; i-- {
		b = append(b, byte(id>>uint(8*i)))
	}
	return b
}

// AppendSize appends v using the smallest width that fits.
func AppendSize(b []byte, v uint64) ([]byte, error) {
	w := SizeLen(v)
	if w == 0 {
		return b, fmt.Errorf("ebml: size %d exceeds maximum %d", v, uint64(MaxSize))
	}
	return AppendSizeWidth(b, v, w)
}

// AppendSizeWidth appends v as a size field of exactly width bytes.
func AppendSizeWidth(b []byte, v uint64, width int) ([]byte, error) {
	if width < 1 || width > 8 {
		return b, fmt.Errorf("ebml: invalid size width %d", width)
	}
	if v >= uint64(1)<<uint(7*width)-1 {
		return b, fmt.Errorf("ebml: size %d does not fit in %d bytes", v, width)
	}
	v |= uint64(1) << uint(7*width)
	for i := width - 1; i >= 0; i-- {
		b = append(b, byte(v>>uint(8*i)))
	}
	return b, nil
}

// AppendUnknownSize appends the unknown-size pattern of the given width.
func AppendUnknownSize(b []byte, width int) []byte {
	if width < 1 || width > 8 {
		width = 8
	}
	b = append(b, 0xFF>>uint(width-1))
	for i := 1; i < width; i++ {
		b = append(b, 0xFF)
	}
	return b
}
