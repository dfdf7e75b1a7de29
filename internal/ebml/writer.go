package ebml

import (
	"encoding/binary"
	"math"
)

// Writer builds an EBML byte stream in memory. Master element payloads are
// serialized first and then prefixed with a size header, so sizes are always
// exact without a second pass. The first error sticks and is reported by
// Bytes.
type Writer struct {
	buf []byte
	err error
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the serialized stream or the first error encountered.
func (w *Writer) Bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf, nil
}

// Binary writes a leaf element with a raw payload.
func (w *Writer) Binary(id uint32, payload []byte) {
	if w.err != nil {
		return
	}
	w.buf = AppendID(w.buf, id)
	w.buf, w.err = AppendSize(w.buf, uint64(len(payload)))
	w.buf = append(w.buf, payload...)
}

// Raw appends already-encoded elements.
func (w *Writer) Raw(b []byte) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, b...)
}

// Uint writes an unsigned integer leaf using the fewest bytes that hold v.
func (w *Writer) Uint(id uint32, v uint64) {
	n := 1
	for n < 8 && v>>(8*uint(n)) != 0 {
		n++
	}
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	w.Binary(id, tmp[8-n:])
}

// Float writes an 8-byte IEEE 754 leaf.
func (w *Writer) Float(id uint32, f float64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], math.Float64bits(f))
	w.Binary(id, tmp[:])
}

// String writes a string leaf without a terminating NUL.
func (w *Writer) String(id uint32, s string) {
	w.Binary(id, []byte(s))
}

// Master writes a master element whose children are produced by fn. The
// size field has a fixed width chosen to comfortably hold the payload.
func (w *Writer) Master(id uint32, fn func(*Writer)) {
	if w.err != nil {
		return
	}
	child := &Writer{}
	fn(child)
	if child.err != nil {
		w.err = child.err
		return
	}
	w.buf = AppendID(w.buf, id)
	w.buf, w.err = AppendSizeWidth(w.buf, uint64(len(child.buf)), MasterSizeWidth(uint64(len(child.buf))))
	w.buf = append(w.buf, child.buf...)
}

// UnknownMaster writes a master element with the unknown-size sentinel.
func (w *Writer) UnknownMaster(id uint32, fn func(*Writer)) {
	if w.err != nil {
		return
	}
	child := &Writer{}
	fn(child)
	if child.err != nil {
		w.err = child.err
		return
	}
	w.buf = AppendID(w.buf, id)
	w.buf = AppendUnknownSize(w.buf, 8)
	w.buf = append(w.buf, child.buf...)
}

// MasterSizeWidth returns the size-field width used for master elements:
// 4 bytes for payloads below 2^28-1, otherwise 8.
func MasterSizeWidth(n uint64) int {
	if n < 1<<28-1 {
		return 4
	}
	return 8
}
