package matroska

import (
	"log/slog"

	"github.com/zsiec/mkv/internal/ebml"
)

// field is one child element handed to a table entry.
type field struct {
	buf  []byte
	el   ebml.Element
	data []byte
	log  *slog.Logger
}

func (f field) asUint() (uint64, error)   { return ebml.Uint(f.data) }
func (f field) asUint32() (uint32, error) { return ebml.Uint32(f.data) }
func (f field) asFloat() (float64, error) { return ebml.Float(f.data) }
func (f field) asString() string          { return ebml.String(f.data) }

// copyBytes returns a copy of the payload so results do not alias the input.
func (f field) copyBytes() []byte {
	out := make([]byte, len(f.data))
	copy(out, f.data)
	return out
}

// decodeNested runs table over the children of a master field.
func decodeNested[T any](f field, table fieldTable[T], dst *T) {
	decodeFields(f.log, f.buf, f.el, table, dst)
}

// fieldTable maps a child element ID to the function that stores it. Adding
// an element is one entry; IDs without an entry are ignored.
type fieldTable[T any] map[uint32]func(dst *T, f field) error

// decodeFields dispatches every direct child of parent through table.
// Truncated children and values that fail to decode are skipped, so one bad
// field never discards its siblings.
func decodeFields[T any](log *slog.Logger, buf []byte, parent ebml.Element, table fieldTable[T], dst *T) {
	for _, c := range ebml.Children(buf, parent) {
		fn, ok := table[c.ID]
		if !ok {
			continue
		}
		data, ok := c.Data(buf)
		if !ok {
			log.Debug("skipping truncated element", "error", ebml.NewParseError(c, ebml.ErrTruncated))
			continue
		}
		if err := fn(dst, field{buf: buf, el: c, data: data, log: log}); err != nil {
			log.Debug("skipping invalid element", "error", ebml.NewParseError(c, err))
		}
	}
}
