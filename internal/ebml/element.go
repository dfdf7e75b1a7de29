package ebml

// maxDepth bounds recursion in Parse. The deepest path Matroska needs is
// Segment → Tracks → TrackEntry → Video.
const maxDepth = 8

// Element describes one EBML element inside a caller-owned buffer. The
// payload is never copied; use Data to slice it.
type Element struct {
	ID         uint32
	Size       uint64
	Offset     int // first byte of the ID
	DataOffset int // first byte of the payload
	Children   []Element

	// Truncated is set when the declared size runs past the end of the
	// region the element was read from.
	Truncated bool
}

// Unknown reports whether the element carries the unknown-size sentinel.
func (e Element) Unknown() bool {
	return e.Size == UnknownSize
}

// HeaderSize returns the combined width of the ID and size fields.
func (e Element) HeaderSize() int {
	return e.DataOffset - e.Offset
}

// InBounds reports whether the payload fits within the first n bytes.
// Unknown-size elements always fit.
func (e Element) InBounds(n int) bool {
	if e.DataOffset > n {
		return false
	}
	if e.Unknown() {
		return true
	}
	return e.Size <= uint64(n-e.DataOffset)
}

// End returns the offset just past the payload. Unknown-size and truncated
// elements end at n.
func (e Element) End(n int) int {
	if e.Unknown() || !e.InBounds(n) {
		return n
	}
	return e.DataOffset + int(e.Size)
}

// Data returns the payload slice of buf. ok is false for truncated elements.
func (e Element) Data(buf []byte) ([]byte, bool) {
	if e.Truncated || !e.InBounds(len(buf)) {
		return nil, false
	}
	return buf[e.DataOffset:e.End(len(buf))], true
}

// ReadElement reads one element header at pos. It fails if fewer than two
// bytes remain or the ID or size field is malformed.
func ReadElement(buf []byte, pos int) (Element, bool) {
	if pos < 0 || len(buf)-pos < 2 {
		return Element{}, false
	}
	id, idLen, ok := ReadID(buf, pos)
	if !ok {
		return Element{}, false
	}
	size, sizeLen, ok := ReadSize(buf, pos+idLen)
	if !ok {
		return Element{}, false
	}
	el := Element{
		ID:         id,
		Size:       size,
		Offset:     pos,
		DataOffset: pos + idLen + sizeLen,
	}
	el.Truncated = !el.InBounds(len(buf))
	return el, true
}

// Parse returns el with Children filled in recursively for known master
// elements. Leaf elements and truncated masters are returned unchanged.
func Parse(buf []byte, el Element) Element {
	return parse(buf, el, 0)
}

func parse(buf []byte, el Element, depth int) Element {
	if depth >= maxDepth || el.Truncated || !IsMaster(el.ID) {
		return el
	}
	children := Children(buf, el)
	for i := range children {
		children[i] = parse(buf, children[i], depth+1)
	}
	el.Children = children
	return el
}
