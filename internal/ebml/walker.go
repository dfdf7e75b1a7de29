package ebml

// payloadPrefix holds the number of bytes to skip at the start of a master
// payload before its first child. EBML masters carry no prefix, so the header
// is listed at 0.
var payloadPrefix = map[uint32]int{
	IDEBML: 0,
}

// Children returns the direct children of parent in document order. The walk
// covers [parent.DataOffset+prefix, parent end) and stops early when an
// element header cannot be read. A child whose declared size runs past the
// parent is returned with Truncated set and ends the walk. An unknown-size
// child is resized to end at the first element that cannot be its
// descendant, or at the end of the parent.
func Children(buf []byte, parent Element) []Element {
	end := parent.End(len(buf))
	region := buf[:end]

	var out []Element
	pos := parent.DataOffset + payloadPrefix[parent.ID]
	for pos < end {
		child, ok := ReadElement(region, pos)
		if !ok {
			break
		}
		if child.Unknown() && !child.Truncated {
			child.Size = uint64(unknownEnd(region, child, 0) - child.DataOffset)
		}
		out = append(out, child)
		if child.Truncated {
			break
		}
		pos = child.End(end)
	}
	return out
}

// unknownEnd returns where the unknown-size element el stops: at the first
// element whose level is at or above el's own, such as the next Cluster
// after a live-written Cluster, or at the end of buf.
func unknownEnd(buf []byte, el Element, depth int) int {
	level, known := levels[el.ID]
	pos := el.DataOffset
	for pos < len(buf) {
		c, ok := ReadElement(buf, pos)
		if !ok {
			break
		}
		if l, ok := levels[c.ID]; known && ok && l <= level {
			return pos
		}
		if c.Truncated {
			break
		}
		if c.Unknown() {
			if depth >= maxDepth {
				break
			}
			pos = unknownEnd(buf, c, depth+1)
			continue
		}
		pos = c.End(len(buf))
	}
	return len(buf)
}

// Find returns the first child of parent with the given ID.
func Find(children []Element, id uint32) (Element, bool) {
	for _, c := range children {
		if c.ID == id {
			return c, true
		}
	}
	return Element{}, false
}

// Walk reads consecutive top-level elements from buf starting at pos.
func Walk(buf []byte, pos int) []Element {
	var out []Element
	for pos < len(buf) {
		el, ok := ReadElement(buf, pos)
		if !ok {
			break
		}
		out = append(out, el)
		if el.Truncated || el.Unknown() {
			break
		}
		pos = el.End(len(buf))
	}
	return out
}
