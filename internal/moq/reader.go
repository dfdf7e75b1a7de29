package moq

import (
	"errors"
	"fmt"
	"io"

	"github.com/quic-go/quic-go/quicvarint"
)

// MaxObjectSize bounds the payload length ReadObject accepts.
const MaxObjectSize = 64 << 20

// SubgroupHeader is the header opening a subgroup stream.
type SubgroupHeader struct {
	TrackAlias        uint64
	GroupID           uint64
	SubgroupID        uint64
	PublisherPriority byte
}

// Object is one object of a subgroup stream with its LOC extensions decoded.
type Object struct {
	ID               uint64
	CaptureTimestamp uint64 // microseconds, valid when HasTimestamp
	HasTimestamp     bool
	FrameMarking     uint64 // 0 when absent
	VideoConfig      []byte
	Payload          []byte
}

// Keyframe reports whether the object is marked as an independent frame.
func (o Object) Keyframe() bool {
	return o.FrameMarking == FrameMarkingKeyframe
}

// ReadSubgroupHeader reads the header written by Writer.WriteSubgroupHeader.
func ReadSubgroupHeader(r quicvarint.Reader) (SubgroupHeader, error) {
	var h SubgroupHeader
	streamType, err := quicvarint.Read(r)
	if err != nil {
		return h, &ParseError{Field: "stream_type", Err: err}
	}
	if streamType != StreamTypeSubgroupSIDExt {
		return h, &ParseError{Field: "stream_type", Err: fmt.Errorf("%w: 0x%x", ErrUnknownStreamType, streamType)}
	}
	if h.TrackAlias, err = quicvarint.Read(r); err != nil {
		return h, &ParseError{Field: "track_alias", Err: err}
	}
	if h.GroupID, err = quicvarint.Read(r); err != nil {
		return h, &ParseError{Field: "group_id", Err: err}
	}
	if h.SubgroupID, err = quicvarint.Read(r); err != nil {
		return h, &ParseError{Field: "subgroup_id", Err: err}
	}
	if h.PublisherPriority, err = r.ReadByte(); err != nil {
		return h, &ParseError{Field: "publisher_priority", Err: err}
	}
	return h, nil
}

// ReadObject reads the next object. It returns io.EOF when the stream ends
// cleanly before an object starts.
func ReadObject(r quicvarint.Reader) (Object, error) {
	var o Object
	id, err := quicvarint.Read(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return o, io.EOF
		}
		return o, &ParseError{Field: "object_id", Err: err}
	}
	o.ID = id

	exts, err := readLengthPrefixed(r)
	if err != nil {
		return o, &ParseError{Field: "extensions", Err: err}
	}
	if err := o.parseExtensions(exts); err != nil {
		return o, &ParseError{Field: "extensions", Err: err}
	}
	if o.Payload, err = readLengthPrefixed(r); err != nil {
		return o, &ParseError{Field: "payload", Err: err}
	}
	return o, nil
}

func readLengthPrefixed(r quicvarint.Reader) ([]byte, error) {
	n, err := quicvarint.Read(r)
	if err != nil {
		return nil, noEOF(err)
	}
	if n > MaxObjectSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrObjectTooLarge, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, noEOF(err)
	}
	return buf, nil
}

// noEOF turns a clean EOF inside an object into io.ErrUnexpectedEOF.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func (o *Object) parseExtensions(b []byte) error {
	for len(b) > 0 {
		id, n, err := quicvarint.Parse(b)
		if err != nil {
			return ErrExtension
		}
		b = b[n:]

		if id%2 == 0 {
			v, n, err := quicvarint.Parse(b)
			if err != nil {
				return ErrExtension
			}
			b = b[n:]
			switch id {
			case ExtCaptureTimestamp:
				o.CaptureTimestamp, o.HasTimestamp = v, true
			case ExtVideoFrameMarking:
				o.FrameMarking = v
			}
			continue
		}

		l, n, err := quicvarint.Parse(b)
		if err != nil || l > uint64(len(b)-n) {
			return ErrExtension
		}
		val := b[n : n+int(l)]
		b = b[n+int(l):]
		if id == ExtVideoConfig {
			o.VideoConfig = val
		}
	}
	return nil
}
