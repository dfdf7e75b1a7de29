package moq

import (
	"io"
	"time"

	"github.com/quic-go/quic-go/quicvarint"

	"github.com/zsiec/mkv/media"
)

// StreamTypeSubgroupSIDExt indicates a subgroup stream with an explicit
// Subgroup ID in the header and per-object extension headers.
const StreamTypeSubgroupSIDExt uint64 = 0x0d

// LOC header extension IDs. Even IDs carry a varint value, odd IDs a
// length-prefixed byte string.
const (
	ExtCaptureTimestamp  uint64 = 2  // microseconds
	ExtVideoFrameMarking uint64 = 4  // RFC 9626 flags
	ExtVideoConfig       uint64 = 13 // codec private data
)

// RFC 9626 Video Frame Marking flags (non-scalable).
const (
	FrameMarkingKeyframe    uint64 = 0xE0 // S=1, E=1, I=1
	FrameMarkingNonKeyframe uint64 = 0xC0 // S=1, E=1, I=0
)

// Writer frames the objects of one track. Object IDs restart at zero with
// every subgroup header. A Writer is not safe for concurrent use.
type Writer struct {
	trackAlias        uint64
	publisherPriority byte
	videoConfig       []byte
	objectID          uint64
}

// NewWriter returns a Writer for the track identified by trackAlias.
// publisherPriority ranges from 0 (highest) to 255 (lowest).
func NewWriter(trackAlias uint64, publisherPriority byte) *Writer {
	return &Writer{
		trackAlias:        trackAlias,
		publisherPriority: publisherPriority,
	}
}

// SetVideoConfig sets the codec private data attached to every keyframe
// object.
func (m *Writer) SetVideoConfig(config []byte) {
	m.videoConfig = config
}

// WriteSubgroupHeader starts a new subgroup of the given group.
func (m *Writer) WriteSubgroupHeader(w io.Writer, groupID uint64) error {
	m.objectID = 0

	var buf []byte
	buf = quicvarint.Append(buf, StreamTypeSubgroupSIDExt)
	buf = quicvarint.Append(buf, m.trackAlias)
	buf = quicvarint.Append(buf, groupID)
	buf = quicvarint.Append(buf, 0) // subgroup ID
	buf = append(buf, m.publisherPriority)

	_, err := w.Write(buf)
	return err
}

// WriteVideoFrame writes frame as the next object and returns the number of
// bytes written.
func (m *Writer) WriteVideoFrame(w io.Writer, frame *media.VideoFrame) (int64, error) {
	var exts []byte
	exts = quicvarint.Append(exts, ExtCaptureTimestamp)
	exts = quicvarint.Append(exts, captureTimestamp(frame.PTS))

	exts = quicvarint.Append(exts, ExtVideoFrameMarking)
	if frame.IsKeyframe {
		exts = quicvarint.Append(exts, FrameMarkingKeyframe)
	} else {
		exts = quicvarint.Append(exts, FrameMarkingNonKeyframe)
	}

	if frame.IsKeyframe && len(m.videoConfig) > 0 {
		exts = quicvarint.Append(exts, ExtVideoConfig)
		exts = quicvarint.Append(exts, uint64(len(m.videoConfig)))
		exts = append(exts, m.videoConfig...)
	}

	return m.writeObject(w, exts, frame.Data)
}

// WriteAudioFrame writes frame as the next object.
func (m *Writer) WriteAudioFrame(w io.Writer, frame *media.AudioFrame) (int64, error) {
	var exts []byte
	exts = quicvarint.Append(exts, ExtCaptureTimestamp)
	exts = quicvarint.Append(exts, captureTimestamp(frame.PTS))

	return m.writeObject(w, exts, frame.Data)
}

// WriteObject writes an object without extensions, as used for the
// catalog track.
func (m *Writer) WriteObject(w io.Writer, payload []byte) (int64, error) {
	return m.writeObject(w, nil, payload)
}

func (m *Writer) writeObject(w io.Writer, exts []byte, payload []byte) (int64, error) {
	var hdr []byte
	hdr = quicvarint.Append(hdr, m.objectID)
	hdr = quicvarint.Append(hdr, uint64(len(exts)))
	hdr = append(hdr, exts...)
	hdr = quicvarint.Append(hdr, uint64(len(payload)))

	m.objectID++

	total := int64(len(hdr) + len(payload))
	if _, err := w.Write(hdr); err != nil {
		return 0, err
	}
	if _, err := w.Write(payload); err != nil {
		return 0, err
	}
	return total, nil
}

// captureTimestamp converts a presentation time to LOC microseconds. Times
// before zero are clamped.
func captureTimestamp(pts time.Duration) uint64 {
	if pts < 0 {
		return 0
	}
	return uint64(pts.Microseconds())
}
