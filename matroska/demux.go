package matroska

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zsiec/mkv/internal/ebml"
)

// Structural errors. Anything else wrong with a document is skipped and
// logged at debug level.
var (
	ErrNotEBML        = errors.New("matroska: not an EBML document")
	ErrMissingHeader  = errors.New("matroska: missing or truncated EBML header")
	ErrMissingSegment = errors.New("matroska: no Segment element")
)

// DocTypeError is returned when the EBML header names a different DocType
// than the one the Demuxer requires.
type DocTypeError struct {
	Got  string
	Want string
}

func (e *DocTypeError) Error() string {
	return fmt.Sprintf("matroska: unexpected DocType %q, want %q", e.Got, e.Want)
}

var magic = []byte{0x1A, 0x45, 0xDF, 0xA3}

// IsContainer reports whether buf starts with the EBML magic number.
func IsContainer(buf []byte) bool {
	return bytes.HasPrefix(buf, magic)
}

// IsWebM reports whether buf starts with a complete EBML header whose
// DocType is "webm".
func IsWebM(buf []byte) bool {
	info, _, err := NewDemuxer(DemuxerOptLogger(discardLogger)).readHeader(buf)
	return err == nil && info.DocType == DocTypeWebM
}

var discardLogger = slog.New(slog.DiscardHandler)

// Demuxer extracts metadata, blocks, and frames from in-memory Matroska
// documents. A Demuxer holds no per-document state and is safe for
// concurrent use.
type Demuxer struct {
	log      *slog.Logger
	decoders map[string]FrameDecoder
	workers  int
	docType  string
}

// NewDemuxer creates a Demuxer. Without options it accepts any DocType, logs
// to slog.Default(), and decodes V_MJPEG and V_UNCOMPRESSED frames
// sequentially.
func NewDemuxer(opts ...func(*Demuxer)) *Demuxer {
	d := &Demuxer{
		log:      slog.Default(),
		decoders: defaultDecoders(),
		workers:  1,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With("component", "matroska")
	return d
}

// DemuxerOptLogger sets the logger. A nil logger leaves the default.
func DemuxerOptLogger(log *slog.Logger) func(*Demuxer) {
	return func(d *Demuxer) {
		if log != nil {
			d.log = log
		}
	}
}

// DemuxerOptFrameDecoder registers dec for video tracks with the given codec
// ID, replacing any previous decoder. A nil dec removes the registration.
func DemuxerOptFrameDecoder(codecID string, dec FrameDecoder) func(*Demuxer) {
	return func(d *Demuxer) {
		if dec == nil {
			delete(d.decoders, codecID)
			return
		}
		d.decoders[codecID] = dec
	}
}

// DemuxerOptWorkers sets how many video frames decode concurrently
// (default 1).
func DemuxerOptWorkers(n int) func(*Demuxer) {
	return func(d *Demuxer) {
		if n > 0 {
			d.workers = n
		}
	}
}

// DemuxerOptDocType makes the Demuxer reject documents whose DocType is not
// docType with a *DocTypeError.
func DemuxerOptDocType(docType string) func(*Demuxer) {
	return func(d *Demuxer) {
		d.docType = docType
	}
}

// segmentState collects top-level Segment children.
type segmentState struct {
	d        *Demuxer
	info     *DocInfo
	tracks   tracksState
	clusters []Cluster
	metaOnly bool
}

var segmentFields = fieldTable[segmentState]{
	ebml.IDInfo: func(s *segmentState, f field) error {
		decodeNested(f, infoFields, s.info)
		return nil
	},
	ebml.IDTracks: func(s *segmentState, f field) error {
		decodeNested(f, tracksFields, &s.tracks)
		return nil
	},
	ebml.IDCluster: func(s *segmentState, f field) error {
		if !s.metaOnly {
			s.clusters = append(s.clusters, s.d.parseCluster(f.buf, f.el))
		}
		return nil
	},
}

// ParseInfo reads the EBML header and the Info and Tracks elements of the
// Segment. Clusters are skipped.
func (d *Demuxer) ParseInfo(buf []byte) (*DocInfo, error) {
	s, err := d.parse(buf, true)
	if err != nil {
		return nil, err
	}
	return s.info, nil
}

// Decode parses the whole document. Clusters and their blocks are returned
// in document order; block payloads are copies and do not alias buf.
func (d *Demuxer) Decode(buf []byte) (*DecodeResult, error) {
	s, err := d.parse(buf, false)
	if err != nil {
		return nil, err
	}
	d.log.Debug("decoded document",
		"doctype", s.info.DocType,
		"tracks", len(s.info.Tracks),
		"clusters", len(s.clusters))
	return &DecodeResult{Info: s.info, Clusters: s.clusters}, nil
}

func (d *Demuxer) parse(buf []byte, metaOnly bool) (*segmentState, error) {
	info, pos, err := d.readHeader(buf)
	if err != nil {
		return nil, err
	}
	seg, err := d.findSegment(buf, pos)
	if err != nil {
		return nil, err
	}
	s := &segmentState{
		d:        d,
		info:     info,
		tracks:   tracksState{seen: make(map[uint64]bool)},
		metaOnly: metaOnly,
	}
	decodeFields(d.log, buf, seg, segmentFields, s)
	info.Tracks = s.tracks.tracks
	deriveStreams(info)
	return s, nil
}

// readHeader decodes the EBML header and returns the offset just past it.
func (d *Demuxer) readHeader(buf []byte) (*DocInfo, int, error) {
	if !IsContainer(buf) {
		return nil, 0, ErrNotEBML
	}
	el, ok := ebml.ReadElement(buf, 0)
	if !ok || el.Truncated || el.Unknown() {
		return nil, 0, ErrMissingHeader
	}
	info := &DocInfo{
		EBMLVersion:    1,
		DocType:        DocTypeMatroska,
		TimestampScale: DefaultTimestampScale,
	}
	decodeFields(d.log, buf, el, headerFields, info)
	if d.docType != "" && info.DocType != d.docType {
		return nil, 0, &DocTypeError{Got: info.DocType, Want: d.docType}
	}
	return info, el.End(len(buf)), nil
}

// findSegment returns the first top-level Segment after the header. A
// Segment that claims more bytes than buf holds is read up to the end of buf.
func (d *Demuxer) findSegment(buf []byte, pos int) (ebml.Element, error) {
	for _, el := range ebml.Walk(buf, pos) {
		if el.ID != ebml.IDSegment {
			d.log.Debug("skipping top-level element", "element", ebml.Name(el.ID), "offset", el.Offset)
			continue
		}
		if el.Truncated {
			d.log.Warn("segment truncated, reading to end of buffer",
				"declared", el.Size, "available", len(buf)-el.DataOffset)
			if el.DataOffset > len(buf) {
				return ebml.Element{}, ErrMissingSegment
			}
			el.Size = uint64(len(buf) - el.DataOffset)
			el.Truncated = false
		}
		return el, nil
	}
	return ebml.Element{}, ErrMissingSegment
}

// ParseInfo reads document metadata with a default Demuxer.
func ParseInfo(buf []byte) (*DocInfo, error) {
	return NewDemuxer().ParseInfo(buf)
}

// Decode parses a Matroska or WebM document with a default Demuxer.
func Decode(buf []byte) (*DecodeResult, error) {
	return NewDemuxer().Decode(buf)
}

// DecodeWebM is Decode restricted to the "webm" DocType.
func DecodeWebM(buf []byte) (*DecodeResult, error) {
	return NewDemuxer(DemuxerOptDocType(DocTypeWebM)).Decode(buf)
}
