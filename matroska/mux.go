package matroska

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/zsiec/mkv/internal/ebml"
)

var (
	ErrNoFrames     = errors.New("matroska: no frames to encode")
	ErrUnknownTrack = errors.New("matroska: frame references undeclared track")
	ErrInvalidTrack = errors.New("matroska: invalid track")
)

// Header values written by Encode.
const (
	muxEBMLVersion        = 1
	muxEBMLMaxIDLength    = 4
	muxEBMLMaxSizeLength  = 8
	muxDocTypeVersion     = 4
	muxDocTypeReadVersion = 2
	defaultFrameRate      = 25
	defaultApp            = "mkv"
)

// Frame is one payload to be written as a SimpleBlock.
type Frame struct {
	TrackNumber uint64
	Data        []byte
	Keyframe    bool
}

// Options controls Encode. Zero values select the defaults.
type Options struct {
	DocType        string  // default "webm"
	FrameRate      float64 // frames per second for tracks without DefaultDuration, default 25
	TimestampScale uint64  // nanoseconds per timestamp unit, default 1 000 000
	MuxingApp      string  // default "mkv"
	WritingApp     string  // default "mkv"
	Title          string
	SegmentUID     []byte // 16 bytes; a random UUID when nil

	// UnknownSizeSegment writes the Segment with the unknown-size
	// sentinel, as live writers do.
	UnknownSizeSegment bool

	Logger *slog.Logger
}

func (o Options) withDefaults() (Options, error) {
	if o.DocType == "" {
		o.DocType = DocTypeWebM
	}
	if o.FrameRate == 0 {
		o.FrameRate = defaultFrameRate
	}
	if o.FrameRate < 0 || math.IsNaN(o.FrameRate) || math.IsInf(o.FrameRate, 0) {
		return o, fmt.Errorf("matroska: invalid frame rate %v", o.FrameRate)
	}
	if o.TimestampScale == 0 {
		o.TimestampScale = DefaultTimestampScale
	}
	if o.MuxingApp == "" {
		o.MuxingApp = defaultApp
	}
	if o.WritingApp == "" {
		o.WritingApp = defaultApp
	}
	if o.SegmentUID == nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return o, fmt.Errorf("matroska: segment uid: %w", err)
		}
		o.SegmentUID = id[:]
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o, nil
}

// EncoderState carries the per-track frame sequence across Encode calls.
// The sequence number of a frame decides its cluster timestamp, and
// sequence 0 is always a keyframe.
type EncoderState struct {
	Sequence map[uint64]uint64
}

// NewEncoderState returns a state with every track at sequence 0.
func NewEncoderState() *EncoderState {
	return &EncoderState{Sequence: make(map[uint64]uint64)}
}

func (s *EncoderState) next(track uint64) uint64 {
	n := s.Sequence[track]
	s.Sequence[track] = n + 1
	return n
}

// Encode writes tracks and frames as a single Matroska document: EBML
// header, Segment, Info, Tracks, then one Cluster per frame in the order
// given. Tracks with Number 0 are numbered by position, starting at 1.
func Encode(tracks []Track, frames []Frame, opts Options) ([]byte, error) {
	return EncodeState(NewEncoderState(), tracks, frames, opts)
}

// EncodeState is Encode continuing from state, which is advanced by one per
// frame written.
func EncodeState(state *EncoderState, tracks []Track, frames []Frame, opts Options) ([]byte, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	log := opts.Logger.With("component", "matroska-mux")

	tracks, err = numberTracks(tracks)
	if err != nil {
		return nil, err
	}
	frameDur := make(map[uint64]uint64, len(tracks))
	for _, t := range tracks {
		frameDur[t.Number] = trackFrameDuration(t, opts.FrameRate)
	}
	for _, f := range frames {
		if _, ok := frameDur[f.TrackNumber]; !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownTrack, f.TrackNumber)
		}
	}
	if state.Sequence == nil {
		state.Sequence = make(map[uint64]uint64)
	}

	clusters := ebml.NewWriter()
	for _, f := range frames {
		seq := state.next(f.TrackNumber)
		ts := scaleTimestamp(seq*frameDur[f.TrackNumber], opts.TimestampScale)
		block, err := simpleBlock(f, f.Keyframe || seq == 0)
		if err != nil {
			return nil, err
		}
		clusters.Master(ebml.IDCluster, func(w *ebml.Writer) {
			w.Uint(ebml.IDTimestamp, ts)
			w.Binary(ebml.IDSimpleBlock, block)
		})
	}
	clusterBytes, err := clusters.Bytes()
	if err != nil {
		return nil, err
	}

	var durationNs uint64
	for _, t := range tracks {
		if d := state.Sequence[t.Number] * frameDur[t.Number]; d > durationNs {
			durationNs = d
		}
	}

	w := ebml.NewWriter()
	w.Master(ebml.IDEBML, func(w *ebml.Writer) {
		w.Uint(ebml.IDEBMLVersion, muxEBMLVersion)
		w.Uint(ebml.IDEBMLReadVersion, muxEBMLVersion)
		w.Uint(ebml.IDEBMLMaxIDLength, muxEBMLMaxIDLength)
		w.Uint(ebml.IDEBMLMaxSizeLength, muxEBMLMaxSizeLength)
		w.String(ebml.IDDocType, opts.DocType)
		w.Uint(ebml.IDDocTypeVersion, muxDocTypeVersion)
		w.Uint(ebml.IDDocTypeReadVersion, muxDocTypeReadVersion)
	})
	segment := func(w *ebml.Writer) {
		w.Master(ebml.IDInfo, func(w *ebml.Writer) {
			w.Uint(ebml.IDTimestampScale, opts.TimestampScale)
			w.Float(ebml.IDDuration, float64(durationNs)/float64(opts.TimestampScale))
			w.String(ebml.IDMuxingApp, opts.MuxingApp)
			w.String(ebml.IDWritingApp, opts.WritingApp)
			w.Binary(ebml.IDSegmentUID, opts.SegmentUID)
			if opts.Title != "" {
				w.String(ebml.IDTitle, opts.Title)
			}
		})
		w.Master(ebml.IDTracks, func(w *ebml.Writer) {
			for _, t := range tracks {
				writeTrack(w, t, frameDur[t.Number])
			}
		})
		w.Raw(clusterBytes)
	}
	if opts.UnknownSizeSegment {
		w.UnknownMaster(ebml.IDSegment, segment)
	} else {
		w.Master(ebml.IDSegment, segment)
	}

	out, err := w.Bytes()
	if err != nil {
		return nil, err
	}
	log.Debug("encoded document",
		"doctype", opts.DocType,
		"tracks", len(tracks),
		"frames", len(frames),
		"duration", time.Duration(durationNs),
		"bytes", len(out))
	return out, nil
}

// numberTracks returns a copy of tracks with missing numbers filled in and
// checks that every track is usable.
func numberTracks(tracks []Track) ([]Track, error) {
	out := make([]Track, len(tracks))
	seen := make(map[uint64]bool, len(tracks))
	for i, t := range tracks {
		if t.Number == 0 {
			t.Number = uint64(i + 1)
		}
		if t.Type == 0 || t.CodecID == "" {
			return nil, fmt.Errorf("%w: track %d needs a type and codec ID", ErrInvalidTrack, t.Number)
		}
		if seen[t.Number] {
			return nil, fmt.Errorf("%w: duplicate track number %d", ErrInvalidTrack, t.Number)
		}
		if t.Number >= 1<<56-1 {
			return nil, fmt.Errorf("%w: track number %d too large", ErrInvalidTrack, t.Number)
		}
		seen[t.Number] = true
		out[i] = t
	}
	return out, nil
}

// trackFrameDuration is the DefaultDuration of t, or one frame period at
// frameRate.
func trackFrameDuration(t Track, frameRate float64) uint64 {
	if t.DefaultDuration > 0 {
		return t.DefaultDuration
	}
	return uint64(math.Round(float64(time.Second) / frameRate))
}

func scaleTimestamp(ns, scale uint64) uint64 {
	return (ns + scale/2) / scale
}

// simpleBlock builds a SimpleBlock payload with relative timestamp 0.
func simpleBlock(f Frame, keyframe bool) ([]byte, error) {
	b, err := ebml.AppendSize(make([]byte, 0, len(f.Data)+11), f.TrackNumber)
	if err != nil {
		return nil, err
	}
	var flags byte
	if keyframe {
		flags |= blockFlagKeyframe
	}
	b = append(b, 0, 0, flags)
	return append(b, f.Data...), nil
}

func writeTrack(w *ebml.Writer, t Track, frameDur uint64) {
	w.Master(ebml.IDTrackEntry, func(w *ebml.Writer) {
		w.Uint(ebml.IDTrackNumber, t.Number)
		uid := t.UID
		if uid == 0 {
			uid = t.Number
		}
		w.Uint(ebml.IDTrackUID, uid)
		w.Uint(ebml.IDTrackType, uint64(t.Type))
		w.String(ebml.IDCodecID, t.CodecID)
		if len(t.CodecPrivate) > 0 {
			w.Binary(ebml.IDCodecPrivate, t.CodecPrivate)
		}
		if t.Name != "" {
			w.String(ebml.IDName, t.Name)
		}
		if t.Language != "" {
			w.String(ebml.IDLanguage, t.Language)
		}
		if t.Type == TrackVideo {
			w.Uint(ebml.IDDefaultDuration, frameDur)
		}
		if v := t.Video; v != nil {
			w.Master(ebml.IDVideo, func(w *ebml.Writer) {
				w.Uint(ebml.IDPixelWidth, uint64(v.PixelWidth))
				w.Uint(ebml.IDPixelHeight, uint64(v.PixelHeight))
				if v.DisplayWidth > 0 {
					w.Uint(ebml.IDDisplayWidth, uint64(v.DisplayWidth))
				}
				if v.DisplayHeight > 0 {
					w.Uint(ebml.IDDisplayHeight, uint64(v.DisplayHeight))
				}
			})
		}
		if a := t.Audio; a != nil {
			w.Master(ebml.IDAudio, func(w *ebml.Writer) {
				w.Float(ebml.IDSamplingFrequency, a.SamplingFrequency)
				w.Uint(ebml.IDChannels, uint64(a.Channels))
				if a.BitDepth > 0 {
					w.Uint(ebml.IDBitDepth, uint64(a.BitDepth))
				}
			})
		}
	})
}
