package matroska

import (
	"strconv"
	"time"
)

// DefaultTimestampScale is the Matroska default: one timestamp unit is one
// millisecond.
const DefaultTimestampScale = 1_000_000

// Codec IDs understood at the elementary-stream boundary.
const (
	CodecMJPEG        = "V_MJPEG"
	CodecUncompressed = "V_UNCOMPRESSED"
	CodecPCMIntLE     = "A_PCM/INT/LIT"
)

// Doc types distinguishing general Matroska from the WebM profile.
const (
	DocTypeMatroska = "matroska"
	DocTypeWebM     = "webm"
)

// TrackType is the Matroska TrackType value.
type TrackType uint8

const (
	TrackVideo    TrackType = 1
	TrackAudio    TrackType = 2
	TrackComplex  TrackType = 3
	TrackLogo     TrackType = 0x10
	TrackSubtitle TrackType = 0x11
	TrackButtons  TrackType = 0x12
	TrackControl  TrackType = 0x20
	TrackMetadata TrackType = 0x21
)

func (t TrackType) String() string {
	switch t {
	case TrackVideo:
		return "video"
	case TrackAudio:
		return "audio"
	case TrackComplex:
		return "complex"
	case TrackLogo:
		return "logo"
	case TrackSubtitle:
		return "subtitle"
	case TrackButtons:
		return "buttons"
	case TrackControl:
		return "control"
	case TrackMetadata:
		return "metadata"
	}
	return "type(" + strconv.Itoa(int(t)) + ")"
}

// VideoSettings holds the Video sub-element of a track. Display sizes are
// zero when absent.
type VideoSettings struct {
	PixelWidth    uint32
	PixelHeight   uint32
	DisplayWidth  uint32
	DisplayHeight uint32
}

// AudioSettings holds the Audio sub-element of a track. BitDepth is zero
// when absent.
type AudioSettings struct {
	SamplingFrequency float64
	Channels          uint32
	BitDepth          uint32
}

// Track describes one TrackEntry. It is built once while parsing Tracks and
// not modified afterwards.
type Track struct {
	Number          uint64
	UID             uint64
	Type            TrackType
	CodecID         string
	CodecPrivate    []byte
	Name            string
	Language        string
	DefaultDuration uint64 // nanoseconds per frame, 0 if absent
	FlagDefault     bool
	Video           *VideoSettings
	Audio           *AudioSettings
}

// Block is one frame of one track. Timestamp is absolute, in TimestampScale
// units, and may be negative when a relative offset underflows its cluster.
type Block struct {
	TrackNumber       uint64
	Timestamp         int64
	RelativeTimestamp int16
	Keyframe          bool
	Data              []byte
}

// Cluster is a time-coded group of blocks sharing a base timestamp.
type Cluster struct {
	Timestamp uint64
	Blocks    []Block
}

// DocInfo is the document-level metadata gathered from the EBML header,
// Info, and Tracks. Width and Height mirror the first video track.
type DocInfo struct {
	EBMLVersion        uint32
	DocType            string
	DocTypeVersion     uint32
	DocTypeReadVersion uint32

	TimestampScale uint64
	Duration       float64 // in TimestampScale units, 0 if absent
	MuxingApp      string
	WritingApp     string
	Title          string
	SegmentUID     []byte

	Tracks []Track

	Width    uint32
	Height   uint32
	HasVideo bool
	HasAudio bool
}

// Track returns the track with the given number.
func (d *DocInfo) Track(number uint64) (*Track, bool) {
	for i := range d.Tracks {
		if d.Tracks[i].Number == number {
			return &d.Tracks[i], true
		}
	}
	return nil, false
}

// VideoTrack returns the first video track, or nil.
func (d *DocInfo) VideoTrack() *Track {
	return d.firstOfType(TrackVideo)
}

// AudioTrack returns the first audio track, or nil.
func (d *DocInfo) AudioTrack() *Track {
	return d.firstOfType(TrackAudio)
}

func (d *DocInfo) firstOfType(t TrackType) *Track {
	for i := range d.Tracks {
		if d.Tracks[i].Type == t {
			return &d.Tracks[i]
		}
	}
	return nil
}

// Time converts a timestamp in TimestampScale units to a duration.
func (d *DocInfo) Time(ts int64) time.Duration {
	scale := d.TimestampScale
	if scale == 0 {
		scale = DefaultTimestampScale
	}
	return time.Duration(ts * int64(scale))
}

// DurationTime returns the segment duration, or 0 if it was not recorded.
func (d *DocInfo) DurationTime() time.Duration {
	scale := d.TimestampScale
	if scale == 0 {
		scale = DefaultTimestampScale
	}
	return time.Duration(d.Duration * float64(scale))
}

// DecodeResult is the output of a full demux pass.
type DecodeResult struct {
	Info     *DocInfo
	Clusters []Cluster
}

// Blocks returns every block of the given track in document order.
func (r *DecodeResult) Blocks(trackNumber uint64) []Block {
	var out []Block
	for _, c := range r.Clusters {
		for _, b := range c.Blocks {
			if b.TrackNumber == trackNumber {
				out = append(out, b)
			}
		}
	}
	return out
}
